package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_SendsAPIKeyAndDecodesResult(t *testing.T) {
	t.Parallel()

	var sawKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []interface{}{
				map[string]interface{}{
					"languageCode": "en-US",
					"alternatives": []interface{}{
						map[string]interface{}{
							"transcript": "hello",
							"words": []interface{}{
								map[string]interface{}{"word": "hello", "startTime": "0s", "endTime": "0.400s", "speakerTag": 1},
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "gkey", BaseURL: srv.URL})
	require.NoError(t, err)

	transcript, err := c.Transcribe(context.Background(), []byte("pcm"), TranscriptionOptions{
		Encoding: EncodingLinear16, SampleRateHertz: 16000,
	})
	require.NoError(t, err)

	assert.Equal(t, "gkey", sawKey)
	assert.Equal(t, "hello", transcript.Text)
	assert.Equal(t, "en-US", transcript.Language)
	require.Len(t, transcript.Words, 1)
	assert.Equal(t, int64(400), transcript.Words[0].EndMs)
	assert.Equal(t, "1", transcript.Words[0].Speaker)
}

func TestEncodingForMimeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EncodingFLAC, EncodingForMimeType("audio/flac"))
	assert.Equal(t, EncodingMP3, EncodingForMimeType("audio/mpeg"))
	assert.Equal(t, EncodingLinear16, EncodingForMimeType("audio/unknown"))
}
