package whisper

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestTranscribe_SendsMultipartUpload(t *testing.T) {
	t.Parallel()

	var sawAuth string
	var fields map[string]string
	var sawFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		reader := multipart.NewReader(r.Body, params["boundary"])
		fields = map[string]string{}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			if part.FormName() == "file" {
				sawFilename = part.FileName()
				continue
			}
			val, _ := io.ReadAll(part)
			fields[part.FormName()] = string(val)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "hello there", "language": "en", "duration": 2.0,
			"words": []interface{}{
				map[string]interface{}{"word": "hello", "start": 0.0, "end": 0.4},
			},
		})
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	transcript, err := c.Transcribe(context.Background(), []byte("pcm-data"), TranscriptionOptions{
		MimeType: "audio/wav", Language: "en", EnableTimestamps: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", sawAuth)
	assert.Equal(t, "audio.wav", sawFilename)
	assert.Equal(t, defaultModel, fields["model"])
	assert.Equal(t, "en", fields["language"])
	assert.Equal(t, "hello there", transcript.Text)
	assert.Equal(t, int64(2000), transcript.DurationMs)
	require.Len(t, transcript.Words, 1)
}

func TestTranscribe_MapsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Transcribe(context.Background(), []byte("x"), TranscriptionOptions{})
	require.Error(t, err)
	assert.True(t, adapter.IsSTTError(err, adapter.STTRateLimited))
}
