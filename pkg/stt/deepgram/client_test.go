package deepgram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "dg-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestTranscribe_SendsAuthAndQuery(t *testing.T) {
	t.Parallel()

	var sawAuth, sawContentType string
	var sawQuery map[string][]string
	var sawBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		sawContentType = r.Header.Get("Content-Type")
		sawQuery = r.URL.Query()
		sawBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"metadata": map[string]interface{}{"duration": 1.5},
			"results": map[string]interface{}{
				"channels": []interface{}{
					map[string]interface{}{
						"alternatives": []interface{}{
							map[string]interface{}{
								"transcript": "hello world",
								"words": []interface{}{
									map[string]interface{}{"word": "hello", "start": 0.0, "end": 0.5, "confidence": 0.9},
								},
							},
						},
					},
				},
			},
		})
	})

	transcript, err := c.Transcribe(context.Background(), []byte("raw-audio"), TranscriptionOptions{
		ModelID: "nova-3", MimeType: "audio/wav", Language: "en", Keyterms: []string{"Deep Gram"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Token dg-key", sawAuth)
	assert.Equal(t, "audio/wav", sawContentType)
	assert.Equal(t, []byte("raw-audio"), sawBody)
	assert.Equal(t, []string{"nova-3"}, sawQuery["model"])
	assert.Equal(t, []string{"Deep+Gram"}, sawQuery["keyterm"])

	assert.Equal(t, "hello world", transcript.Text)
	assert.Equal(t, int64(1500), transcript.DurationMs)
	require.Len(t, transcript.Words, 1)
	assert.Equal(t, "hello", transcript.Words[0].Text)
}

func TestTranscribe_KeywordOnlyOnSupportedModels(t *testing.T) {
	t.Parallel()

	boost := 2.5
	q := buildQuery(TranscriptionOptions{
		ModelID:  "nova-2",
		Keywords: []Keyword{{Term: "acme", Boost: &boost}},
	})
	assert.Equal(t, []string{"acme:2.5"}, q["keyword"])

	q = buildQuery(TranscriptionOptions{
		ModelID:  "nova-3",
		Keywords: []Keyword{{Term: "acme"}},
	})
	assert.Empty(t, q["keyword"], "nova-3 does not accept keyword boosting")
}

func TestTranscribe_MapsErrorStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid credentials"))
	})

	_, err := c.Transcribe(context.Background(), []byte("x"), TranscriptionOptions{})
	require.Error(t, err)
	assert.True(t, adapter.IsSTTError(err, adapter.STTUnauthorized))
}
