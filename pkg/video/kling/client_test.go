package kling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{AccessKey: "ak", SecretKey: "sk", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestGenerate_SignsRequestAndParsesTaskID(t *testing.T) {
	t.Parallel()

	var sawAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/videos/text2video", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":       0,
			"message":    "",
			"request_id": "r1",
			"data":       map[string]interface{}{"task_id": "t1", "task_status": "submitted"},
		})
	})

	jobID, _, err := c.Generate(context.Background(), adapter.GenerationConfig{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, adapter.JobID("t1"), jobID)
	assert.True(t, strings.HasPrefix(sawAuth, "Bearer "))
}

func TestGenerate_APIErrorCode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 1201, "message": "invalid prompt",
		})
	})

	_, _, err := c.Generate(context.Background(), adapter.GenerationConfig{Prompt: "a cat"})
	require.Error(t, err)
	assert.True(t, adapter.IsVideoError(err, adapter.VideoInvalidInput))
}

func TestPoll_MapsJobState(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"task_id": "t1", "task_status": "succeed",
				"task_result": map[string]interface{}{
					"videos": []interface{}{map[string]interface{}{"id": "v1", "url": "https://x/v1.mp4"}},
				},
			},
		})
	})

	status, err := c.Poll(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, adapter.JobSucceeded, status.State)
	assert.Equal(t, 1.0, status.Progress)

	result, err := c.VideoResult(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "https://x/v1.mp4", result.Videos[0].URL)
}

func TestListAvailableVoices(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": []interface{}{
				map[string]interface{}{"voice_id": "v1", "voice_name": "Alice", "languages": []interface{}{"en", "fr"}},
			},
		})
	})

	voices, err := c.ListAvailableVoices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "v1", voices[0].ID)
	require.Len(t, voices[0].Languages, 2)
}
