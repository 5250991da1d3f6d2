package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vertices/42", r.URL.Path)
		assert.Equal(t, "bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ada"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Authorization": "bearer token"}})

	var result struct {
		Name string `json:"name"`
	}
	err := c.GetJSON(context.Background(), "/vertices/42", &result)
	require.NoError(t, err)
	assert.Equal(t, "ada", result.Name)
}

func TestClient_DoJSON_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/missing"}, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_QueryStringEncoded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a b&c", r.URL.Query().Get("q"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	q := url.Values{}
	q.Set("q", "a b&c")
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/search", Query: q})
	require.NoError(t, err)
}

func TestClient_WithSigner_IsolatesState(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := New(Config{BaseURL: srv.URL})
	signed := base.WithSigner(func(req *http.Request, body []byte) error {
		req.Header.Set("Authorization", "signed-token")
		return nil
	})

	_, err := signed.Do(context.Background(), Request{Method: http.MethodGet, Path: "/a"})
	require.NoError(t, err)
	_, err = base.Do(context.Background(), Request{Method: http.MethodGet, Path: "/b"})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "signed-token", seen[0])
	assert.Equal(t, "", seen[1])
}
