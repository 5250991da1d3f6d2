package arangodb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/graph"
)

// fakeArangoServer plays just enough of the ArangoDB REST surface to
// exercise a transaction's begin -> cursor -> commit lifecycle.
func fakeArangoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/_db/test/_api/version":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"version": "3.11.0"})
		case r.URL.Path == "/_db/test/_api/transaction/begin":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error":  false,
				"result": map[string]interface{}{"id": "tx-1", "status": "running"},
			})
		case r.URL.Path == "/_db/test/_api/cursor":
			var body struct {
				Query string `json:"query"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if strings.Contains(body.Query, "INSERT") {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": false,
					"result": []interface{}{
						map[string]interface{}{"_id": "person/123", "_key": "123", "name": "marko"},
					},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": false, "result": []interface{}{}})
		case strings.HasPrefix(r.URL.Path, "/_db/test/_api/transaction/"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": false, "result": map[string]interface{}{"id": "tx-1", "status": "committed"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTransaction_CreateVertex_CommitLifecycle(t *testing.T) {
	t.Parallel()

	srv := fakeArangoServer(t)
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{
		Host: host, Port: port, Username: "root", Password: "", Database: "test",
	}, nil, []string{"person"})
	require.NoError(t, err)
	assert.True(t, tx.IsActive())

	v, err := tx.CreateVertex(context.Background(), graph.VertexSpec{
		Label:      "person",
		Properties: propsWith("name", adapter.PropValString("marko")),
	})
	require.NoError(t, err)
	assert.Equal(t, "person/123", v.ID.String())

	require.NoError(t, tx.Commit(context.Background()))
	assert.False(t, tx.IsActive())
	assert.ErrorIs(t, tx.Commit(context.Background()), adapter.ErrTransactionClosed)
}

func propsWith(name string, v adapter.PropertyValue) *adapter.PropertyMap {
	m := adapter.NewPropertyMap()
	m.Set(name, v)
	return m
}

func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}
