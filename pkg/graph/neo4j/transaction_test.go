package neo4j

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

// fakeNeo4jServer plays just enough of the transactional Cypher HTTP
// surface to exercise a transaction's begin -> run -> commit lifecycle.
func fakeNeo4jServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/db/test/tx" && r.Method == "POST":
			w.Header().Set("Location", srv.URL+"/db/test/tx/42")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "errors": []interface{}{}})
		case r.URL.Path == "/db/test/tx/commit" && r.Method == "POST":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "errors": []interface{}{}})
		case r.URL.Path == "/db/test/tx/42" && r.Method == "POST":
			var body struct {
				Statements []statement `json:"statements"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.Statements) > 0 && strings.Contains(body.Statements[0].Statement, "CREATE") {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"results": []interface{}{
						map[string]interface{}{
							"columns": []string{"n"},
							"data": []interface{}{
								map[string]interface{}{
									"row": []interface{}{map[string]interface{}{}},
									"graph": map[string]interface{}{
										"nodes": []interface{}{
											map[string]interface{}{
												"id":         "4:abc:1",
												"labels":     []string{"person"},
												"properties": map[string]interface{}{"name": "marko"},
											},
										},
									},
								},
							},
						},
					},
					"errors": []interface{}{},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "errors": []interface{}{}})
		case r.URL.Path == "/db/test/tx/42/commit" && r.Method == "POST":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "errors": []interface{}{}})
		case r.URL.Path == "/db/test/tx/42" && r.Method == "DELETE":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}, "errors": []interface{}{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func TestTransaction_CreateVertex_CommitLifecycle(t *testing.T) {
	t.Parallel()

	srv := fakeNeo4jServer(t)
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{
		Host: host, Port: port, Username: "neo4j", Password: "", Database: "test",
	})
	require.NoError(t, err)
	assert.True(t, tx.IsActive())

	v, err := tx.CreateVertex(context.Background(), graph.VertexSpec{
		Label:      "person",
		Properties: propsWith("name", adapter.PropValString("marko")),
	})
	require.NoError(t, err)
	assert.Equal(t, "4:abc:1", v.ID.String())
	assert.Equal(t, "person", v.Label)

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
