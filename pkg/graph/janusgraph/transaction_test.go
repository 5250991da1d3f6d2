package janusgraph

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

// fakeGremlinServer plays just enough of the single-endpoint Gremlin
// Server HTTP surface to exercise create/get/delete round trips: every
// request is a POST /gremlin carrying {"gremlin": ..., "bindings": ...},
// routed here by a substring match on the script text.
func fakeGremlinServer(t *testing.T, handle func(gremlin string, bindings map[string]interface{}) interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/gremlin" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Gremlin  string                 `json:"gremlin"`
			Bindings map[string]interface{} `json:"bindings"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		data := handle(body.Gremlin, body.Bindings)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestId": "r-1",
			"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
			"result":    map[string]interface{}{"data": data, "meta": map[string]interface{}{}},
		})
	}))
}

func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func propsWith(name string, v adapter.PropertyValue) *adapter.PropertyMap {
	m := adapter.NewPropertyMap()
	m.Set(name, v)
	return m
}

func TestTransaction_CreateVertex(t *testing.T) {
	t.Parallel()

	srv := fakeGremlinServer(t, func(gremlin string, bindings map[string]interface{}) interface{} {
		if strings.Contains(gremlin, "addV") {
			return []interface{}{
				map[string]interface{}{"id": float64(24), "label": "person", "name": []interface{}{"marko"}},
			}
		}
		return []interface{}{}
	})
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)
	assert.True(t, tx.IsActive())

	v, err := tx.CreateVertex(context.Background(), graph.VertexSpec{
		Label:      "person",
		Properties: propsWith("name", adapter.PropValString("marko")),
	})
	require.NoError(t, err)
	assert.Equal(t, "person", v.Label)
	n, _ := v.ID.AsInt64()
	assert.Equal(t, int64(24), n)

	require.NoError(t, tx.Commit(context.Background()))
	assert.False(t, tx.IsActive())
	assert.ErrorIs(t, tx.Commit(context.Background()), adapter.ErrTransactionClosed)
}

func TestTransaction_GetVertex_NotFound(t *testing.T) {
	t.Parallel()

	srv := fakeGremlinServer(t, func(gremlin string, bindings map[string]interface{}) interface{} {
		return []interface{}{}
	})
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)

	v, err := tx.GetVertex(context.Background(), adapter.Int64ID(1))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTransaction_DeleteVertex_RetriesOnLockExpired(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Gremlin string `json:"gremlin"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if !strings.Contains(body.Gremlin, "drop") {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"requestId": "r-ping",
				"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
				"result":    map[string]interface{}{"data": []interface{}{}, "meta": map[string]interface{}{}},
			})
			return
		}

		attempts++
		if attempts == 1 {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"requestId": "r-1",
				"status":    map[string]interface{}{"code": 598, "message": "Lock expired while waiting", "attributes": map[string]interface{}{}},
				"result":    map[string]interface{}{"data": nil, "meta": map[string]interface{}{}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestId": "r-2",
			"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
			"result":    map[string]interface{}{"data": []interface{}{}, "meta": map[string]interface{}{}},
		})
	}))
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)

	err = tx.DeleteVertex(context.Background(), adapter.Int64ID(1), true)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestTransaction_CreateEdge(t *testing.T) {
	t.Parallel()

	srv := fakeGremlinServer(t, func(gremlin string, bindings map[string]interface{}) interface{} {
		if strings.Contains(gremlin, "addE") {
			return []interface{}{
				map[string]interface{}{
					"id":    map[string]interface{}{"@type": "janusgraph:RelationIdentifier", "@value": map[string]interface{}{"relationId": "e-1"}},
					"label": "knows",
					"IN":    []interface{}{"in-dir", float64(2)},
					"OUT":   []interface{}{"out-dir", float64(1)},
				},
			}
		}
		return []interface{}{}
	})
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)

	e, err := tx.CreateEdge(context.Background(), graph.EdgeSpec{
		Label: "knows",
		From:  adapter.Int64ID(1),
		To:    adapter.Int64ID(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "knows", e.Label)
	assert.Equal(t, "e-1", e.ID.String())
}

func TestTransaction_Rollback_IsLocalNoOp(t *testing.T) {
	t.Parallel()

	srv := fakeGremlinServer(t, func(gremlin string, bindings map[string]interface{}) interface{} {
		return []interface{}{}
	})
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	tx, err := BeginTransaction(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(context.Background()))
	assert.False(t, tx.IsActive())
	assert.ErrorIs(t, tx.Rollback(context.Background()), adapter.ErrTransactionClosed)
}

func TestDirectionStep(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "out", directionStep(adapter.DirectionOut, false))
	assert.Equal(t, "in", directionStep(adapter.DirectionIn, false))
	assert.Equal(t, "both", directionStep(adapter.DirectionBoth, false))
	assert.Equal(t, "outE", directionStep(adapter.DirectionOut, true))
	assert.Equal(t, "inE", directionStep(adapter.DirectionIn, true))
	assert.Equal(t, "bothE", directionStep(adapter.DirectionBoth, true))
}
