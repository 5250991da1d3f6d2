package janusgraph

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

func TestSchemaManager_DropIndex_Unsupported(t *testing.T) {
	t.Parallel()

	s := &schemaManager{}
	err := s.DropIndex(context.Background(), "person", "byName")
	require.Error(t, err)
	assert.True(t, adapter.IsGraphError(err, adapter.GraphUnsupportedOperation))
}

func TestSchemaManager_CreateIndex(t *testing.T) {
	t.Parallel()

	var sentScript string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Gremlin string `json:"gremlin"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sentScript = body.Gremlin
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestId": "r-1",
			"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
			"result":    map[string]interface{}{"data": []interface{}{}, "meta": map[string]interface{}{}},
		})
	}))
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	s := &schemaManager{api: newAPI(Config{Host: host, Port: port})}

	err := s.CreateIndex(context.Background(), "person", adapter.IndexSpec{
		Kind:   adapter.IndexUnique,
		Fields: []string{"name"},
		Name:   "byName",
	})
	require.NoError(t, err)
	assert.Contains(t, sentScript, "mgmt = graph.openManagement()")
	assert.Contains(t, sentScript, "mgmt.commit()")
	assert.Contains(t, sentScript, "buildCompositeIndex()")
	assert.Contains(t, sentScript, ".unique()")
}

func TestSchemaManager_ListIndexes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestId": "r-1",
			"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
			"result": map[string]interface{}{
				"data": []interface{}{
					map[string]interface{}{
						"name":       "byName",
						"unique":     true,
						"label":      "person",
						"properties": []interface{}{"name"},
					},
				},
				"meta": map[string]interface{}{},
			},
		})
	}))
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	s := &schemaManager{api: newAPI(Config{Host: host, Port: port})}

	indexes, err := s.ListIndexes(context.Background(), "person")
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, "byName", indexes[0].Name)
	assert.Equal(t, adapter.IndexUnique, indexes[0].Kind)
	assert.Equal(t, []string{"name"}, indexes[0].Fields)
}

func TestSchemaManager_CreateLabel(t *testing.T) {
	t.Parallel()

	var sentScript string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Gremlin string `json:"gremlin"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sentScript = body.Gremlin
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestId": "r-1",
			"status":    map[string]interface{}{"code": 200, "message": "", "attributes": map[string]interface{}{}},
			"result":    map[string]interface{}{"data": []interface{}{}, "meta": map[string]interface{}{}},
		})
	}))
	defer srv.Close()

	host, port := splitHostPort(t, srv.URL)
	s := &schemaManager{api: newAPI(Config{Host: host, Port: port})}

	require.NoError(t, s.CreateLabel(context.Background(), "person"))
	assert.True(t, strings.Contains(sentScript, "makeVertexLabel"))
}
