package janusgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestDecodeGraphSON_ScalarAndMap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(12), decodeGraphSON(map[string]interface{}{"@type": "g:Int64", "@value": float64(12)}))

	decoded := decodeGraphSON(map[string]interface{}{
		"@type": "g:Map",
		"@value": []interface{}{
			"name", "marko",
			"age", float64(29),
		},
	})
	m, ok := decoded.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "marko", m["name"])
	assert.Equal(t, float64(29), m["age"])
}

func TestElementIDFromGremlin_RelationIdentifier(t *testing.T) {
	t.Parallel()

	id, err := elementIDFromGremlin(map[string]interface{}{
		"@type": "janusgraph:RelationIdentifier",
		"@value": map[string]interface{}{
			"relationId": "4x8-abc-def",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "4x8-abc-def", id.String())
}

func TestElementIDFromGremlin_Scalars(t *testing.T) {
	t.Parallel()

	id, err := elementIDFromGremlin(float64(42))
	require.NoError(t, err)
	n, ok := id.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	id, err = elementIDFromGremlin("vertex-1")
	require.NoError(t, err)
	assert.Equal(t, "vertex-1", id.String())
}

func TestParseVertexFromGremlin(t *testing.T) {
	t.Parallel()

	row := map[string]interface{}{
		"id":    float64(24),
		"label": "person",
		"name":  []interface{}{"marko"},
		"age":   []interface{}{float64(29)},
	}

	v, err := parseVertexFromGremlin(row)
	require.NoError(t, err)
	assert.Equal(t, "person", v.Label)
	n, _ := v.ID.AsInt64()
	assert.Equal(t, int64(24), n)

	name, ok := v.Properties.Get("name")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "marko", s)
}

func TestParseEdgeFromGremlin_WithINOUTKeys(t *testing.T) {
	t.Parallel()

	row := map[string]interface{}{
		"id":     map[string]interface{}{"@type": "janusgraph:RelationIdentifier", "@value": map[string]interface{}{"relationId": "abc123"}},
		"label":  "knows",
		"IN":     []interface{}{"dir-in", float64(2)},
		"OUT":    []interface{}{"dir-out", float64(1)},
		"weight": float64(5),
	}

	e, err := parseEdgeFromGremlin(row)
	require.NoError(t, err)
	assert.Equal(t, "knows", e.Label)
	assert.Equal(t, "abc123", e.ID.String())

	fromN, _ := e.From.AsInt64()
	toN, _ := e.To.AsInt64()
	assert.Equal(t, int64(1), fromN)
	assert.Equal(t, int64(2), toN)
}

func TestParseEdgeFromGremlin_WithScalarEndpoints(t *testing.T) {
	t.Parallel()

	row := map[string]interface{}{
		"id":    float64(99),
		"label": "knows",
		"outV":  float64(1),
		"inV":   float64(2),
	}

	e, err := parseEdgeFromGremlin(row)
	require.NoError(t, err)
	fromN, _ := e.From.AsInt64()
	toN, _ := e.To.AsInt64()
	assert.Equal(t, int64(1), fromN)
	assert.Equal(t, int64(2), toN)
}

func TestIDToGremlinValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(7), idToGremlinValue(adapter.Int64ID(7)))
	assert.Equal(t, "abc", idToGremlinValue(adapter.StringID("abc")))
}
