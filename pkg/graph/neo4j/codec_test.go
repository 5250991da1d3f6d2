package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestParseVertexFromGraphData(t *testing.T) {
	t.Parallel()

	node := graphNode{
		ID:         "4:abc:123",
		Labels:     []string{"Person", "Employee"},
		Properties: map[string]interface{}{"name": "marko", "age": float64(29)},
	}

	v, err := parseVertexFromGraphData(node, nil)
	require.NoError(t, err)
	assert.Equal(t, "4:abc:123", v.ID.String())
	assert.Equal(t, "Person", v.Label)

	age, ok := v.Properties.Get("age")
	require.True(t, ok)
	i, _ := age.AsInt64()
	assert.Equal(t, int64(29), i)
}

func TestParseVertexFromGraphData_OverrideID(t *testing.T) {
	t.Parallel()

	node := graphNode{ID: "4:abc:123", Labels: []string{"Person"}}
	override := adapter.StringID("caller-supplied-id")

	v, err := parseVertexFromGraphData(node, &override)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied-id", v.ID.String())
}

func TestParseEdgeFromRow(t *testing.T) {
	t.Parallel()

	row := []interface{}{"1", "KNOWS", map[string]interface{}{"weight": 0.5}, "2", "3"}

	e, err := parseEdgeFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "KNOWS", e.Label)
	assert.Equal(t, "2", e.From.String())
	assert.Equal(t, "3", e.To.String())
}

func TestParseEdgeFromRow_TooFewColumns(t *testing.T) {
	t.Parallel()

	_, err := parseEdgeFromRow([]interface{}{"1", "KNOWS"})
	assert.Error(t, err)
}

func TestPropertyLookupShim(t *testing.T) {
	t.Parallel()

	key, value, ok := propertyLookupShim(adapter.StringID("prop:name:marko"))
	require.True(t, ok)
	assert.Equal(t, "name", key)
	assert.Equal(t, "marko", value)

	_, _, ok = propertyLookupShim(adapter.StringID("4:abc:1"))
	assert.False(t, ok)
}

func TestNumericID(t *testing.T) {
	t.Parallel()

	n, err := numericID(adapter.StringID("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = numericID(adapter.StringID("not-a-number"))
	assert.Error(t, err)
}
