package janusgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeLabelArgs(t *testing.T) {
	t.Parallel()

	bindings := map[string]interface{}{}
	args := edgeLabelArgs(nil, bindings)
	assert.Equal(t, "", args)
	assert.Empty(t, bindings)

	bindings = map[string]interface{}{}
	args = edgeLabelArgs([]string{"knows", "likes"}, bindings)
	assert.Equal(t, "edgeLabel0, edgeLabel1", args)
	assert.Equal(t, "knows", bindings["edgeLabel0"])
	assert.Equal(t, "likes", bindings["edgeLabel1"])
}

func TestParsePathFromGremlin(t *testing.T) {
	t.Parallel()

	row := map[string]interface{}{
		"labels": []interface{}{},
		"objects": []interface{}{
			map[string]interface{}{"id": float64(1), "label": "person", "name": []interface{}{"marko"}},
			map[string]interface{}{
				"id":    float64(10),
				"label": "knows",
				"OUT":   []interface{}{"out-dir", float64(1)},
				"IN":    []interface{}{"in-dir", float64(2)},
			},
			map[string]interface{}{"id": float64(2), "label": "person", "name": []interface{}{"vadas"}},
		},
	}

	path, err := parsePathFromGremlin(row)
	require.NoError(t, err)

	startN, _ := path.Start.ID.AsInt64()
	assert.Equal(t, int64(1), startN)
	require.Len(t, path.Steps, 1)
	assert.Equal(t, "knows", path.Steps[0].Edge.Label)

	endN, _ := path.Steps[0].Vertex.ID.AsInt64()
	assert.Equal(t, int64(2), endN)
}

func TestParsePathFromGremlin_Empty(t *testing.T) {
	t.Parallel()

	path, err := parsePathFromGremlin(map[string]interface{}{"objects": []interface{}{}})
	require.NoError(t, err)
	assert.Nil(t, path.Steps)
}
