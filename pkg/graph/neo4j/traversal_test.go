package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestRelTypeClause(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", relTypeClause(nil))
	assert.Equal(t, ":KNOWS", relTypeClause([]string{"KNOWS"}))
	assert.Equal(t, ":KNOWS|LIKES", relTypeClause([]string{"KNOWS", "LIKES"}))
}

func TestParsePathFromRow(t *testing.T) {
	t.Parallel()

	row := []interface{}{
		[]interface{}{
			map[string]interface{}{"id": "1", "labels": []interface{}{"Person"}, "properties": map[string]interface{}{"name": "marko"}},
			map[string]interface{}{"id": "2", "labels": []interface{}{"Person"}, "properties": map[string]interface{}{"name": "vadas"}},
		},
		[]interface{}{
			map[string]interface{}{"id": "10", "type": "KNOWS", "properties": map[string]interface{}{}, "startId": "1", "endId": "2"},
		},
	}

	path, err := parsePathFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "1", path.Start.ID.String())
	require.Len(t, path.Steps, 1)
	assert.Equal(t, "KNOWS", path.Steps[0].Edge.Label)
	assert.Equal(t, "2", path.Steps[0].Vertex.ID.String())
}

func TestParsePathFromRow_Empty(t *testing.T) {
	t.Parallel()

	path, err := parsePathFromRow([]interface{}{[]interface{}{}, []interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, adapter.Path{}, path)
}

func TestVertexFromProjection_Malformed(t *testing.T) {
	t.Parallel()

	_, err := vertexFromProjection("not-a-map")
	assert.Error(t, err)
}

func TestEdgeFromProjection_Malformed(t *testing.T) {
	t.Parallel()

	_, err := edgeFromProjection(42)
	assert.Error(t, err)
}

func TestCypherArrows(t *testing.T) {
	t.Parallel()

	left, right := cypherArrows(adapter.DirectionOut)
	assert.Equal(t, "", left)
	assert.Equal(t, "->", right)

	left, right = cypherArrows(adapter.DirectionIn)
	assert.Equal(t, "<-", left)
	assert.Equal(t, "", right)

	left, right = cypherArrows(adapter.DirectionBoth)
	assert.Equal(t, "-", left)
	assert.Equal(t, "-", right)
}
