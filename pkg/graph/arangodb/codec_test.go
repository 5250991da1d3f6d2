package arangodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestCollectionFromElementID(t *testing.T) {
	t.Parallel()

	coll, err := collectionFromElementID(adapter.StringID("person/123"))
	require.NoError(t, err)
	assert.Equal(t, "person", coll)
	assert.Equal(t, "123", keyFromElementID(adapter.StringID("person/123")))

	_, err = collectionFromElementID(adapter.StringID("123"))
	assert.Error(t, err)
}

func TestParseVertexFromDocument(t *testing.T) {
	t.Parallel()

	doc := map[string]interface{}{
		"_id":  "person/123",
		"_key": "123",
		"_rev": "abc",
		"name": "marko",
		"age":  float64(29),
	}

	v, err := parseVertexFromDocument(doc, "person")
	require.NoError(t, err)
	assert.Equal(t, "person/123", v.ID.String())
	assert.Equal(t, "person", v.Label)

	name, ok := v.Properties.Get("name")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "marko", s)

	age, ok := v.Properties.Get("age")
	require.True(t, ok)
	i, _ := age.AsInt64()
	assert.Equal(t, int64(29), i)

	_, ok = v.Properties.Get("_rev")
	assert.False(t, ok, "system fields must not leak into properties")
}

func TestParseEdgeFromDocument(t *testing.T) {
	t.Parallel()

	doc := map[string]interface{}{
		"_id":     "knows/1",
		"_from":   "person/123",
		"_to":     "person/456",
		"weight":  0.5,
	}

	e, err := parseEdgeFromDocument(doc, "knows")
	require.NoError(t, err)
	assert.Equal(t, "person/123", e.From.String())
	assert.Equal(t, "person/456", e.To.String())
}

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, adapter.GraphAuthenticationFailed, mapError(401, nil).Code)
	assert.Equal(t, adapter.GraphAuthorizationFailed, mapError(403, nil).Code)
	assert.Equal(t, adapter.GraphTransactionConflict, mapError(409, nil).Code)
	assert.Equal(t, adapter.GraphInternalError, mapError(500, []byte("boom")).Code)
}
