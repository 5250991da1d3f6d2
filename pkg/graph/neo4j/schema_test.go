package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestIndexTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TEXT", indexTypeFor(adapter.IndexFulltext))
	assert.Equal(t, "POINT", indexTypeFor(adapter.IndexGeo))
	assert.Equal(t, "RANGE", indexTypeFor(adapter.IndexHash))
	assert.Equal(t, "RANGE", indexTypeFor(adapter.IndexUnique))
}
