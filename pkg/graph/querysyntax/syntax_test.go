package querysyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhereClause_AQL(t *testing.T) {
	t.Parallel()

	params := map[string]interface{}{}
	clause := BuildWhereClause([]Filter{
		{Field: "name", Operator: OpEqual, Value: "Alice"},
		{Field: "age", Operator: OpNotEqual, Value: 30},
	}, "v", params, AQL)

	assert.Contains(t, clause, "WHERE v.name == @filter_name_0 AND v.age != @filter_age_1")
	assert.Equal(t, "Alice", params["filter_name_0"])
	assert.Equal(t, 30, params["filter_age_1"])
}

func TestBuildWhereClause_Cypher(t *testing.T) {
	t.Parallel()

	params := map[string]interface{}{}
	clause := BuildWhereClause([]Filter{
		{Field: "name", Operator: OpContains, Value: "Ali"},
	}, "n", params, Cypher)

	assert.Equal(t, "WHERE n.name CONTAINS $filter_name_0", clause)
}

func TestBuildWhereClause_Empty(t *testing.T) {
	t.Parallel()

	params := map[string]interface{}{}
	assert.Equal(t, "", BuildWhereClause(nil, "v", params, AQL))
}

func TestBuildSortClause(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SORT v.age DESC, v.name ASC", BuildSortClause([]Sort{
		{Field: "age", Direction: Descending},
		{Field: "name", Direction: Ascending},
	}, "v", AQL))

	assert.Equal(t, "ORDER BY n.age DESC", BuildSortClause([]Sort{
		{Field: "age", Direction: Descending},
	}, "n", Cypher))

	assert.Equal(t, "", BuildSortClause(nil, "v", AQL))
}
