// Package querysyntax holds the per-dialect operator tables and
// WHERE/ORDER BY clause builders shared by the three graph translation
// layers (AQL, Cypher, Gremlin), so filter/sort logic is written once and
// parameterized over each dialect's spelling and value encoding instead
// of being duplicated per backend.
package querysyntax

import (
	"fmt"
	"strings"
)

// Operator names a filter comparison, independent of dialect spelling.
type Operator string

const (
	OpEqual      Operator = "eq"
	OpNotEqual   Operator = "ne"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpRegex      Operator = "regex"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// Filter is one field comparison to AND into a WHERE clause.
type Filter struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// Sort is one ORDER BY / SORT term.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Syntax is a per-dialect record of operator spellings and the parameter
// prefix used to reference bound values.
type Syntax struct {
	Name          string
	Equal         string
	NotEqual      string
	Contains      string
	StartsWith    string
	EndsWith      string
	Regex         string
	ParamPrefix   string
	SortKeyword   string
}

// AQL is ArangoDB's query language syntax table.
var AQL = Syntax{
	Name:        "aql",
	Equal:       "==",
	NotEqual:    "!=",
	Contains:    "CONTAINS",
	StartsWith:  "STARTS_WITH",
	EndsWith:    "ENDS_WITH",
	Regex:       "=~",
	ParamPrefix: "@",
	SortKeyword: "SORT",
}

// Cypher is Neo4j's query language syntax table.
var Cypher = Syntax{
	Name:        "cypher",
	Equal:       "=",
	NotEqual:    "<>",
	Contains:    "CONTAINS",
	StartsWith:  "STARTS WITH",
	EndsWith:    "ENDS WITH",
	Regex:       "=~",
	ParamPrefix: "$",
	SortKeyword: "ORDER BY",
}

// operatorSpelling returns the dialect-specific spelling for op.
func (s Syntax) operatorSpelling(op Operator) (string, bool) {
	switch op {
	case OpEqual:
		return s.Equal, true
	case OpNotEqual:
		return s.NotEqual, true
	case OpContains:
		return s.Contains, true
	case OpStartsWith:
		return s.StartsWith, true
	case OpEndsWith:
		return s.EndsWith, true
	case OpRegex:
		return s.Regex, true
	default:
		return "", false
	}
}

// EncodeValue renders a Go value as the dialect's literal binding
// reference once it has been placed into paramsOut, or as an inline
// value for dialects that don't bind (none currently do — kept for
// symmetry with the Gremlin bind-map path in traversal queries).
type EncodeValue func(v interface{}) string

// BuildWhereClause emits `WHERE <alias>.<field> <op> <param> AND …` (or
// the empty string for no filters) and appends each bound value to
// paramsOut under a uniquely generated name so caller-supplied filter
// values never collide with other bound parameters.
func BuildWhereClause(filters []Filter, alias string, paramsOut map[string]interface{}, syntax Syntax) string {
	if len(filters) == 0 {
		return ""
	}

	clauses := make([]string, 0, len(filters))
	for i, f := range filters {
		spelling, ok := syntax.operatorSpelling(f.Operator)
		if !ok {
			spelling = syntax.Equal
		}
		paramName := fmt.Sprintf("filter_%s_%d", sanitizeFieldName(f.Field), i)
		paramsOut[paramName] = f.Value
		clauses = append(clauses, fmt.Sprintf("%s.%s %s %s%s", alias, f.Field, spelling, syntax.ParamPrefix, paramName))
	}

	return "WHERE " + strings.Join(clauses, " AND ")
}

// BuildSortClause emits `<keyword> <alias>.<field> ASC|DESC, …`, using
// the dialect's own sort keyword (`SORT` for AQL, `ORDER BY` for
// Cypher). Empty sort produces the empty string.
func BuildSortClause(sort []Sort, alias string, syntax Syntax) string {
	if len(sort) == 0 {
		return ""
	}

	terms := make([]string, 0, len(sort))
	for _, s := range sort {
		dir := s.Direction
		if dir == "" {
			dir = Ascending
		}
		terms = append(terms, fmt.Sprintf("%s.%s %s", alias, s.Field, dir))
	}

	return syntax.SortKeyword + " " + strings.Join(terms, ", ")
}

// sanitizeFieldName strips characters that would be illegal in a bound
// parameter name, since field names may contain dots for nested access.
func sanitizeFieldName(field string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(field)
}
