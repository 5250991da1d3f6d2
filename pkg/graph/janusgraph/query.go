package janusgraph

import (
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/graph"
	"github.com/adapterhub/commonrt/pkg/graph/querysyntax"
)

// querysyntax.Syntax models WHERE-clause text (AQL/Cypher); Gremlin has
// no WHERE clause — a filter is a chained .has()/.where() traversal step
// and a sort is a chained .order().by() step. No query_utils source
// survived filtering for the original JanusGraph crate, so the step
// shapes below are written directly against Gremlin/TinkerPop's own
// predicate vocabulary (P.eq/P.neq, TextP.containing/startingWith/
// endingWith/regex) rather than ported from Rust.

// buildGremlinFilterSteps renders each Filter as one ".has(key, P...)"
// (or ".has(key, TextP...)" for the string predicates) step, appending a
// uniquely named binding per filter to bindingsOut so values are never
// inlined into the script text.
func buildGremlinFilterSteps(filters []graph.Filter, bindingsOut map[string]interface{}) string {
	var b strings.Builder
	for i, f := range filters {
		name := fmt.Sprintf("filterVal_%s_%d", sanitizeBindingName(f.Field), i)
		bindingsOut[name] = toGremlinValue(f.Value)

		switch querysyntax.Operator(f.Operator) {
		case querysyntax.OpNotEqual:
			fmt.Fprintf(&b, ".has('%s', neq(%s))", f.Field, name)
		case querysyntax.OpContains:
			fmt.Fprintf(&b, ".has('%s', containing(%s))", f.Field, name)
		case querysyntax.OpStartsWith:
			fmt.Fprintf(&b, ".has('%s', startingWith(%s))", f.Field, name)
		case querysyntax.OpEndsWith:
			fmt.Fprintf(&b, ".has('%s', endingWith(%s))", f.Field, name)
		case querysyntax.OpRegex:
			fmt.Fprintf(&b, ".has('%s', TextP.regex(%s))", f.Field, name)
		default:
			fmt.Fprintf(&b, ".has('%s', %s)", f.Field, name)
		}
	}
	return b.String()
}

// buildGremlinSortStep renders sort terms as a single chained
// ".order().by('field', asc|desc)..." step, TinkerPop's equivalent of
// ORDER BY/SORT.
func buildGremlinSortStep(sort []graph.Sort) string {
	if len(sort) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(".order()")
	for _, s := range sort {
		dir := "asc"
		if s.Descending {
			dir = "desc"
		}
		fmt.Fprintf(&b, ".by('%s', %s)", s.Field, dir)
	}
	return b.String()
}

// buildGremlinRangeStep renders the offset/limit pagination step. With
// no limit set, the default window mirrors the 10,000-row cap the
// original uses in place of an unbounded range() when only an offset is
// given.
func buildGremlinRangeStep(offset, limit int) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		return fmt.Sprintf(".range(%d, %d)", offset, offset+10000)
	}
	return fmt.Sprintf(".range(%d, %d)", offset, offset+limit)
}
