package neo4j

import (
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// toCypherProperties renders a PropertyMap as the plain map Neo4j's HTTP
// API expects for a statement's "parameters.props" field.
func toCypherProperties(props *adapter.PropertyMap) map[string]interface{} {
	if props == nil {
		return map[string]interface{}{}
	}
	return props.Map()
}

// fromCypherValue infers a PropertyValue from a decoded JSON value the
// same way the ArangoDB codec does: JSON has no int/float distinction, so
// a whole-valued float64 is treated as int64.
func fromCypherValue(v interface{}) adapter.PropertyValue {
	switch val := v.(type) {
	case nil:
		return adapter.PropValNull()
	case string:
		return adapter.PropValString(val)
	case bool:
		return adapter.PropValBool(val)
	case float64:
		if val == float64(int64(val)) {
			return adapter.PropValInt64(int64(val))
		}
		return adapter.PropValFloat64(val)
	default:
		return adapter.PropValString(fmt.Sprintf("%v", val))
	}
}

func propertiesFromCypherObject(obj map[string]interface{}) *adapter.PropertyMap {
	m := adapter.NewPropertyMap()
	for k, v := range obj {
		m.Set(k, fromCypherValue(v))
	}
	return m
}

// graphNode is the shape of one entry in a Neo4j HTTP response's
// "data[].graph.nodes" array.
type graphNode struct {
	ID         string                 `json:"id"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties"`
}

// parseVertexFromGraphData builds a Vertex from one "graph" format node.
// overrideID lets update_vertex hand back the ElementID the caller passed
// in rather than whatever elementId() happens to report, matching a
// caller's expectation that the ID round-trips unchanged across an update.
func parseVertexFromGraphData(node graphNode, overrideID *adapter.ElementID) (adapter.Vertex, error) {
	id := adapter.StringID(node.ID)
	if overrideID != nil {
		id = *overrideID
	}

	label := ""
	if len(node.Labels) > 0 {
		label = node.Labels[0]
	}

	return adapter.Vertex{
		ID:         id,
		Label:      label,
		Properties: propertiesFromCypherObject(node.Properties),
	}, nil
}

// parseEdgeFromRow builds an Edge from the five-column row shape every
// edge-returning statement in this package projects:
// [id, type, properties, startNodeID, endNodeID].
func parseEdgeFromRow(row []interface{}) (adapter.Edge, error) {
	if len(row) < 5 {
		return adapter.Edge{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "edge row has fewer than 5 columns", nil)
	}

	idStr, _ := row[0].(string)
	typeStr, _ := row[1].(string)
	propsObj, _ := row[2].(map[string]interface{})
	fromStr, _ := row[3].(string)
	toStr, _ := row[4].(string)

	return adapter.Edge{
		ID:         adapter.StringID(idStr),
		Label:      typeStr,
		From:       adapter.StringID(fromStr),
		To:         adapter.StringID(toStr),
		Properties: propertiesFromCypherObject(propsObj),
	}, nil
}

// cypherIDString renders an ElementID the way every statement in this
// package embeds one into Cypher parameters: as a bare string regardless
// of kind, matching the Rust original's per-call id match arms.
func cypherIDString(id adapter.ElementID) string {
	return id.String()
}

// numericID extracts the integer Neo4j internal id a legacy id(n)/id(r)
// match needs, used only by create_edge/get_edge/delete_edge, which
// (per the original) require a numeric match rather than elementId().
func numericID(id adapter.ElementID) (int64, error) {
	if i, ok := id.AsInt64(); ok {
		return i, nil
	}
	return 0, adapter.NewGraphError("neo4j", adapter.GraphInvalidQuery, 0,
		fmt.Sprintf("expected a numeric id, got %q", id.String()), nil)
}

// propertyLookupShim recognizes the "prop:<key>:<value>" convention
// get_vertex supports for robust lookup when elementId() can't be relied
// on (e.g. across process restarts). Internal to this package; never
// exposed across the graph.Transaction boundary.
func propertyLookupShim(id adapter.ElementID) (key, value string, ok bool) {
	s, isString := idAsRawString(id)
	if !isString || !strings.HasPrefix(s, "prop:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(s, "prop:")
	key, value, found := strings.Cut(rest, ":")
	return key, value, found
}

func idAsRawString(id adapter.ElementID) (string, bool) {
	if id.Kind() != adapter.ElementIDString {
		return "", false
	}
	return id.String(), true
}
