package janusgraph

import (
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// decodeGraphSON recursively unwraps GraphSON 3.0's typed envelopes
// ({"@type": "g:Int64", "@value": ...}) into plain Go values: g:Map
// becomes a map[string]interface{} keyed by its flattened alternating
// key/value list, g:List becomes a []interface{}, and scalar @type tags
// (g:Int32/Int64/Double/UUID/...) unwrap to their bare @value. Values with
// no @type/@value shape pass through unchanged.
func decodeGraphSON(v interface{}) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		if arr, ok := v.([]interface{}); ok {
			out := make([]interface{}, len(arr))
			for i, e := range arr {
				out[i] = decodeGraphSON(e)
			}
			return out
		}
		return v
	}

	typeTag, hasType := obj["@type"].(string)
	value, hasValue := obj["@value"]
	if !hasType {
		decoded := make(map[string]interface{}, len(obj))
		for k, val := range obj {
			decoded[k] = decodeGraphSON(val)
		}
		return decoded
	}
	if !hasValue {
		return v
	}

	switch typeTag {
	case "g:Map":
		arr, ok := value.([]interface{})
		if !ok {
			return v
		}
		m := make(map[string]interface{}, len(arr)/2)
		for i := 0; i+1 < len(arr); i += 2 {
			key := decodeGraphSON(arr[i])
			ks, _ := key.(string)
			m[ks] = decodeGraphSON(arr[i+1])
		}
		return m
	case "g:List", "g:Set":
		arr, ok := value.([]interface{})
		if !ok {
			return v
		}
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			out[i] = decodeGraphSON(e)
		}
		return out
	case "janusgraph:RelationIdentifier":
		return decodeGraphSON(value)
	default:
		return decodeGraphSON(value)
	}
}

// relationID pulls the "relationId" string out of a decoded
// janusgraph:RelationIdentifier map, JanusGraph's edge ID representation
// (it carries the adjacent vertex IDs too, but only the relation ID is a
// stable handle for get_edge/update_edge/delete_edge).
func relationID(m map[string]interface{}) (string, bool) {
	s, ok := m["relationId"].(string)
	return s, ok
}

// elementIDFromGremlin converts a decoded Gremlin id value (an int64, a
// string, or a RelationIdentifier map) into an adapter.ElementID.
func elementIDFromGremlin(raw interface{}) (adapter.ElementID, error) {
	decoded := decodeGraphSON(raw)
	switch val := decoded.(type) {
	case float64:
		return adapter.Int64ID(int64(val)), nil
	case int64:
		return adapter.Int64ID(val), nil
	case string:
		return adapter.StringID(val), nil
	case map[string]interface{}:
		if rel, ok := relationID(val); ok {
			return adapter.StringID(rel), nil
		}
		return adapter.ElementID{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0,
			fmt.Sprintf("unsupported element id object from Gremlin: %v", val), nil)
	default:
		return adapter.ElementID{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0,
			fmt.Sprintf("unsupported element id type from Gremlin: %T", decoded), nil)
	}
}

// idToGremlinValue renders an ElementID as the JSON value Gremlin Server
// binds it to: JanusGraph vertex/edge ids are accepted as their native
// numeric or string form, never wrapped.
func idToGremlinValue(id adapter.ElementID) interface{} {
	switch id.Kind() {
	case adapter.ElementIDInt64:
		n, _ := id.AsInt64()
		return n
	default:
		return id.String()
	}
}

// toGremlinValue renders a PropertyValue as a JSON-encodable bound value.
func toGremlinValue(v adapter.PropertyValue) interface{} {
	return v.Interface()
}

// fromGremlinScalar converts a decoded (non-map, non-array) Gremlin value
// into a PropertyValue. JSON numbers decode to float64; an integral
// float64 is rendered Int64 rather than Float64 since GraphSON's untyped
// transport (when not class-tagged) can't otherwise distinguish them.
func fromGremlinScalar(v interface{}) adapter.PropertyValue {
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
	case int64:
		return adapter.PropValInt64(val)
	default:
		return adapter.PropValString(fmt.Sprintf("%v", val))
	}
}

// elementMapObject normalizes an elementMap() result row — which may
// arrive as a plain JSON object or as a GraphSON g:Map — into a flat
// map[string]interface{} keyed by property name (plus "id"/"label" and,
// for edges, "IN"/"OUT").
func elementMapObject(row interface{}) (map[string]interface{}, bool) {
	decoded := decodeGraphSON(row)
	m, ok := decoded.(map[string]interface{})
	return m, ok
}

func parseVertexFromGremlin(row interface{}) (adapter.Vertex, error) {
	m, ok := elementMapObject(row)
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0, "Gremlin vertex value is not an object", nil)
	}

	rawID, ok := m["id"]
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0, "missing id in Gremlin vertex", nil)
	}
	id, err := elementIDFromGremlin(rawID)
	if err != nil {
		return adapter.Vertex{}, err
	}
	label, _ := m["label"].(string)

	props := adapter.NewPropertyMap()
	if rawProps, ok := m["properties"]; ok {
		pm, err := parsePropertiesFromGremlin(rawProps)
		if err != nil {
			return adapter.Vertex{}, err
		}
		props = pm
	}
	for k, v := range m {
		if k == "id" || k == "label" || k == "properties" {
			continue
		}
		if arr, ok := v.([]interface{}); ok {
			if len(arr) > 0 {
				props.Set(k, fromGremlinScalar(arr[0]))
			}
			continue
		}
		props.Set(k, fromGremlinScalar(v))
	}

	return adapter.Vertex{ID: id, Label: label, Properties: props}, nil
}

// parsePropertiesFromGremlin handles a vertex's multi-property listing
// (JanusGraph's properties() step returns a list of value-property
// objects per key): {"name": [{"id": ..., "value": "Alice"}]}.
func parsePropertiesFromGremlin(raw interface{}) (*adapter.PropertyMap, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return adapter.NewPropertyMap(), nil
	}
	out := adapter.NewPropertyMap()
	for key, v := range obj {
		if arr, ok := v.([]interface{}); ok {
			if len(arr) == 0 {
				continue
			}
			if entry, ok := arr[0].(map[string]interface{}); ok {
				if val, ok := entry["value"]; ok {
					out.Set(key, fromGremlinScalar(val))
					continue
				}
			}
			out.Set(key, fromGremlinScalar(arr[0]))
			continue
		}
		out.Set(key, fromGremlinScalar(v))
	}
	return out, nil
}

func parseEdgeFromGremlin(row interface{}) (adapter.Edge, error) {
	m, ok := elementMapObject(row)
	if !ok {
		return adapter.Edge{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0, "Gremlin edge value is not an object", nil)
	}

	rawID, ok := m["id"]
	if !ok {
		return adapter.Edge{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0, "missing id in Gremlin edge", nil)
	}
	id, err := elementIDFromGremlin(rawID)
	if err != nil {
		return adapter.Edge{}, err
	}
	label, _ := m["label"].(string)

	fromID, err := endpointID(m, "OUT", "outV")
	if err != nil {
		return adapter.Edge{}, err
	}
	toID, err := endpointID(m, "IN", "inV")
	if err != nil {
		return adapter.Edge{}, err
	}

	props := adapter.NewPropertyMap()
	for k, v := range m {
		if k == "id" || k == "label" || k == "IN" || k == "OUT" || k == "inV" || k == "outV" {
			continue
		}
		props.Set(k, fromGremlinScalar(v))
	}

	return adapter.Edge{ID: id, Label: label, From: fromID, To: toID, Properties: props}, nil
}

// endpointID reads an edge endpoint id, which elementMap() reports either
// as a scalar under scalarKey ("inV"/"outV", the shape parse_path_from_gremlin
// and create/update paths synthesize) or as a [Direction, vertexId] pair
// under arrayKey ("IN"/"OUT", the shape raw elementMap() rows use).
func endpointID(m map[string]interface{}, arrayKey, scalarKey string) (adapter.ElementID, error) {
	if raw, ok := m[scalarKey]; ok {
		return elementIDFromGremlin(raw)
	}
	if arr, ok := m[arrayKey].([]interface{}); ok && len(arr) >= 2 {
		return elementIDFromGremlin(arr[1])
	}
	return adapter.ElementID{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0,
		fmt.Sprintf("missing %s/%s in Gremlin edge", arrayKey, scalarKey), nil)
}

// firstResultItem returns the first element of a Gremlin response's
// result.data list, unwrapping the [] shape the HTTP endpoint uses for
// non-scalar results.
func firstResultItem(resp *gremlinResponse) (interface{}, bool) {
	arr, ok := resp.Result.Data.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	return arr[0], true
}

func resultItems(resp *gremlinResponse) []interface{} {
	arr, ok := resp.Result.Data.([]interface{})
	if !ok {
		return nil
	}
	return arr
}

func sanitizeBindingName(s string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(s)
}
