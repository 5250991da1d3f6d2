package arangodb

import (
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// idString renders an ElementID the way ArangoDB document keys expect:
// when it already carries a collection-qualified "_id" (collection/key)
// that string is passed through verbatim; otherwise it's rendered as a
// bare key.
func idString(id adapter.ElementID) string {
	return id.String()
}

// splitDocID splits a full ArangoDB "_id" (collection/key) into its two
// parts. A bare key with no "/" yields an empty collection.
func splitDocID(docID string) (collection, key string) {
	i := strings.IndexByte(docID, '/')
	if i < 0 {
		return "", docID
	}
	return docID[:i], docID[i+1:]
}

// collectionFromElementID extracts the collection name from a
// collection-qualified ElementID ("person/123" -> "person"), the form
// every CRUD-by-id operation requires.
func collectionFromElementID(id adapter.ElementID) (string, error) {
	collection, _ := splitDocID(id.String())
	if collection == "" {
		return "", adapter.NewGraphError("arangodb", adapter.GraphInvalidQuery, 0,
			"element id must be a full _id (collection/key)", nil)
	}
	return collection, nil
}

// keyFromElementID extracts the bare document key ("person/123" -> "123").
func keyFromElementID(id adapter.ElementID) string {
	_, key := splitDocID(id.String())
	return key
}

// toArangoProperties renders a PropertyMap as the plain JSON object AQL
// bind variables require.
func toArangoProperties(props *adapter.PropertyMap) map[string]interface{} {
	if props == nil {
		return map[string]interface{}{}
	}
	return props.Map()
}

// fromArangoValue converts a decoded JSON scalar back into a
// PropertyValue, inferring the closest-fitting kind since ArangoDB's wire
// format carries no type tag beyond JSON's own string/number/bool/null.
func fromArangoValue(v interface{}) adapter.PropertyValue {
	switch t := v.(type) {
	case string:
		return adapter.PropValString(t)
	case bool:
		return adapter.PropValBool(t)
	case float64:
		if t == float64(int64(t)) {
			return adapter.PropValInt64(int64(t))
		}
		return adapter.PropValFloat64(t)
	case nil:
		return adapter.PropValNull()
	default:
		return adapter.PropValString(fmt.Sprintf("%v", t))
	}
}

// parseVertexFromDocument builds a Vertex from a decoded ArangoDB
// document, stripping the underscore-prefixed system fields (_id, _key,
// _rev) out of the property bag.
func parseVertexFromDocument(doc map[string]interface{}, collection string) (adapter.Vertex, error) {
	docID, _ := doc["_id"].(string)
	if docID == "" {
		if key, ok := doc["_key"].(string); ok {
			docID = collection + "/" + key
		}
	}

	props := adapter.NewPropertyMap()
	for k, v := range doc {
		if strings.HasPrefix(k, "_") {
			continue
		}
		props.Set(k, fromArangoValue(v))
	}

	return adapter.Vertex{
		ID:         adapter.StringID(docID),
		Label:      collection,
		Properties: props,
	}, nil
}

// parseEdgeFromDocument builds an Edge from a decoded ArangoDB edge
// document, pulling _from/_to as the endpoint IDs.
func parseEdgeFromDocument(doc map[string]interface{}, collection string) (adapter.Edge, error) {
	docID, _ := doc["_id"].(string)
	if docID == "" {
		if key, ok := doc["_key"].(string); ok {
			docID = collection + "/" + key
		}
	}
	from, _ := doc["_from"].(string)
	to, _ := doc["_to"].(string)

	props := adapter.NewPropertyMap()
	for k, v := range doc {
		if strings.HasPrefix(k, "_") {
			continue
		}
		props.Set(k, fromArangoValue(v))
	}

	return adapter.Edge{
		ID:         adapter.StringID(docID),
		Label:      collection,
		From:       adapter.StringID(from),
		To:         adapter.StringID(to),
		Properties: props,
	}, nil
}

// collectionOf returns the collection name embedded in a document's own
// "_id" field, used by queries (AQL graph traversals, ANY-direction
// lookups) that return documents from more than one collection.
func collectionOf(doc map[string]interface{}) string {
	docID, _ := doc["_id"].(string)
	collection, _ := splitDocID(docID)
	return collection
}

func asObjectSlice(values []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(values))
	for _, v := range values {
		if obj, ok := v.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}
