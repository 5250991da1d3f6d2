package janusgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// schemaManager implements graph.SchemaManager against JanusGraph's
// Groovy management API (graph.openManagement()), reached the same way
// every other script is: a POST /gremlin submission.
type schemaManager struct {
	api *api
}

// runManagement wraps a Groovy expression in the management-transaction
// boilerplate the original always builds by hand: open a management
// transaction, run the given expression as a closure's return value,
// commit the management transaction, and hand back that return value.
func (s *schemaManager) runManagement(ctx context.Context, expr string, bindings map[string]interface{}) (*gremlinResponse, error) {
	script := fmt.Sprintf("mgmt = graph.openManagement(); def result = { %s }.call(); mgmt.commit(); result", expr)
	return s.api.execute(ctx, script, bindings)
}

// CreateIndex builds a composite index: guards that every referenced
// property key exists, resolves the target as either a vertex or edge
// label, then chains buildIndex(name, elementClass).addKey(...)
// [.unique()].indexOnly(label).buildCompositeIndex(), mirroring
// create_index in the original schema.rs.
func (s *schemaManager) CreateIndex(ctx context.Context, collection string, spec adapter.IndexSpec) error {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("idx_%s", collection)
	}

	bindings := map[string]interface{}{"indexName": name, "containerName": collection}

	var expr strings.Builder
	for i, f := range spec.Fields {
		propKey := fmt.Sprintf("prop%d", i)
		bindings[propKey] = f
		fmt.Fprintf(&expr, "if (mgmt.getPropertyKey(%s) == null) { throw new IllegalArgumentException('unknown property key: ' + %s) };\n", propKey, propKey)
	}
	expr.WriteString("def label = mgmt.getVertexLabel(containerName); def elementClass = Vertex.class;\n")
	expr.WriteString("if (label == null) { label = mgmt.getEdgeLabel(containerName); elementClass = Edge.class };\n")
	expr.WriteString("if (label == null) { throw new IllegalArgumentException('unknown label: ' + containerName) };\n")
	expr.WriteString("def builder = mgmt.buildIndex(indexName, elementClass)")
	for i := range spec.Fields {
		propKey := fmt.Sprintf("prop%d", i)
		fmt.Fprintf(&expr, ".addKey(mgmt.getPropertyKey(%s))", propKey)
	}
	if spec.Kind == adapter.IndexUnique {
		expr.WriteString(".unique()")
	}
	expr.WriteString(";\nbuilder.indexOnly(label).buildCompositeIndex()")

	_, err := s.runManagement(ctx, expr.String(), bindings)
	return err
}

// DropIndex is unsupported: dropping a JanusGraph index is a multi-step
// asynchronous process (disable, wait for the change to propagate, then
// remove) with no synchronous equivalent, matching the original's
// UnsupportedOperation.
func (s *schemaManager) DropIndex(ctx context.Context, collection, name string) error {
	return adapter.NewGraphError("janusgraph", adapter.GraphUnsupportedOperation, 0,
		"dropping an index is not supported in this version", nil)
}

// ListIndexes iterates mgmt.getGraphIndexes() for both vertex and edge
// element classes, building one map per index with name/unique/label/
// properties fields, mirroring list_indexes in the original. JanusGraph's
// composite indexes parse as IndexUnique when unique and as IndexComposite
// otherwise — there is no exact/range distinction at this layer the way
// ArangoDB and Neo4j have.
func (s *schemaManager) ListIndexes(ctx context.Context, collection string) ([]adapter.IndexSpec, error) {
	const expr = `
def indexes = [];
[Vertex.class, Edge.class].each { elementClass ->
  mgmt.getGraphIndexes(elementClass).each { idx ->
    indexes << [
      name: idx.name(),
      unique: idx.isUnique(),
      label: idx.getIndexedElement().name(),
      properties: idx.getFieldKeys().collect { it.name() }
    ]
  }
};
indexes`

	resp, err := s.runManagement(ctx, expr, nil)
	if err != nil {
		return nil, err
	}

	items := resultItems(resp)
	out := make([]adapter.IndexSpec, 0, len(items))
	for _, raw := range items {
		m, ok := elementMapObject(raw)
		if !ok {
			continue
		}
		if label, _ := m["label"].(string); label != collection {
			continue
		}
		name, _ := m["name"].(string)
		kind := adapter.IndexComposite
		if unique, _ := m["unique"].(bool); unique {
			kind = adapter.IndexUnique
		}
		var fields []string
		if arr, ok := m["properties"].([]interface{}); ok {
			for _, p := range arr {
				if ps, ok := p.(string); ok {
					fields = append(fields, ps)
				}
			}
		}
		out = append(out, adapter.IndexSpec{Kind: kind, Fields: fields, Name: name})
	}
	return out, nil
}

// CreateLabel declares both a property-key-less vertex label and backs it
// with the guarded idempotent creation the original's define_vertex_label
// uses: only create the label if it doesn't already exist.
func (s *schemaManager) CreateLabel(ctx context.Context, label string) error {
	const expr = `if (mgmt.getVertexLabel(labelName) == null) { mgmt.makeVertexLabel(labelName).make() };
null`
	_, err := s.runManagement(ctx, expr, map[string]interface{}{"labelName": label})
	return err
}
