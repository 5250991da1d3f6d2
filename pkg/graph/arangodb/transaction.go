package arangodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/graph"
	"github.com/adapterhub/commonrt/pkg/graph/querysyntax"
)

// Transaction implements graph.Transaction against one open ArangoDB
// stream transaction. It is not safe for concurrent use by multiple
// goroutines; callers own it exclusively between begin and commit/rollback.
type Transaction struct {
	api    *api
	txID   string
	state  *graph.TxStateMachine
}

// BeginTransaction opens an ArangoDB stream transaction declaring access
// to the given collections and returns a Transaction bound to it.
func BeginTransaction(ctx context.Context, cfg Config, readColls, writeColls []string) (*Transaction, error) {
	a := newAPI(cfg)
	if err := a.ping(ctx); err != nil {
		return nil, err
	}
	txID, err := a.beginTransaction(ctx, readColls, writeColls)
	if err != nil {
		return nil, err
	}
	return &Transaction{api: a, txID: txID, state: graph.NewTxStateMachine()}, nil
}

func (t *Transaction) requireActive() error {
	if !t.state.IsActive() {
		return adapter.ErrTransactionClosed
	}
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if err := t.api.commitTransaction(ctx, t.txID); err != nil {
		return err
	}
	t.state.Commit()
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if err := t.api.rollbackTransaction(ctx, t.txID); err != nil {
		return err
	}
	t.state.Rollback()
	return nil
}

func (t *Transaction) IsActive() bool { return t.state.IsActive() }

func (t *Transaction) Schema() graph.SchemaManager       { return &schemaManager{api: t.api} }
func (t *Transaction) Traversal() graph.TraversalEngine   { return &traversalEngine{tx: t} }

func (t *Transaction) exec(ctx context.Context, query string, bindVars map[string]interface{}) ([]interface{}, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	return t.api.executeInTransaction(ctx, t.txID, query, bindVars)
}

// CreateVertex mirrors the original's INSERT ... OPTIONS { ignoreErrors:
// false } RETURN NEW, the same shape regardless of whether additional
// labels were requested — ArangoDB has no secondary-label concept, so a
// non-empty AdditionalLabels is rejected up front.
func (t *Transaction) CreateVertex(ctx context.Context, spec graph.VertexSpec) (adapter.Vertex, error) {
	if len(spec.AdditionalLabels) > 0 {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphUnsupportedOperation, 0,
			"arangodb does not support multiple labels per vertex; use vertex collections instead", nil)
	}

	result, err := t.exec(ctx, "INSERT @props INTO @@collection OPTIONS { ignoreErrors: false } RETURN NEW", map[string]interface{}{
		"props":        toArangoProperties(spec.Properties),
		"@collection":  spec.Label,
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "missing vertex document in response", nil)
	}
	return parseVertexFromDocument(docs[0], spec.Label)
}

func (t *Transaction) GetVertex(ctx context.Context, id adapter.ElementID) (*adapter.Vertex, error) {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return nil, err
	}
	key := keyFromElementID(id)

	result, err := t.exec(ctx, "RETURN DOCUMENT(@@collection, @key)", map[string]interface{}{
		"@collection": collection,
		"key":         key,
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || result[0] == nil {
		return nil, nil
	}
	doc, ok := result[0].(map[string]interface{})
	if !ok || len(doc) == 0 {
		return nil, nil
	}
	v, err := parseVertexFromDocument(doc, collection)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *Transaction) UpdateVertex(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error) {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return adapter.Vertex{}, err
	}
	key := keyFromElementID(id)

	result, err := t.exec(ctx, "REPLACE @key WITH @props IN @@collection RETURN NEW", map[string]interface{}{
		"key":         key,
		"props":       toArangoProperties(props),
		"@collection": collection,
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphElementNotFound, 404, "vertex not found", nil)
	}
	return parseVertexFromDocument(docs[0], collection)
}

func (t *Transaction) UpdateVertexProperties(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error) {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return adapter.Vertex{}, err
	}
	key := keyFromElementID(id)

	result, err := t.exec(ctx, "UPDATE @key WITH @props IN @@collection OPTIONS { keepNull: false, mergeObjects: true } RETURN NEW", map[string]interface{}{
		"key":         key,
		"props":       toArangoProperties(props),
		"@collection": collection,
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphElementNotFound, 404, "vertex not found", nil)
	}
	return parseVertexFromDocument(docs[0], collection)
}

func (t *Transaction) DeleteVertex(ctx context.Context, id adapter.ElementID, deleteEdges bool) error {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return err
	}
	key := keyFromElementID(id)

	if deleteEdges {
		collections, err := t.api.listCollections(ctx)
		if err == nil {
			vertexID := id.String()
			for _, c := range collections {
				if c.Type != collectionKindEdge {
					continue
				}
				_, _ = t.exec(ctx, "FOR e IN @@collection FILTER e._from == @vertex_id OR e._to == @vertex_id REMOVE e IN @@collection", map[string]interface{}{
					"vertex_id":   vertexID,
					"@collection": c.Name,
				})
			}
		}
	}

	_, err = t.exec(ctx, "REMOVE @key IN @@collection", map[string]interface{}{
		"key":         key,
		"@collection": collection,
	})
	return err
}

func (t *Transaction) FindVertices(ctx context.Context, opts graph.FindOptions) ([]adapter.Vertex, error) {
	if opts.Label == "" {
		return nil, adapter.NewGraphError("arangodb", adapter.GraphInvalidQuery, 0, "label must be provided for find_vertices", nil)
	}

	bindVars := map[string]interface{}{"@collection": opts.Label}
	parts := []string{"FOR v IN @@collection"}

	if where := buildWhere(opts.Filters, "v", bindVars); where != "" {
		parts = append(parts, where)
	}
	if sort := buildSort(opts.Sort, "v"); sort != "" {
		parts = append(parts, sort)
	}

	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 100
	}
	parts = append(parts, fmt.Sprintf("LIMIT %d, %d", offset, limit), "RETURN v")

	result, err := t.exec(ctx, strings.Join(parts, " "), bindVars)
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0, len(result))
	for _, doc := range asObjectSlice(result) {
		v, err := parseVertexFromDocument(doc, opts.Label)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// CreateEdge mirrors INSERT MERGE({ _from, _to }, @props) INTO
// @@collection RETURN NEW.
func (t *Transaction) CreateEdge(ctx context.Context, spec graph.EdgeSpec) (adapter.Edge, error) {
	result, err := t.exec(ctx, "INSERT MERGE({ _from: @from, _to: @to }, @props) INTO @@collection RETURN NEW", map[string]interface{}{
		"from":        spec.From.String(),
		"to":          spec.To.String(),
		"props":       toArangoProperties(spec.Properties),
		"@collection": spec.Label,
	})
	if err != nil {
		return adapter.Edge{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Edge{}, adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "missing edge document in response", nil)
	}
	return parseEdgeFromDocument(docs[0], spec.Label)
}

func (t *Transaction) GetEdge(ctx context.Context, id adapter.ElementID) (*adapter.Edge, error) {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return nil, err
	}
	key := keyFromElementID(id)

	result, err := t.exec(ctx, "RETURN DOCUMENT(@@collection, @key)", map[string]interface{}{
		"@collection": collection,
		"key":         key,
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || result[0] == nil {
		return nil, nil
	}
	doc, ok := result[0].(map[string]interface{})
	if !ok || len(doc) == 0 {
		return nil, nil
	}
	e, err := parseEdgeFromDocument(doc, collection)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEdge replaces an edge's full document, re-attaching the existing
// _from/_to endpoints first since REPLACE would otherwise drop them.
func (t *Transaction) UpdateEdge(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Edge, error) {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return adapter.Edge{}, err
	}
	key := keyFromElementID(id)

	current, err := t.GetEdge(ctx, id)
	if err != nil {
		return adapter.Edge{}, err
	}
	if current == nil {
		return adapter.Edge{}, adapter.NewGraphError("arangodb", adapter.GraphElementNotFound, 404, "edge not found", nil)
	}

	propsMap := toArangoProperties(props)
	propsMap["_from"] = current.From.String()
	propsMap["_to"] = current.To.String()

	result, err := t.exec(ctx, "REPLACE @key WITH @props IN @@collection RETURN NEW", map[string]interface{}{
		"key":         key,
		"props":       propsMap,
		"@collection": collection,
	})
	if err != nil {
		return adapter.Edge{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Edge{}, adapter.NewGraphError("arangodb", adapter.GraphElementNotFound, 404, "edge not found", nil)
	}
	return parseEdgeFromDocument(docs[0], collection)
}

func (t *Transaction) DeleteEdge(ctx context.Context, id adapter.ElementID) error {
	collection, err := collectionFromElementID(id)
	if err != nil {
		return err
	}
	key := keyFromElementID(id)

	_, err = t.exec(ctx, "REMOVE @key IN @@collection", map[string]interface{}{
		"key":         key,
		"@collection": collection,
	})
	return err
}

func (t *Transaction) FindEdges(ctx context.Context, opts graph.FindOptions) ([]adapter.Edge, error) {
	if opts.Label == "" {
		return nil, adapter.NewGraphError("arangodb", adapter.GraphInvalidQuery, 0, "an edge label must be provided for find_edges", nil)
	}

	bindVars := map[string]interface{}{"@collection": opts.Label}
	parts := []string{"FOR e IN @@collection"}

	if where := buildWhere(opts.Filters, "e", bindVars); where != "" {
		parts = append(parts, where)
	}
	if sort := buildSort(opts.Sort, "e"); sort != "" {
		parts = append(parts, sort)
	}

	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 100
	}
	parts = append(parts, fmt.Sprintf("LIMIT %d, %d", offset, limit), "RETURN e")

	result, err := t.exec(ctx, strings.Join(parts, " "), bindVars)
	if err != nil {
		return nil, err
	}

	edges := make([]adapter.Edge, 0, len(result))
	for _, doc := range asObjectSlice(result) {
		e, err := parseEdgeFromDocument(doc, opts.Label)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (t *Transaction) CreateVertices(ctx context.Context, specs []graph.VertexSpec) ([]adapter.Vertex, error) {
	out := make([]adapter.Vertex, 0, len(specs))
	for _, spec := range specs {
		v, err := t.CreateVertex(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Transaction) CreateEdges(ctx context.Context, specs []graph.EdgeSpec) ([]adapter.Edge, error) {
	out := make([]adapter.Edge, 0, len(specs))
	for _, spec := range specs {
		e, err := t.CreateEdge(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// UpsertVertex requires matchProps to carry a "_key" since ArangoDB's
// UPSERT clause needs a document search template, not an arbitrary
// property match; key-based upsert is the form the original supports.
func (t *Transaction) UpsertVertex(ctx context.Context, label string, matchProps, setProps *adapter.PropertyMap) (adapter.Vertex, error) {
	key, ok := matchProps.Get("_key")
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphUnsupportedOperation, 0,
			"upsert_vertex requires a _key match property", nil)
	}
	keyStr, _ := key.AsString()

	result, err := t.exec(ctx, "UPSERT @search INSERT @props UPDATE @props IN @@collection RETURN NEW", map[string]interface{}{
		"search":      map[string]interface{}{"_key": keyStr},
		"props":       toArangoProperties(setProps),
		"@collection": label,
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	docs := asObjectSlice(result)
	if len(docs) == 0 {
		return adapter.Vertex{}, adapter.NewGraphError("arangodb", adapter.GraphInternalError, 0, "missing vertex document in upsert response", nil)
	}
	return parseVertexFromDocument(docs[0], label)
}

func (t *Transaction) GetAdjacentVertices(ctx context.Context, id adapter.ElementID, direction adapter.Direction, edgeLabels []string) ([]adapter.Vertex, error) {
	dirStr := arangoDirection(direction)
	collections := strings.Join(edgeLabels, ", ")

	query := fmt.Sprintf("FOR v IN 1..1 %s @start_node %s RETURN v", dirStr, collections)
	result, err := t.exec(ctx, query, map[string]interface{}{"start_node": id.String()})
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0, len(result))
	for _, doc := range asObjectSlice(result) {
		v, err := parseVertexFromDocument(doc, collectionOf(doc))
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

func arangoDirection(d adapter.Direction) string {
	switch d {
	case adapter.DirectionOut:
		return "OUTBOUND"
	case adapter.DirectionIn:
		return "INBOUND"
	default:
		return "ANY"
	}
}

func buildWhere(filters []graph.Filter, alias string, bindVars map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	qsFilters := make([]querysyntax.Filter, len(filters))
	for i, f := range filters {
		qsFilters[i] = querysyntax.Filter{Field: f.Field, Operator: querysyntax.Operator(f.Operator), Value: f.Value.Interface()}
	}
	return querysyntax.BuildWhereClause(qsFilters, alias, bindVars, querysyntax.AQL)
}

func buildSort(sort []graph.Sort, alias string) string {
	if len(sort) == 0 {
		return ""
	}
	qsSort := make([]querysyntax.Sort, len(sort))
	for i, s := range sort {
		dir := querysyntax.Ascending
		if s.Descending {
			dir = querysyntax.Descending
		}
		qsSort[i] = querysyntax.Sort{Field: s.Field, Direction: dir}
	}
	return querysyntax.BuildSortClause(qsSort, alias, querysyntax.AQL)
}
