package neo4j

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/graph"
	"github.com/adapterhub/commonrt/pkg/graph/querysyntax"
)

// Transaction implements graph.Transaction against one Neo4j transactional
// Cypher HTTP endpoint. Not safe for concurrent use; callers own it
// exclusively between begin and commit/rollback.
type Transaction struct {
	api   *api
	txURL string
	state *graph.TxStateMachine
}

// BeginTransaction opens a Neo4j transaction and returns a Transaction
// bound to it.
func BeginTransaction(ctx context.Context, cfg Config) (*Transaction, error) {
	a := newAPI(cfg)
	if err := a.ping(ctx); err != nil {
		return nil, err
	}
	txURL, err := a.beginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{api: a, txURL: txURL, state: graph.NewTxStateMachine()}, nil
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
	if err := t.api.commitTransaction(ctx, t.txURL); err != nil {
		return err
	}
	t.state.Commit()
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if err := t.api.rollbackTransaction(ctx, t.txURL); err != nil {
		return err
	}
	t.state.Rollback()
	return nil
}

// IsActive always reports true for an open Transaction once requireActive
// passes — Neo4j's HTTP transactions have no server-reported liveness
// short of actually issuing a statement, so the local state machine is
// the single source of truth here, same as the original's is_active.
func (t *Transaction) IsActive() bool { return t.state.IsActive() }

func (t *Transaction) Schema() graph.SchemaManager     { return &schemaManager{api: t.api} }
func (t *Transaction) Traversal() graph.TraversalEngine { return &traversalEngine{tx: t} }

func (t *Transaction) run(ctx context.Context, cypher string, params map[string]interface{}) (*txResponse, error) {
	if err := t.requireActive(); err != nil {
		return nil, err
	}
	return t.api.executeInTransaction(ctx, t.txURL, []statement{{Statement: cypher, Parameters: params}})
}

// firstRow returns the first data row's Row slice of the first statement
// result, or nil if there is none.
func firstRow(env *txResponse) []interface{} {
	if env == nil || len(env.Results) == 0 || len(env.Results[0].Data) == 0 {
		return nil
	}
	return env.Results[0].Data[0].Row
}

// firstGraphNode decodes the first statement result's first data row's
// "graph.nodes[0]" entry, the shape create_vertex/update_vertex/
// find_vertices all request via resultDataContents: ["row","graph"].
func firstGraphNode(env *txResponse) (graphNode, bool) {
	if env == nil || len(env.Results) == 0 || len(env.Results[0].Data) == 0 {
		return graphNode{}, false
	}
	raw := env.Results[0].Data[0].Graph
	if len(raw) == 0 {
		return graphNode{}, false
	}
	var g struct {
		Nodes []graphNode `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &g); err != nil || len(g.Nodes) == 0 {
		return graphNode{}, false
	}
	return g.Nodes[0], true
}

// CreateVertex mirrors create_vertex_with_labels: "CREATE (n:`Label1`:
// `Label2`) SET n = $props RETURN n", unlike ArangoDB, Neo4j supports
// multiple labels natively.
func (t *Transaction) CreateVertex(ctx context.Context, spec graph.VertexSpec) (adapter.Vertex, error) {
	labels := append([]string{spec.Label}, spec.AdditionalLabels...)
	cypherLabels := strings.Join(labels, "`:`")

	env, err := t.run(ctx, fmt.Sprintf("CREATE (n:`%s`) SET n = $props RETURN n", cypherLabels), map[string]interface{}{
		"props": toCypherProperties(spec.Properties),
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	node, ok := firstGraphNode(env)
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "missing graph node in create_vertex response", nil)
	}
	return parseVertexFromGraphData(node, nil)
}

// GetVertex supports both the legacy "prop:<key>:<value>" lookup shim
// and the default elementId(n) match, exactly as the original does.
func (t *Transaction) GetVertex(ctx context.Context, id adapter.ElementID) (*adapter.Vertex, error) {
	if key, value, ok := propertyLookupShim(id); ok {
		env, err := t.run(ctx, fmt.Sprintf("MATCH (n) WHERE n.`%s` = $value RETURN n", key), map[string]interface{}{
			"value": value,
		})
		if err != nil {
			return nil, err
		}
		node, ok := firstGraphNode(env)
		if !ok {
			return nil, nil
		}
		v, err := parseVertexFromGraphData(node, nil)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	env, err := t.run(ctx, "MATCH (n) WHERE elementId(n) = $id RETURN n", map[string]interface{}{
		"id": cypherIDString(id),
	})
	if err != nil {
		return nil, err
	}
	node, ok := firstGraphNode(env)
	if !ok {
		return nil, nil
	}
	v, err := parseVertexFromGraphData(node, nil)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *Transaction) UpdateVertex(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error) {
	env, err := t.run(ctx, "MATCH (n) WHERE elementId(n) = $id SET n = $props RETURN n", map[string]interface{}{
		"id":    cypherIDString(id),
		"props": toCypherProperties(props),
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	node, ok := firstGraphNode(env)
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphElementNotFound, 404, "vertex not found", nil)
	}
	return parseVertexFromGraphData(node, &id)
}

func (t *Transaction) UpdateVertexProperties(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error) {
	env, err := t.run(ctx, "MATCH (n) WHERE elementId(n) = $id SET n += $props RETURN n", map[string]interface{}{
		"id":    cypherIDString(id),
		"props": toCypherProperties(props),
	})
	if err != nil {
		return adapter.Vertex{}, err
	}
	node, ok := firstGraphNode(env)
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphElementNotFound, 404, "vertex not found", nil)
	}
	return parseVertexFromGraphData(node, &id)
}

func (t *Transaction) DeleteVertex(ctx context.Context, id adapter.ElementID, deleteEdges bool) error {
	detach := ""
	if deleteEdges {
		detach = "DETACH"
	}
	_, err := t.run(ctx, fmt.Sprintf("MATCH (n) WHERE elementId(n) = $id %s DELETE n", detach), map[string]interface{}{
		"id": cypherIDString(id),
	})
	return err
}

func (t *Transaction) FindVertices(ctx context.Context, opts graph.FindOptions) ([]adapter.Vertex, error) {
	params := map[string]interface{}{}

	matchClause := "MATCH (n)"
	if opts.Label != "" {
		matchClause = fmt.Sprintf("MATCH (n:`%s`)", opts.Label)
	}

	whereClause := buildWhere(opts.Filters, "n", params)
	sortClause := buildSort(opts.Sort, "n")

	limitClause := ""
	if opts.Limit > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", opts.Limit)
	}
	offsetClause := ""
	if opts.Offset > 0 {
		offsetClause = fmt.Sprintf("SKIP %d", opts.Offset)
	}

	query := fmt.Sprintf("%s %s RETURN n %s %s %s", matchClause, whereClause, sortClause, offsetClause, limitClause)

	env, err := t.run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0)
	if env == nil || len(env.Results) == 0 {
		return vertices, nil
	}
	for _, d := range env.Results[0].Data {
		var g struct {
			Nodes []graphNode `json:"nodes"`
		}
		if len(d.Graph) == 0 {
			continue
		}
		if err := json.Unmarshal(d.Graph, &g); err != nil || len(g.Nodes) == 0 {
			continue
		}
		v, err := parseVertexFromGraphData(g.Nodes[0], nil)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// CreateEdge matches endpoints by numeric id(a)/id(b) and returns
// toString(id(r)) so the edge keeps a plain numeric-looking string ID,
// per the original's comment about avoiding Neo4j's "4:...:67" elementId
// format on a freshly created relationship.
func (t *Transaction) CreateEdge(ctx context.Context, spec graph.EdgeSpec) (adapter.Edge, error) {
	fromNum, err := numericID(spec.From)
	if err != nil {
		return adapter.Edge{}, err
	}
	toNum, err := numericID(spec.To)
	if err != nil {
		return adapter.Edge{}, err
	}

	query := fmt.Sprintf(
		"MATCH (a) WHERE id(a) = $from_id MATCH (b) WHERE id(b) = $to_id "+
			"CREATE (a)-[r:`%s`]->(b) SET r = $props "+
			"RETURN toString(id(r)), type(r), properties(r), toString(id(startNode(r))), toString(id(endNode(r)))",
		spec.Label)

	env, err := t.run(ctx, query, map[string]interface{}{
		"from_id": fromNum,
		"to_id":   toNum,
		"props":   toCypherProperties(spec.Properties),
	})
	if err != nil {
		return adapter.Edge{}, err
	}
	row := firstRow(env)
	if row == nil {
		return adapter.Edge{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "missing row in create_edge response", nil)
	}
	return parseEdgeFromRow(row)
}

func (t *Transaction) GetEdge(ctx context.Context, id adapter.ElementID) (*adapter.Edge, error) {
	idNum, err := numericID(id)
	if err != nil {
		return nil, err
	}

	env, err := t.run(ctx, "MATCH ()-[r]-() WHERE id(r) = $id RETURN toString(id(r)), type(r), properties(r), toString(id(startNode(r))), toString(id(endNode(r)))", map[string]interface{}{
		"id": idNum,
	})
	if err != nil {
		return nil, err
	}
	row := firstRow(env)
	if row == nil {
		return nil, nil
	}
	e, err := parseEdgeFromRow(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEdge uses SET r = $props (a full property overwrite, but never
// touching the endpoints, since Cypher relationships carry no document-
// level REPLACE the way ArangoDB's edge documents do — no endpoint
// re-attachment needed here).
func (t *Transaction) UpdateEdge(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Edge, error) {
	env, err := t.run(ctx, "MATCH ()-[r]-() WHERE elementId(r) = $id SET r = $props RETURN elementId(r), type(r), properties(r), elementId(startNode(r)), elementId(endNode(r))", map[string]interface{}{
		"id":    cypherIDString(id),
		"props": toCypherProperties(props),
	})
	if err != nil {
		return adapter.Edge{}, err
	}
	row := firstRow(env)
	if row == nil {
		return adapter.Edge{}, adapter.NewGraphError("neo4j", adapter.GraphElementNotFound, 404, "edge not found", nil)
	}
	return parseEdgeFromRow(row)
}

func (t *Transaction) DeleteEdge(ctx context.Context, id adapter.ElementID) error {
	idNum, err := numericID(id)
	if err != nil {
		return err
	}
	_, err = t.run(ctx, "MATCH ()-[r]-() WHERE id(r) = $id DELETE r", map[string]interface{}{"id": idNum})
	return err
}

func (t *Transaction) FindEdges(ctx context.Context, opts graph.FindOptions) ([]adapter.Edge, error) {
	params := map[string]interface{}{}

	edgeTypeStr := ""
	if opts.Label != "" {
		edgeTypeStr = ":`" + opts.Label + "`"
	}
	matchClause := fmt.Sprintf("MATCH ()-[r%s]-()", edgeTypeStr)

	whereClause := buildWhere(opts.Filters, "r", params)
	sortClause := buildSort(opts.Sort, "r")

	limitClause := ""
	if opts.Limit > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", opts.Limit)
	}
	offsetClause := ""
	if opts.Offset > 0 {
		offsetClause = fmt.Sprintf("SKIP %d", opts.Offset)
	}

	query := fmt.Sprintf("%s %s RETURN elementId(r), type(r), properties(r), elementId(startNode(r)), elementId(endNode(r)) %s %s %s",
		matchClause, whereClause, sortClause, offsetClause, limitClause)

	env, err := t.run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	edges := make([]adapter.Edge, 0)
	if env == nil || len(env.Results) == 0 {
		return edges, nil
	}
	for _, d := range env.Results[0].Data {
		if d.Row == nil {
			continue
		}
		e, err := parseEdgeFromRow(d.Row)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (t *Transaction) CreateVertices(ctx context.Context, specs []graph.VertexSpec) ([]adapter.Vertex, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	statements := make([]statement, len(specs))
	for i, spec := range specs {
		labels := append([]string{spec.Label}, spec.AdditionalLabels...)
		cypherLabels := strings.Join(labels, "`:`")
		statements[i] = statement{
			Statement:  fmt.Sprintf("CREATE (n:`%s`) SET n = $props RETURN n", cypherLabels),
			Parameters: map[string]interface{}{"props": toCypherProperties(spec.Properties)},
		}
	}

	if err := t.requireActive(); err != nil {
		return nil, err
	}
	env, err := t.api.executeInTransaction(ctx, t.txURL, statements)
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0, len(specs))
	for _, result := range env.Results {
		for _, d := range result.Data {
			var g struct {
				Nodes []graphNode `json:"nodes"`
			}
			if len(d.Graph) == 0 {
				continue
			}
			if err := json.Unmarshal(d.Graph, &g); err != nil || len(g.Nodes) == 0 {
				continue
			}
			v, err := parseVertexFromGraphData(g.Nodes[0], nil)
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, v)
		}
	}
	return vertices, nil
}

func (t *Transaction) CreateEdges(ctx context.Context, specs []graph.EdgeSpec) ([]adapter.Edge, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	statements := make([]statement, len(specs))
	for i, spec := range specs {
		statements[i] = statement{
			Statement: fmt.Sprintf(
				"MATCH (a), (b) WHERE elementId(a) = $from_id AND elementId(b) = $to_id "+
					"CREATE (a)-[r:`%s`]->(b) SET r = $props "+
					"RETURN elementId(r), type(r), properties(r), elementId(a), elementId(b)", spec.Label),
			Parameters: map[string]interface{}{
				"from_id": cypherIDString(spec.From),
				"to_id":   cypherIDString(spec.To),
				"props":   toCypherProperties(spec.Properties),
			},
		}
	}

	if err := t.requireActive(); err != nil {
		return nil, err
	}
	env, err := t.api.executeInTransaction(ctx, t.txURL, statements)
	if err != nil {
		return nil, err
	}

	edges := make([]adapter.Edge, 0, len(specs))
	for _, result := range env.Results {
		for _, d := range result.Data {
			if d.Row == nil {
				continue
			}
			e, err := parseEdgeFromRow(d.Row)
			if err != nil {
				return nil, err
			}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// UpsertVertex rejects a nil-or-empty setProps the same way the original
// requires at least one property to build the MERGE pattern's match
// clauses, since Neo4j has no document key analogous to ArangoDB's _key.
// matchProps is unused: Neo4j's MERGE pattern builds its own match
// clauses straight from setProps, unlike ArangoDB's key-based UPSERT.
func (t *Transaction) UpsertVertex(ctx context.Context, label string, matchProps, setProps *adapter.PropertyMap) (adapter.Vertex, error) {
	if setProps == nil || setProps.Len() == 0 {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphInvalidQuery, 0,
			"upsert_vertex requires at least one property to match on", nil)
	}

	setMap := toCypherProperties(setProps)
	params := map[string]interface{}{}
	clauses := make([]string, 0, len(setMap))
	for k, v := range setMap {
		paramName := "match_" + k
		params[paramName] = v
		clauses = append(clauses, fmt.Sprintf("%s: $%s", k, paramName))
	}
	mergeClause := "{ " + strings.Join(clauses, ", ") + " }"
	params["set_props"] = setMap

	env, err := t.run(ctx, fmt.Sprintf("MERGE (n:`%s` %s) SET n = $set_props RETURN n", label, mergeClause), params)
	if err != nil {
		return adapter.Vertex{}, err
	}
	node, ok := firstGraphNode(env)
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "missing graph node in upsert_vertex response", nil)
	}
	return parseVertexFromGraphData(node, nil)
}

func (t *Transaction) GetAdjacentVertices(ctx context.Context, id adapter.ElementID, direction adapter.Direction, edgeLabels []string) ([]adapter.Vertex, error) {
	left, right := cypherArrows(direction)
	edgeTypeStr := ""
	if len(edgeLabels) > 0 {
		edgeTypeStr = ":" + strings.Join(edgeLabels, "|")
	}

	query := fmt.Sprintf("MATCH (a)%s[r%s]%s(b) WHERE elementId(a) = $id RETURN b", left, edgeTypeStr, right)
	env, err := t.run(ctx, query, map[string]interface{}{"id": cypherIDString(id)})
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0)
	if env == nil || len(env.Results) == 0 {
		return vertices, nil
	}
	for _, d := range env.Results[0].Data {
		var g struct {
			Nodes []graphNode `json:"nodes"`
		}
		if len(d.Graph) == 0 {
			continue
		}
		if err := json.Unmarshal(d.Graph, &g); err != nil || len(g.Nodes) == 0 {
			continue
		}
		v, err := parseVertexFromGraphData(g.Nodes[0], nil)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// cypherArrows renders the direction-dependent relationship pattern
// fragment: ()-[r]->(), ()<-[r]-(), or ()-[r]-().
func cypherArrows(d adapter.Direction) (left, right string) {
	switch d {
	case adapter.DirectionOut:
		return "", "->"
	case adapter.DirectionIn:
		return "<-", ""
	default:
		return "-", "-"
	}
}

func buildWhere(filters []graph.Filter, alias string, paramsOut map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	qsFilters := make([]querysyntax.Filter, len(filters))
	for i, f := range filters {
		qsFilters[i] = querysyntax.Filter{Field: f.Field, Operator: querysyntax.Operator(f.Operator), Value: f.Value.Interface()}
	}
	return querysyntax.BuildWhereClause(qsFilters, alias, paramsOut, querysyntax.Cypher)
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
	return querysyntax.BuildSortClause(qsSort, alias, querysyntax.Cypher)
}
