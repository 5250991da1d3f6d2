package janusgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// traversalEngine implements graph.TraversalEngine against an
// already-open Transaction.
//
// Neither JanusGraph original ships a traversal module, so these queries
// are written directly against TinkerPop's own idioms instead of being
// ported: repeat()/until()/simplePath() for bounded walks, and path()
// to pull back the full vertex/edge sequence in one traversal. Gremlin
// has no built-in shortest-path step (unlike some managed graph
// databases), so FindShortestPath runs the same bounded walk as
// FindAllPaths and picks the fewest-hops result via
// order().by(count(local)).limit(1), the standard Gremlin idiom for this.
type traversalEngine struct {
	tx *Transaction
}

// edgeLabelArgs binds each edge label under its own name and returns the
// comma-joined binding-name argument list Gremlin step calls expect
// (out(label0, label1) rather than a single array argument, matching how
// get_adjacent_vertices binds multiple labels in the original).
func edgeLabelArgs(labels []string, bindings map[string]interface{}) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		key := fmt.Sprintf("edgeLabel%d", i)
		bindings[key] = l
		names[i] = key
	}
	return strings.Join(names, ", ")
}

func (e *traversalEngine) FindShortestPath(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (*adapter.Path, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 15
	}
	bindings := map[string]interface{}{
		"fromID": idToGremlinValue(from),
		"toID":   idToGremlinValue(to),
		"maxD":   maxDepth,
	}
	step := directionStep(opts.Direction, false)
	labelArgs := edgeLabelArgs(opts.EdgeLabels, bindings)

	script := fmt.Sprintf(
		"g.V(fromID).repeat(%s(%s).simplePath()).until(hasId(toID).or().loops().is(gte(maxD))).hasId(toID).path().by(elementMap())"+
			".order().by(count(local)).limit(1)",
		step, labelArgs,
	)

	resp, err := e.tx.run(ctx, script, bindings)
	if err != nil {
		return nil, err
	}
	row, ok := firstResultItem(resp)
	if !ok {
		return nil, nil
	}
	path, err := parsePathFromGremlin(row)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (e *traversalEngine) FindAllPaths(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions, limit int) ([]adapter.Path, error) {
	minDepth := opts.MinDepth
	if minDepth <= 0 {
		minDepth = 1
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	bindings := map[string]interface{}{
		"fromID": idToGremlinValue(from),
		"toID":   idToGremlinValue(to),
		"minD":   minDepth,
		"maxD":   maxDepth,
	}
	step := directionStep(opts.Direction, false)
	labelArgs := edgeLabelArgs(opts.EdgeLabels, bindings)

	script := fmt.Sprintf(
		"g.V(fromID).repeat(%s(%s).simplePath()).until(loops().is(gte(maxD))).emit(hasId(toID).and(loops().is(gte(minD)))).path().by(elementMap())",
		step, labelArgs,
	)
	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf(".limit(%d)", limit)
		script += limitClause
	}

	resp, err := e.tx.run(ctx, script, bindings)
	if err != nil {
		return nil, err
	}

	items := resultItems(resp)
	paths := make([]adapter.Path, 0, len(items))
	for _, row := range items {
		p, err := parsePathFromGremlin(row)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (e *traversalEngine) GetNeighborhood(ctx context.Context, center adapter.ElementID, opts adapter.TraversalOptions, maxVertices int) (adapter.Subgraph, error) {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = 1
	}
	bindings := map[string]interface{}{"centerID": idToGremlinValue(center)}
	step := directionStep(opts.Direction, false)
	labelArgs := edgeLabelArgs(opts.EdgeLabels, bindings)

	script := fmt.Sprintf(
		"g.V(centerID).repeat(%s(%s).simplePath()).times(%d).emit().dedup().elementMap()",
		step, labelArgs, depth,
	)
	if maxVertices > 0 {
		script += fmt.Sprintf(".limit(%d)", maxVertices)
	}

	resp, err := e.tx.run(ctx, script, bindings)
	if err != nil {
		return adapter.Subgraph{}, err
	}

	items := resultItems(resp)
	sub := adapter.Subgraph{}
	for _, row := range items {
		v, err := parseVertexFromGremlin(row)
		if err != nil {
			return adapter.Subgraph{}, err
		}
		sub.Vertices = append(sub.Vertices, v)
	}
	return sub, nil
}

func (e *traversalEngine) PathExists(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (bool, error) {
	paths, err := e.FindAllPaths(ctx, from, to, opts, 1)
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

func (e *traversalEngine) GetVerticesAtDistance(ctx context.Context, src adapter.ElementID, distance int, direction adapter.Direction, edgeLabels []string) ([]adapter.Vertex, error) {
	bindings := map[string]interface{}{"srcID": idToGremlinValue(src)}
	step := directionStep(direction, false)
	labelArgs := edgeLabelArgs(edgeLabels, bindings)

	script := fmt.Sprintf(
		"g.V(srcID).repeat(%s(%s).simplePath()).times(%d).dedup().elementMap()",
		step, labelArgs, distance,
	)

	resp, err := e.tx.run(ctx, script, bindings)
	if err != nil {
		return nil, err
	}

	items := resultItems(resp)
	vertices := make([]adapter.Vertex, 0, len(items))
	for _, row := range items {
		v, err := parseVertexFromGremlin(row)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// parsePathFromGremlin converts a decoded path().by(elementMap()) result
// — a GraphSON g:Path whose "objects" list alternates vertex, edge,
// vertex, edge, ... — into the Go adapter.Path ordered-walk shape. This
// differs from the original Rust Path{vertices, edges, length}, which
// carries the two element kinds as separate unordered lists rather than
// an interleaved walk; zipping objects[i] (vertex) with objects[i+1]
// (edge) here reconstructs the same ordered-walk shape Neo4j's
// parsePathFromRow produces, assuming GraphSON emits path objects in
// walk order (it does — path() preserves traversal order by construction).
func parsePathFromGremlin(row interface{}) (adapter.Path, error) {
	decoded := decodeGraphSON(row)
	m, ok := decoded.(map[string]interface{})
	if !ok {
		return adapter.Path{}, adapter.NewGraphError("janusgraph", adapter.GraphInternalError, 0, "malformed Gremlin path result", nil)
	}
	objects, ok := m["objects"].([]interface{})
	if !ok || len(objects) == 0 {
		return adapter.Path{}, nil
	}

	start, err := objectAsVertex(objects[0])
	if err != nil {
		return adapter.Path{}, err
	}

	path := adapter.Path{Start: start}
	for i := 1; i+1 < len(objects); i += 2 {
		edge, err := objectAsEdge(objects[i])
		if err != nil {
			return adapter.Path{}, err
		}
		vertex, err := objectAsVertex(objects[i+1])
		if err != nil {
			return adapter.Path{}, err
		}
		path.Steps = append(path.Steps, adapter.PathStep{Edge: edge, Vertex: vertex})
	}
	return path, nil
}

// objectAsVertex/objectAsEdge re-wrap an already-decoded path object
// (a plain map, since parsePathFromGremlin already ran decodeGraphSON
// over the whole path) back through the normal elementMap parsers.
func objectAsVertex(obj interface{}) (adapter.Vertex, error) {
	return parseVertexFromGremlin(obj)
}

func objectAsEdge(obj interface{}) (adapter.Edge, error) {
	return parseEdgeFromGremlin(obj)
}
