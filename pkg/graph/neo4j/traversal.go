package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// traversalEngine implements graph.TraversalEngine against an
// already-open Transaction, running every query inside the same HTTP
// transaction as the rest of the caller's work.
//
// No Neo4j traversal.rs exists to ground these queries on directly (the
// original ships only transaction and schema modules), so these use
// Cypher's native shortestPath()/variable-length pattern matching plus a
// list-comprehension projection — the idiomatic Neo4j way to pull a whole
// path's nodes and relationships back in one row, instead of relying on
// the ambiguous bolt/HTTP "graph" result format for ordered path data.
type traversalEngine struct {
	tx *Transaction
}

func relTypeClause(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return ":" + strings.Join(labels, "|")
}

const pathProjection = "[n IN nodes(p) | {id: elementId(n), labels: labels(n), properties: properties(n)}] AS vertices, " +
	"[r IN relationships(p) | {id: elementId(r), type: type(r), properties: properties(r), startId: elementId(startNode(r)), endId: elementId(endNode(r))}] AS edges"

func (e *traversalEngine) FindShortestPath(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (*adapter.Path, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 15
	}
	query := fmt.Sprintf(
		"MATCH (a), (b) WHERE elementId(a) = $from_id AND elementId(b) = $to_id "+
			"MATCH p = shortestPath((a)-[%s*1..%d]-(b)) RETURN %s",
		relTypeClause(opts.EdgeLabels), maxDepth, pathProjection,
	)

	env, err := e.tx.run(ctx, query, map[string]interface{}{
		"from_id": cypherIDString(from),
		"to_id":   cypherIDString(to),
	})
	if err != nil {
		return nil, err
	}
	row := firstRow(env)
	if row == nil {
		return nil, nil
	}
	path, err := parsePathFromRow(row)
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
	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", limit)
	}

	query := fmt.Sprintf(
		"MATCH (a), (b) WHERE elementId(a) = $from_id AND elementId(b) = $to_id "+
			"MATCH p = (a)-[%s*%d..%d]-(b) RETURN %s %s",
		relTypeClause(opts.EdgeLabels), minDepth, maxDepth, pathProjection, limitClause,
	)

	env, err := e.tx.run(ctx, query, map[string]interface{}{
		"from_id": cypherIDString(from),
		"to_id":   cypherIDString(to),
	})
	if err != nil {
		return nil, err
	}

	paths := make([]adapter.Path, 0)
	if env == nil || len(env.Results) == 0 {
		return paths, nil
	}
	for _, d := range env.Results[0].Data {
		if d.Row == nil {
			continue
		}
		p, err := parsePathFromRow(d.Row)
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
	left, right := cypherArrows(opts.Direction)
	limitClause := ""
	if maxVertices > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", maxVertices)
	}

	query := fmt.Sprintf(
		"MATCH (center) WHERE elementId(center) = $center_id "+
			"MATCH (center)%s[r%s*1..%d]%s(neighbor) "+
			"RETURN DISTINCT elementId(neighbor) AS id, labels(neighbor) AS labels, properties(neighbor) AS properties %s",
		left, relTypeClause(opts.EdgeLabels), depth, right, limitClause,
	)

	env, err := e.tx.run(ctx, query, map[string]interface{}{"center_id": cypherIDString(center)})
	if err != nil {
		return adapter.Subgraph{}, err
	}

	sub := adapter.Subgraph{}
	if env == nil || len(env.Results) == 0 {
		return sub, nil
	}
	for _, d := range env.Results[0].Data {
		if len(d.Row) < 3 {
			continue
		}
		id, _ := d.Row[0].(string)
		var labels []string
		if arr, ok := d.Row[1].([]interface{}); ok {
			for _, l := range arr {
				if s, ok := l.(string); ok {
					labels = append(labels, s)
				}
			}
		}
		label := ""
		if len(labels) > 0 {
			label = labels[0]
		}
		props, _ := d.Row[2].(map[string]interface{})
		sub.Vertices = append(sub.Vertices, adapter.Vertex{
			ID:         adapter.StringID(id),
			Label:      label,
			Properties: propertiesFromCypherObject(props),
		})
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
	left, right := cypherArrows(direction)
	query := fmt.Sprintf(
		"MATCH (start) WHERE elementId(start) = $start_id "+
			"MATCH (start)%s[r%s*%d..%d]%s(v) "+
			"RETURN DISTINCT elementId(v) AS id, labels(v) AS labels, properties(v) AS properties",
		left, relTypeClause(edgeLabels), distance, distance, right,
	)

	env, err := e.tx.run(ctx, query, map[string]interface{}{"start_id": cypherIDString(src)})
	if err != nil {
		return nil, err
	}

	vertices := make([]adapter.Vertex, 0)
	if env == nil || len(env.Results) == 0 {
		return vertices, nil
	}
	for _, d := range env.Results[0].Data {
		if len(d.Row) < 3 {
			continue
		}
		id, _ := d.Row[0].(string)
		var labels []string
		if arr, ok := d.Row[1].([]interface{}); ok {
			for _, l := range arr {
				if s, ok := l.(string); ok {
					labels = append(labels, s)
				}
			}
		}
		label := ""
		if len(labels) > 0 {
			label = labels[0]
		}
		props, _ := d.Row[2].(map[string]interface{})
		vertices = append(vertices, adapter.Vertex{
			ID:         adapter.StringID(id),
			Label:      label,
			Properties: propertiesFromCypherObject(props),
		})
	}
	return vertices, nil
}

// parsePathFromRow builds a Path from the two-column [vertices, edges]
// projection pathProjection emits, where vertices[0] is the path's start
// and vertices[i+1] is the vertex edges[i] leads to — mirroring the
// vertices/edges pairing ArangoDB's p.vertices/p.edges traversal
// projection uses.
func parsePathFromRow(row []interface{}) (adapter.Path, error) {
	if len(row) < 2 {
		return adapter.Path{}, nil
	}
	vertexMaps, _ := row[0].([]interface{})
	edgeMaps, _ := row[1].([]interface{})
	if len(vertexMaps) == 0 {
		return adapter.Path{}, nil
	}

	start, err := vertexFromProjection(vertexMaps[0])
	if err != nil {
		return adapter.Path{}, err
	}

	path := adapter.Path{Start: start}
	for i, em := range edgeMaps {
		edge, err := edgeFromProjection(em)
		if err != nil {
			return adapter.Path{}, err
		}
		var vertex adapter.Vertex
		if i+1 < len(vertexMaps) {
			vertex, err = vertexFromProjection(vertexMaps[i+1])
			if err != nil {
				return adapter.Path{}, err
			}
		}
		path.Steps = append(path.Steps, adapter.PathStep{Edge: edge, Vertex: vertex})
	}
	return path, nil
}

func vertexFromProjection(v interface{}) (adapter.Vertex, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return adapter.Vertex{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "malformed vertex projection in path result", nil)
	}
	id, _ := m["id"].(string)
	label := ""
	if labels, ok := m["labels"].([]interface{}); ok && len(labels) > 0 {
		label, _ = labels[0].(string)
	}
	props, _ := m["properties"].(map[string]interface{})
	return adapter.Vertex{ID: adapter.StringID(id), Label: label, Properties: propertiesFromCypherObject(props)}, nil
}

func edgeFromProjection(v interface{}) (adapter.Edge, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return adapter.Edge{}, adapter.NewGraphError("neo4j", adapter.GraphInternalError, 0, "malformed edge projection in path result", nil)
	}
	id, _ := m["id"].(string)
	typeStr, _ := m["type"].(string)
	startID, _ := m["startId"].(string)
	endID, _ := m["endId"].(string)
	props, _ := m["properties"].(map[string]interface{})
	return adapter.Edge{
		ID:         adapter.StringID(id),
		Label:      typeStr,
		From:       adapter.StringID(startID),
		To:         adapter.StringID(endID),
		Properties: propertiesFromCypherObject(props),
	}, nil
}
