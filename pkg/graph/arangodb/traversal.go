package arangodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// edgeCollectionsClause renders the edge collections a traversal walks.
// With no labels the clause is empty: no default collection set is
// assumed, and ArangoDB rejects a traversal that names no edge collection.
func edgeCollectionsClause(labels []string) string {
	return strings.Join(labels, ", ")
}

// traversalEngine implements graph.TraversalEngine against an
// already-open Transaction, running every query inside the same stream
// transaction as the rest of the caller's work.
type traversalEngine struct {
	tx *Transaction
}

func (e *traversalEngine) FindShortestPath(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (*adapter.Path, error) {
	edgeColls := edgeCollectionsClause(opts.EdgeLabels)
	query := fmt.Sprintf("FOR vertex, edge IN ANY SHORTEST_PATH @from_id TO @to_id %s RETURN { vertex: vertex, edge: edge }", edgeColls)

	result, err := e.tx.exec(ctx, query, map[string]interface{}{
		"from_id": from.String(),
		"to_id":   to.String(),
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	path := adapter.Path{}
	for i, item := range asObjectSlice(result) {
		vDoc, _ := item["vertex"].(map[string]interface{})
		eDoc, _ := item["edge"].(map[string]interface{})
		if vDoc == nil {
			continue
		}
		v, err := parseVertexFromDocument(vDoc, collectionOf(vDoc))
		if err != nil {
			return nil, err
		}
		if i == 0 {
			path.Start = v
			continue
		}
		var step adapter.PathStep
		if eDoc != nil {
			edge, err := parseEdgeFromDocument(eDoc, collectionOf(eDoc))
			if err != nil {
				return nil, err
			}
			step.Edge = edge
		}
		step.Vertex = v
		path.Steps = append(path.Steps, step)
	}
	return &path, nil
}

func (e *traversalEngine) FindAllPaths(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions, limit int) ([]adapter.Path, error) {
	minDepth := 1
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	edgeColls := edgeCollectionsClause(opts.EdgeLabels)
	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", limit)
	}

	query := fmt.Sprintf(
		"FOR v, e, p IN %d..%d OUTBOUND @from_id %s OPTIONS { uniqueVertices: 'path' } FILTER v._id == @to_id %s RETURN { vertices: p.vertices, edges: p.edges }",
		minDepth, maxDepth, edgeColls, limitClause,
	)

	result, err := e.tx.exec(ctx, query, map[string]interface{}{
		"from_id": from.String(),
		"to_id":   to.String(),
	})
	if err != nil {
		return nil, err
	}

	paths := make([]adapter.Path, 0, len(result))
	for _, item := range asObjectSlice(result) {
		p, err := parsePathFromDocument(item)
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
	dirStr := arangoDirection(opts.Direction)
	edgeColls := edgeCollectionsClause(opts.EdgeLabels)
	limitClause := ""
	if maxVertices > 0 {
		limitClause = fmt.Sprintf("LIMIT %d", maxVertices)
	}

	query := fmt.Sprintf("FOR v, e IN 1..%d %s @center_id %s %s RETURN { vertex: v, edge: e }", depth, dirStr, edgeColls, limitClause)
	result, err := e.tx.exec(ctx, query, map[string]interface{}{"center_id": center.String()})
	if err != nil {
		return adapter.Subgraph{}, err
	}

	seenV := map[string]adapter.Vertex{}
	seenE := map[string]adapter.Edge{}
	for _, item := range asObjectSlice(result) {
		if vDoc, ok := item["vertex"].(map[string]interface{}); ok {
			v, err := parseVertexFromDocument(vDoc, collectionOf(vDoc))
			if err != nil {
				return adapter.Subgraph{}, err
			}
			seenV[v.ID.String()] = v
		}
		if eDoc, ok := item["edge"].(map[string]interface{}); ok {
			ed, err := parseEdgeFromDocument(eDoc, collectionOf(eDoc))
			if err != nil {
				return adapter.Subgraph{}, err
			}
			seenE[ed.ID.String()] = ed
		}
	}

	sub := adapter.Subgraph{}
	for _, v := range seenV {
		sub.Vertices = append(sub.Vertices, v)
	}
	for _, ed := range seenE {
		sub.Edges = append(sub.Edges, ed)
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
	dirStr := arangoDirection(direction)
	edgeColls := edgeCollectionsClause(edgeLabels)

	query := fmt.Sprintf("FOR v IN %d..%d %s @start %s RETURN v", distance, distance, dirStr, edgeColls)
	result, err := e.tx.exec(ctx, query, map[string]interface{}{"start": src.String()})
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

// parsePathFromDocument builds a Path from an AQL traversal's { vertices,
// edges } projection, where vertices[0] is the path's start and
// vertices[i+1] is the vertex edges[i] leads to.
func parsePathFromDocument(item map[string]interface{}) (adapter.Path, error) {
	vertexDocs := asObjectSlice(toInterfaceSlice(item["vertices"]))
	edgeDocs := asObjectSlice(toInterfaceSlice(item["edges"]))

	if len(vertexDocs) == 0 {
		return adapter.Path{}, nil
	}

	start, err := parseVertexFromDocument(vertexDocs[0], collectionOf(vertexDocs[0]))
	if err != nil {
		return adapter.Path{}, err
	}

	path := adapter.Path{Start: start}
	for i, eDoc := range edgeDocs {
		edge, err := parseEdgeFromDocument(eDoc, collectionOf(eDoc))
		if err != nil {
			return adapter.Path{}, err
		}
		var vertex adapter.Vertex
		if i+1 < len(vertexDocs) {
			vertex, err = parseVertexFromDocument(vertexDocs[i+1], collectionOf(vertexDocs[i+1]))
			if err != nil {
				return adapter.Path{}, err
			}
		}
		path.Steps = append(path.Steps, adapter.PathStep{Edge: edge, Vertex: vertex})
	}
	return path, nil
}

func toInterfaceSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
