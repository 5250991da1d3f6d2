package adapter

// Vertex is a labeled node with an identifier and a property bag, the
// common shape produced by every graph backend's vertex read.
type Vertex struct {
	ID         ElementID
	Label      string
	Properties *PropertyMap
}

// Edge connects two vertices with a label and a property bag. Direction is
// always From -> To; undirected traversal is expressed by querying both
// directions at the traversal layer, not by this type.
type Edge struct {
	ID         ElementID
	Label      string
	From       ElementID
	To         ElementID
	Properties *PropertyMap
}

// PathStep is one hop of a Path: the edge traversed and the vertex landed
// on. A Path's first vertex is carried separately on Path.Start.
type PathStep struct {
	Edge   Edge
	Vertex Vertex
}

// Path is an ordered walk through the graph starting at Start and
// following Steps in order.
type Path struct {
	Start Vertex
	Steps []PathStep
}

// Length returns the number of edges in the path.
func (p Path) Length() int { return len(p.Steps) }

// End returns the final vertex of the path, or Start if the path has no
// steps.
func (p Path) End() Vertex {
	if len(p.Steps) == 0 {
		return p.Start
	}
	return p.Steps[len(p.Steps)-1].Vertex
}

// Subgraph is an unordered collection of vertices and edges, the result
// shape of a neighborhood or pattern-match query that doesn't preserve a
// single walk order.
type Subgraph struct {
	Vertices []Vertex
	Edges    []Edge
}

// Direction constrains which end of an edge a traversal step may match.
type Direction string

const (
	DirectionOut  Direction = "out"
	DirectionIn   Direction = "in"
	DirectionBoth Direction = "both"
)

// TraversalOptions parameterizes a neighborhood traversal: how many hops,
// which direction, and which edge labels qualify.
type TraversalOptions struct {
	MinDepth   int
	MaxDepth   int
	Direction  Direction
	EdgeLabels []string
	Limit      int
}

// DefaultTraversalOptions returns a single-hop, both-directions, unlimited
// traversal — the widest default a caller can narrow from.
func DefaultTraversalOptions() TraversalOptions {
	return TraversalOptions{
		MinDepth:  1,
		MaxDepth:  1,
		Direction: DirectionBoth,
	}
}

// IndexKind names the kind of schema index a backend can create.
type IndexKind string

const (
	IndexHash       IndexKind = "hash"
	IndexSkiplist   IndexKind = "skiplist"
	IndexFulltext   IndexKind = "fulltext"
	IndexGeo        IndexKind = "geo"
	IndexUnique     IndexKind = "unique"
	IndexComposite  IndexKind = "composite"
)

// IndexSpec describes an index to create on a vertex or edge collection.
type IndexSpec struct {
	Kind   IndexKind
	Fields []string
	Name   string
}
