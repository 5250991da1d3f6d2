// Package graph defines the uniform transaction contract implemented by
// every backend translation layer (pkg/graph/arangodb, pkg/graph/neo4j,
// pkg/graph/janusgraph). Callers program against Transaction, never a
// concrete backend type.
package graph

import (
	"context"
	"sync"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// VertexSpec describes a vertex to create: its label plus the properties
// to store on it.
type VertexSpec struct {
	Label             string
	AdditionalLabels  []string
	Properties        *adapter.PropertyMap
}

// EdgeSpec describes an edge to create between two known vertices.
type EdgeSpec struct {
	Label      string
	From       adapter.ElementID
	To         adapter.ElementID
	Properties *adapter.PropertyMap
}

// FindOptions constrains a find_vertices / find_edges query.
type FindOptions struct {
	Label   string
	Filters []Filter
	Sort    []Sort
	Limit   int
	Offset  int
}

// DefaultFindOptions matches spec's stated defaults: limit 100, offset 0.
func DefaultFindOptions() FindOptions {
	return FindOptions{Limit: 100, Offset: 0}
}

// Filter is one field comparison a backend ANDs into its WHERE/FILTER
// clause; Operator names one of querysyntax's dialect-independent
// comparisons ("eq", "ne", "contains", "starts_with", "ends_with", "regex").
type Filter struct {
	Field    string
	Operator string
	Value    adapter.PropertyValue
}

// Sort is one ORDER BY / SORT term.
type Sort struct {
	Field      string
	Descending bool
}

// Transaction is the capability set every backend implements in full:
// CRUD over vertices and edges, batch variants, upsert, traversal, and
// schema management. Callers program to this interface, not a concrete
// backend type (spec §9 "Polymorphism").
//
// A Transaction is owned by exactly one caller; its Active/Committed/
// RolledBack state is guarded internally so IsActive is always
// consistent with a completed Commit/Rollback, but the transaction
// itself must not be shared across concurrent callers.
type Transaction interface {
	CreateVertex(ctx context.Context, spec VertexSpec) (adapter.Vertex, error)
	GetVertex(ctx context.Context, id adapter.ElementID) (*adapter.Vertex, error)
	UpdateVertex(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error)
	UpdateVertexProperties(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Vertex, error)
	DeleteVertex(ctx context.Context, id adapter.ElementID, deleteEdges bool) error
	FindVertices(ctx context.Context, opts FindOptions) ([]adapter.Vertex, error)

	CreateEdge(ctx context.Context, spec EdgeSpec) (adapter.Edge, error)
	GetEdge(ctx context.Context, id adapter.ElementID) (*adapter.Edge, error)
	UpdateEdge(ctx context.Context, id adapter.ElementID, props *adapter.PropertyMap) (adapter.Edge, error)
	DeleteEdge(ctx context.Context, id adapter.ElementID) error
	FindEdges(ctx context.Context, opts FindOptions) ([]adapter.Edge, error)

	CreateVertices(ctx context.Context, specs []VertexSpec) ([]adapter.Vertex, error)
	CreateEdges(ctx context.Context, specs []EdgeSpec) ([]adapter.Edge, error)

	UpsertVertex(ctx context.Context, label string, matchProps, setProps *adapter.PropertyMap) (adapter.Vertex, error)

	GetAdjacentVertices(ctx context.Context, id adapter.ElementID, direction adapter.Direction, edgeLabels []string) ([]adapter.Vertex, error)

	Schema() SchemaManager
	Traversal() TraversalEngine

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	IsActive() bool
}

// SchemaManager is the per-backend label/index/constraint CRUD surface
// (spec §4.6, Schema Manager row in §2).
type SchemaManager interface {
	CreateIndex(ctx context.Context, collection string, spec adapter.IndexSpec) error
	DropIndex(ctx context.Context, collection, name string) error
	ListIndexes(ctx context.Context, collection string) ([]adapter.IndexSpec, error)
	CreateLabel(ctx context.Context, label string) error
}

// TraversalEngine is the shortest-path / all-paths / neighborhood /
// distance query surface (spec §4.6.4).
type TraversalEngine interface {
	FindShortestPath(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (*adapter.Path, error)
	FindAllPaths(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions, limit int) ([]adapter.Path, error)
	GetNeighborhood(ctx context.Context, center adapter.ElementID, opts adapter.TraversalOptions, maxVertices int) (adapter.Subgraph, error)
	PathExists(ctx context.Context, from, to adapter.ElementID, opts adapter.TraversalOptions) (bool, error)
	GetVerticesAtDistance(ctx context.Context, src adapter.ElementID, distance int, direction adapter.Direction, edgeLabels []string) ([]adapter.Vertex, error)
}

// TxState is the local transaction lifecycle, enforced even on
// sessionless backends (JanusGraph, stateless Neo4j) that treat
// commit/rollback as protocol no-ops.
type TxState string

const (
	TxActive     TxState = "active"
	TxCommitted  TxState = "committed"
	TxRolledBack TxState = "rolled_back"
)

// TxStateMachine guards a transaction's lifecycle flag with a read/write
// lock, the only lock the concurrency model allows (spec §5 "Locking
// discipline. Only the transaction state flag is locked").
type TxStateMachine struct {
	mu    sync.RWMutex
	state TxState
}

// NewTxStateMachine returns a state machine starting in TxActive.
func NewTxStateMachine() *TxStateMachine {
	return &TxStateMachine{state: TxActive}
}

// IsActive reports whether the transaction is still open.
func (m *TxStateMachine) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == TxActive
}

// State returns the current lifecycle state.
func (m *TxStateMachine) State() TxState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Commit transitions Active -> Committed. Returns false if the
// transaction was already terminal.
func (m *TxStateMachine) Commit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != TxActive {
		return false
	}
	m.state = TxCommitted
	return true
}

// Rollback transitions Active -> RolledBack. Returns false if the
// transaction was already terminal.
func (m *TxStateMachine) Rollback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != TxActive {
		return false
	}
	m.state = TxRolledBack
	return true
}
