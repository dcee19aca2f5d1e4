// Package network: types, sentinels and the Builder constructor.
package network

import (
	"errors"
	"sync"
)

// Sentinel errors for graph construction and queries.
var (
	// ErrEmptyEntity indicates an entity with an empty name.
	ErrEmptyEntity = errors.New("network: entity name is empty")

	// ErrDuplicateEntity indicates the entity list contains the same name twice.
	ErrDuplicateEntity = errors.New("network: duplicate entity")

	// ErrEntityNotFound indicates a pair endpoint that is not part of the graph.
	ErrEntityNotFound = errors.New("network: entity not found")

	// ErrLoopNotAllowed indicates a self loop (a == b).
	ErrLoopNotAllowed = errors.New("network: self-loop not allowed")

	// ErrBadWeight indicates a NaN or infinite weight.
	ErrBadWeight = errors.New("network: weight must be finite")
)

// Edge is one scored unordered pair. A precedes B in the graph's entity order.
type Edge struct {
	A, B   string
	Weight float64
}

// pairKey addresses an unordered pair by entity indices with i < j.
type pairKey struct{ i, j int }

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}

	return pairKey{i: a, j: b}
}

// Graph is an immutable undirected weighted graph over an ordered entity set.
type Graph struct {
	entities []string
	index    map[string]int
	weights  map[pairKey]float64
}

// Builder accumulates weights before freezing them into a Graph.
// SetWeight is safe for concurrent use; Build may be called once per batch
// and later calls see later writes.
type Builder struct {
	mu       sync.Mutex
	entities []string
	index    map[string]int
	weights  map[pairKey]float64
}

// NewBuilder creates a Builder over the given entity order.
// An empty entity list is legal and yields an empty graph.
//
// Errors: ErrEmptyEntity, ErrDuplicateEntity.
// Complexity: O(V).
func NewBuilder(entities []string) (*Builder, error) {
	index := make(map[string]int, len(entities))
	for i, e := range entities {
		if e == "" {
			return nil, ErrEmptyEntity
		}
		if _, dup := index[e]; dup {
			return nil, ErrDuplicateEntity
		}
		index[e] = i
	}
	ents := make([]string, len(entities))
	copy(ents, entities)

	return &Builder{
		entities: ents,
		index:    index,
		weights:  make(map[pairKey]float64),
	}, nil
}
