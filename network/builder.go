// File: builder.go
// Role: mutation surface (Builder) and the freeze step into an immutable Graph.
//
// Concurrency:
//   - Builder methods lock b.mu; Graph has no lock because it never changes.
package network

import "math"

// SetWeight records w for the unordered pair {u, v}, overwriting any previous value.
//
// Steps:
//  1. Reject u == v (ErrLoopNotAllowed) and non-finite w (ErrBadWeight).
//  2. Resolve both endpoints (ErrEntityNotFound).
//  3. Store under the canonical pair key.
//
// Complexity: O(1).
func (b *Builder) SetWeight(u, v string, w float64) error {
	if u == v {
		return ErrLoopNotAllowed
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return ErrBadWeight
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	iu, ok := b.index[u]
	if !ok {
		return ErrEntityNotFound
	}
	iv, ok := b.index[v]
	if !ok {
		return ErrEntityNotFound
	}
	b.weights[newPairKey(iu, iv)] = w

	return nil
}

// setIndexed is the index-based variant used by FromDense; indices are trusted.
func (b *Builder) setIndexed(i, j int, w float64) error {
	if i == j {
		return ErrLoopNotAllowed
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return ErrBadWeight
	}
	b.mu.Lock()
	b.weights[newPairKey(i, j)] = w
	b.mu.Unlock()

	return nil
}

// Len returns the number of pairs recorded so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.weights)
}

// Build freezes the current state into a Graph. The Builder stays usable;
// later writes do not affect graphs already built.
// Complexity: O(V+E).
func (b *Builder) Build() *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	ents := make([]string, len(b.entities))
	copy(ents, b.entities)
	index := make(map[string]int, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	weights := make(map[pairKey]float64, len(b.weights))
	for k, v := range b.weights {
		weights[k] = v
	}

	return &Graph{entities: ents, index: index, weights: weights}
}
