// File: graph.go
// Role: read-only queries over an immutable Graph.
//
// Determinism:
//   - Entities() returns the construction order.
//   - Edges() returns pairs in canonical (i, j) ascending order.
package network

import (
	"math"
	"sort"
)

// Entities returns a copy of the entity names in graph order.
func (g *Graph) Entities() []string {
	out := make([]string, len(g.entities))
	copy(out, g.entities)

	return out
}

// NumEntities returns |V|.
func (g *Graph) NumEntities() int { return len(g.entities) }

// EdgeCount returns the number of scored pairs.
func (g *Graph) EdgeCount() int { return len(g.weights) }

// HasEntity reports whether name belongs to the entity set.
func (g *Graph) HasEntity(name string) bool {
	_, ok := g.index[name]

	return ok
}

// IndexOf returns the position of name in the entity order.
func (g *Graph) IndexOf(name string) (int, bool) {
	i, ok := g.index[name]

	return i, ok
}

// Weight returns the weight of {a, b} and whether the pair is scored.
// Lookup is order independent; self pairs and unknown names report false.
func (g *Graph) Weight(a, b string) (float64, bool) {
	ia, ok := g.index[a]
	if !ok {
		return 0, false
	}
	ib, ok := g.index[b]
	if !ok || ia == ib {
		return 0, false
	}
	w, ok := g.weights[newPairKey(ia, ib)]

	return w, ok
}

// HasEdge reports whether {a, b} is scored.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.Weight(a, b)

	return ok
}

// Edges returns every scored pair in canonical order.
// Complexity: O(E·log E).
func (g *Graph) Edges() []Edge {
	keys := g.sortedKeys()
	out := make([]Edge, len(keys))
	for n, k := range keys {
		out[n] = Edge{A: g.entities[k.i], B: g.entities[k.j], Weight: g.weights[k]}
	}

	return out
}

func (g *Graph) sortedKeys() []pairKey {
	keys := make([]pairKey, 0, len(g.weights))
	for k := range g.weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(x, y int) bool {
		if keys[x].i != keys[y].i {
			return keys[x].i < keys[y].i
		}

		return keys[x].j < keys[y].j
	})

	return keys
}

// Restrict returns the subgraph induced by entities, in the given order.
// Every name must belong to g.
//
// Errors: ErrEntityNotFound, ErrDuplicateEntity, ErrEmptyEntity.
// Complexity: O(V' + E).
func (g *Graph) Restrict(entities []string) (*Graph, error) {
	for _, e := range entities {
		if !g.HasEntity(e) {
			return nil, ErrEntityNotFound
		}
	}
	b, err := NewBuilder(entities)
	if err != nil {
		return nil, err
	}
	for k, w := range g.weights {
		ni, okI := b.index[g.entities[k.i]]
		nj, okJ := b.index[g.entities[k.j]]
		if okI && okJ {
			b.weights[newPairKey(ni, nj)] = w
		}
	}

	return b.Build(), nil
}

// Extend returns g over a larger entity set, in the given order. Every entity
// of g must appear in entities; the added ones carry no scored pairs.
//
// Errors: ErrEntityNotFound, ErrDuplicateEntity, ErrEmptyEntity.
// Complexity: O(V' + E).
func (g *Graph) Extend(entities []string) (*Graph, error) {
	b, err := NewBuilder(entities)
	if err != nil {
		return nil, err
	}
	for _, e := range g.entities {
		if _, ok := b.index[e]; !ok {
			return nil, ErrEntityNotFound
		}
	}
	for k, w := range g.weights {
		b.weights[newPairKey(b.index[g.entities[k.i]], b.index[g.entities[k.j]])] = w
	}

	return b.Build(), nil
}

// Equal reports whether g and other have the same entity set and the same
// scored pairs with weights within tol. Entity order is ignored.
func (g *Graph) Equal(other *Graph, tol float64) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.entities) != len(other.entities) || len(g.weights) != len(other.weights) {
		return false
	}
	for _, e := range g.entities {
		if !other.HasEntity(e) {
			return false
		}
	}
	for k, w := range g.weights {
		ow, ok := other.Weight(g.entities[k.i], g.entities[k.j])
		if !ok || math.Abs(ow-w) > tol {
			return false
		}
	}

	return true
}
