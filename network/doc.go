// Package network provides the undirected, weighted interaction graph shared
// by inference methods, consensus combiners and the edge-list layer.
//
// A Graph G = (V, w) is an ordered entity set V plus a partial mapping w from
// unordered entity pairs to float64 weights:
//
//   - Undirected: Weight(a,b) == Weight(b,a); lookups are order independent.
//   - No self loops: SetWeight(v, v, ...) → ErrLoopNotAllowed.
//   - Finite weights only: NaN/±Inf → ErrBadWeight.
//   - Immutable once built: a Graph is produced by Builder.Build and never
//     changes afterwards, so it is safe for concurrent readers.
//
// Building:
//
//	b, err := network.NewBuilder([]string{"TP53", "MDM2", "CDKN1A"})
//	_ = b.SetWeight("MDM2", "TP53", 0.8) // stored under the canonical pair
//	g := b.Build()
//
// Canonical pair order:
//
//	A pair is stored as (i, j) with i < j in the Graph's entity order; Edges()
//	enumerates pairs in ascending (i, j) order. Together with the fixed entity
//	order this makes every enumeration reproducible.
//
// Core Methods:
//
//	Entities() []string                       // O(V), copy in graph order
//	Weight(a, b string) (float64, bool)       // O(1)
//	Edges() []Edge                            // O(E·log E), canonical order
//	Restrict(entities []string) (*Graph, error) // O(E)
//	Dense() *matrix.Dense                     // O(V²), zeros for unscored pairs
//	Equal(other *Graph, tol float64) bool     // set semantics, order free
//
// Errors:
//
//	ErrEmptyEntity      – zero-length entity name
//	ErrDuplicateEntity  – the same entity listed twice
//	ErrEntityNotFound   – pair endpoint outside the entity set
//	ErrLoopNotAllowed   – self loop
//	ErrBadWeight        – NaN or ±Inf weight
package network
