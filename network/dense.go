// File: dense.go
// Role: conversions between Graph and matrix.Dense adjacency.
package network

import (
	"fmt"

	"github.com/katalvlaran/netfuse/matrix"
)

// Dense returns the symmetric |V|×|V| weight matrix in entity order.
// Unscored pairs and the diagonal are 0. An empty graph yields nil.
func (g *Graph) Dense() *matrix.Dense {
	n := len(g.entities)
	if n == 0 {
		return nil
	}
	m, _ := matrix.NewDense(n, n)
	for k, w := range g.weights {
		_ = m.Set(k.i, k.j, w)
		_ = m.Set(k.j, k.i, w)
	}

	return m
}

// KeepFunc decides whether FromDense stores the pair (i, j), i < j.
type KeepFunc func(i, j int, w float64) bool

// KeepNonZero keeps every pair whose weight is not exactly zero.
func KeepNonZero(_, _ int, w float64) bool { return w != 0 }

// KeepAll keeps every off-diagonal pair.
func KeepAll(_, _ int, _ float64) bool { return true }

// FromDense builds a Graph from the upper triangle of a square matrix.
// keep == nil behaves like KeepAll.
//
// Errors: ErrDuplicateEntity/ErrEmptyEntity for bad names, a wrapped
// matrix.ErrDimensionMismatch when m does not match len(entities).
func FromDense(entities []string, m matrix.Matrix, keep KeepFunc) (*Graph, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return nil, fmt.Errorf("FromDense: %w", err)
	}
	if m.Rows() != len(entities) {
		return nil, fmt.Errorf("FromDense: %d entities for %d rows: %w", len(entities), m.Rows(), matrix.ErrDimensionMismatch)
	}
	if keep == nil {
		keep = KeepAll
	}
	b, err := NewBuilder(entities)
	if err != nil {
		return nil, err
	}
	n := len(entities)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w, err := m.At(i, j)
			if err != nil {
				return nil, fmt.Errorf("FromDense: %w", err)
			}
			if !keep(i, j, w) {
				continue
			}
			if err = b.setIndexed(i, j, w); err != nil {
				return nil, err
			}
		}
	}

	return b.Build(), nil
}
