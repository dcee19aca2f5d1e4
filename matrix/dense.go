// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Support copy-based extraction of rows, columns and submatrices (Induced).
//
// AI-Hints:
//   - Prefer fast-paths on *Dense in hot algebra (see linear_algebra.go): operate on the flat data slice directly.
//   - Use Induced(rows, cols) to materialize a submatrix with an independent lifetime.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt      = "At"
	ctxSet     = "Set"
	ctxRow     = "Row"
	ctxCol     = "Col"
	ctxInduce  = "Induced"
	ctxFrom    = "NewDenseFrom"
	ctxDoApply = "Do"
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//
// Set always rejects NaN/±Inf: every consumer in this module (statistics,
// consensus scoring) requires finite cells.
type Dense struct {
	r, c int
	data []float64
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled buffer.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom builds an r×c matrix from a row-major slice.
// The slice is copied; later mutations of data do not leak into the matrix.
//
// Errors:
//   - ErrInvalidDimensions if rows or cols is non-positive.
//   - ErrBadShape if len(data) != rows*cols.
//   - ErrNaNInf if any value is not finite.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%s: len=%d want %d: %w", ctxFrom, len(data), rows*cols, ErrBadShape)
	}
	for k, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf(ctxFrom, k/cols, k%cols, ErrNaNInf)
		}
	}
	copy(m.data, data)

	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite v.
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer).
func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Col returns a copy of column j.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Induced materializes the submatrix formed by the given row and column
// indices, in the given order (copy; duplicates allowed).
//
// Implementation:
//   - Stage 1: validate non-empty index sets and every index against bounds.
//   - Stage 2: gather cells row by row into a fresh buffer.
//
// Errors:
//   - ErrBadShape for empty index sets; ErrOutOfRange for invalid indices.
//
// Complexity:
//   - Time O(len(rows)*len(cols)), Space the same.
func (m *Dense) Induced(rows, cols []int) (*Dense, error) {
	if len(rows) == 0 || len(cols) == 0 {
		return nil, fmt.Errorf("%s: %w", ctxInduce, ErrBadShape)
	}
	for _, i := range rows {
		if i < 0 || i >= m.r {
			return nil, denseErrorf(ctxInduce, i, 0, ErrOutOfRange)
		}
	}
	for _, j := range cols {
		if j < 0 || j >= m.c {
			return nil, denseErrorf(ctxInduce, 0, j, ErrOutOfRange)
		}
	}

	out := &Dense{r: len(rows), c: len(cols), data: make([]float64, len(rows)*len(cols))}
	for oi, i := range rows {
		src := m.data[i*m.c : (i+1)*m.c]
		dst := out.data[oi*out.c : (oi+1)*out.c]
		for oj, j := range cols {
			dst[oj] = src[j]
		}
	}

	return out, nil
}

// Do visits every cell in row-major order. Returning false stops the walk;
// a non-finite returned value aborts with ErrNaNInf.
func (m *Dense) Do(fn func(i, j int, v float64) (float64, bool)) error {
	for i := 0; i < m.r; i++ {
		base := i * m.c
		for j := 0; j < m.c; j++ {
			nv, cont := fn(i, j, m.data[base+j])
			if math.IsNaN(nv) || math.IsInf(nv, 0) {
				return denseErrorf(ctxDoApply, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
			if !cont {
				return nil
			}
		}
	}

	return nil
}

// String renders the matrix one bracketed row per line.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString("[")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}

// toDense returns m itself when it is a *Dense, otherwise a materialized copy.
func toDense(m Matrix) (*Dense, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if d, ok := m.(*Dense); ok {
		if d == nil {
			return nil, ErrNilMatrix
		}

		return d, nil
	}
	r, c := m.Rows(), m.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			out.data[i*c+j] = v
		}
	}

	return out, nil
}
