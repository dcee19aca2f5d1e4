// SPDX-License-Identifier: MIT

// Package matrix: the Matrix interface shared by all kernels.
package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
//
// Kernels accept any implementation, but they take a flat-slice fast path
// whenever the dynamic type is *Dense; non-Dense inputs are materialized
// once through toDense before the hot loop.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if an index is invalid.
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if an index is invalid.
	Set(i, j int, v float64) error

	// Clone returns an independent deep copy of the matrix.
	Clone() Matrix
}
