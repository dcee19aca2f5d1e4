// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All algorithms return these sentinels (optionally wrapped with an operation
// tag via matrixErrorf); callers match them with errors.Is. No routine panics
// on user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// Every message is prefixed with "matrix: ..." so log lines are easy to grep.
//
// ERROR PRIORITY:
// nil -> shape -> dimension mismatch -> numeric (NaN/Inf) -> algorithmic.

var (
	// ErrBadShape is returned when a requested window or selection is invalid.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. Mul where a.Cols != b.Rows, or too few observations for a statistic.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric is not,
	// within the tolerance supplied by the caller.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrMatrixEigenFailed indicates that the Jacobi routine did not converge
	// under the given tolerance/iterations.
	ErrMatrixEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrSingular is returned when a zero pivot is met during LU/Inverse.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")
)
