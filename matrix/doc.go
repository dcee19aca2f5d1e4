// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra kernels used by the
// inference and consensus layers.
//
// The package offers:
//
//   - Dense: a row-major float64 matrix with safe At/Set accessors, deep
//     Clone and copy-based column/row selection (Induced).
//   - Kernels: Mul, Transpose, Scale, MatVec.
//   - Spectral/factorization: Eigen (cyclic Jacobi on symmetric input),
//     LeadingEigen, LU (Doolittle, no pivoting) and Inverse.
//   - Statistics: CenterColumns, ColumnStats, Standardize, Covariance and
//     Correlation over the columns of an observation matrix.
//   - Sanitizing: ReplaceInfNaN, AllClose.
//
// Determinism:
//
//	Every loop runs in a fixed i→j order and no routine consults maps or
//	randomness, so identical inputs always yield bit-identical outputs.
//	The consensus combiners rely on this property.
//
// Errors:
//
//	All routines return the sentinels declared in errors.go, wrapped with
//	an operation tag ("Eigen: matrix: ..."). Match them with errors.Is.
package matrix
