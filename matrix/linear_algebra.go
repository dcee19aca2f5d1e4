// SPDX-License-Identifier: MIT

// Package matrix - core kernels: Add, Mul, Transpose, Scale, MatVec,
// plus Jacobi eigen-decomposition and LU-based inversion.
//
// Contract:
//   - Inputs are never mutated; every kernel allocates a fresh *Dense.
//   - Non-Dense inputs are materialized once via toDense, so all hot loops
//     run over flat row-major slices.
//   - Errors are sentinels wrapped with the operation tag via matrixErrorf.

package matrix

import (
	"fmt"
	"math"
)

// Operation tags used by matrixErrorf.
const (
	opAdd       = "Add"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opMatVec    = "MatVec"
	opEigen     = "Eigen"
	opLeading   = "LeadingEigen"
	opLU        = "LU"
	opInverse   = "Inverse"
)

// ZeroPivot is the exact pivot value treated as singular by LU/Inverse.
const ZeroPivot = 0.0

// DefaultEigenTol is the off-diagonal tolerance used when Eigen receives tol ≤ 0.
const DefaultEigenTol = 1e-12

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Add returns a + b elementwise.
func Add(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	ad, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	bd, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	out := &Dense{r: ad.r, c: ad.c, data: make([]float64, len(ad.data))}
	for k := range ad.data {
		out.data[k] = ad.data[k] + bd.data[k]
	}

	return out, nil
}

// Mul computes the matrix product a×b.
//
// Implementation:
//   - Stage 1: validate a.Cols()==b.Rows().
//   - Stage 2: i-k-j loop over flat slices; zero a[i,k] terms are skipped.
//
// Complexity:
//   - Time O(r·n·c), Space O(r·c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	ad, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	bd, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	r, n, c := ad.r, ad.c, bd.c
	out := &Dense{r: r, c: c, data: make([]float64, r*c)}
	var (
		i, k, j int
		aik     float64
	)
	for i = 0; i < r; i++ {
		row := out.data[i*c : (i+1)*c]
		for k = 0; k < n; k++ {
			aik = ad.data[i*n+k]
			if aik == 0 {
				continue
			}
			bRow := bd.data[k*c : (k+1)*c]
			for j = 0; j < c; j++ {
				row[j] += aik * bRow[j]
			}
		}
	}

	return out, nil
}

// Transpose returns mᵀ.
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	out := &Dense{r: d.c, c: d.r, data: make([]float64, len(d.data))}
	for i := 0; i < d.r; i++ {
		for j := 0; j < d.c; j++ {
			out.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return out, nil
}

// Scale returns alpha·m. A non-finite alpha yields ErrNaNInf.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, matrixErrorf(opScale, ErrNaNInf)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	out := &Dense{r: d.r, c: d.c, data: make([]float64, len(d.data))}
	for k, v := range d.data {
		out.data[k] = alpha * v
	}

	return out, nil
}

// MatVec computes y = m·x.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, d.r)
	for i := 0; i < d.r; i++ {
		var sum float64
		row := d.data[i*d.c : (i+1)*d.c]
		for j, v := range row {
			sum += v * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// Eigen performs a classical Jacobi eigen-decomposition of a symmetric matrix.
//
// MAIN DESCRIPTION:
//   - Repeatedly annihilates the largest off-diagonal entry with a plane
//     rotation until every |A[i,j]| (i≠j) is below tol.
//
// Implementation:
//   - Stage 1: validate square & symmetric (within tol); clone into A, Q=I.
//   - Stage 2: find pivot (p,q) = argmax |A[p,q]| over the strict upper triangle;
//     stop if below tol.
//   - Stage 3: θ=(aqq-app)/(2apq), t=sign(θ)/(|θ|+√(θ²+1)), c=1/√(t²+1), s=t·c;
//     rotate rows/cols p,q of A and accumulate columns of Q.
//   - Stage 4: if the budget is exhausted with maxOff ≥ tol → ErrMatrixEigenFailed.
//
// Returns:
//   - eigenvalues (diagonal of the rotated A, unsorted) and Q with eigenvectors as columns.
//
// Inputs:
//   - tol ≤ 0 uses DefaultEigenTol; maxIter ≤ 0 uses 100·n² rotations.
//
// Complexity:
//   - Time O(maxIter·n) per rotation plus O(n²) pivot search; Space O(n²).
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return nil, nil, matrixErrorf(opEigen, ErrNaNInf)
	}
	if tol <= 0 {
		tol = DefaultEigenTol
	}
	d, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := d.r
	if err = ValidateSymmetric(d, tol*float64(n)); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	if maxIter <= 0 {
		maxIter = 100 * n * n
	}

	a := d.Clone().(*Dense).data
	q, _ := Identity(n)
	v := q.data

	var (
		p, r, i      int
		maxOff, apq  float64
		app, aqq     float64
		theta, t     float64
		c, s         float64
		akp, akq     float64
		vkp, vkq     float64
		iter         int
		pivRow, pivC int
	)
	for iter = 0; iter < maxIter; iter++ {
		// Stage 2: pivot search.
		maxOff = 0
		for p = 0; p < n; p++ {
			for r = p + 1; r < n; r++ {
				if off := math.Abs(a[p*n+r]); off > maxOff {
					maxOff, pivRow, pivC = off, p, r
				}
			}
		}
		if maxOff < tol {
			break
		}
		p, r = pivRow, pivC

		// Stage 3: rotation.
		apq = a[p*n+r]
		app = a[p*n+p]
		aqq = a[r*n+r]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1 / math.Sqrt(t*t+1)
		s = t * c

		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			akp = a[i*n+p]
			akq = a[i*n+r]
			a[i*n+p] = c*akp - s*akq
			a[p*n+i] = a[i*n+p]
			a[i*n+r] = s*akp + c*akq
			a[r*n+i] = a[i*n+r]
		}
		a[p*n+p] = app - t*apq
		a[r*n+r] = aqq + t*apq
		a[p*n+r] = 0
		a[r*n+p] = 0

		for i = 0; i < n; i++ {
			vkp = v[i*n+p]
			vkq = v[i*n+r]
			v[i*n+p] = c*vkp - s*vkq
			v[i*n+r] = s*vkp + c*vkq
		}
	}

	// Stage 4: convergence check.
	maxOff = 0
	for p = 0; p < n; p++ {
		for r = p + 1; r < n; r++ {
			if off := math.Abs(a[p*n+r]); off > maxOff {
				maxOff = off
			}
		}
	}
	if maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a[i*n+i]
	}

	return eigs, q, nil
}

// LeadingEigen returns the algebraically largest eigenvalue of a symmetric
// matrix and its unit eigenvector. Ties on the eigenvalue resolve to the
// lowest column index, keeping the result deterministic.
func LeadingEigen(m Matrix, tol float64, maxIter int) (float64, []float64, error) {
	vals, vecs, err := Eigen(m, tol, maxIter)
	if err != nil {
		return 0, nil, matrixErrorf(opLeading, err)
	}
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	vec, err := vecs.Col(best)
	if err != nil {
		return 0, nil, matrixErrorf(opLeading, err)
	}

	return vals[best], vec, nil
}

// LU performs a Doolittle decomposition without pivoting: m = L·U with unit-diagonal L.
//
// Errors:
//   - ErrDimensionMismatch for non-square input; ErrSingular on a zero pivot.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func LU(m Matrix) (*Dense, *Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := d.r
	l, _ := Identity(n)
	u, _ := NewDense(n, n)

	var (
		i, j, k int
		sum     float64
	)
	for i = 0; i < n; i++ {
		// Row i of U.
		for j = i; j < n; j++ {
			sum = 0
			for k = 0; k < i; k++ {
				sum += l.data[i*n+k] * u.data[k*n+j]
			}
			u.data[i*n+j] = d.data[i*n+j] - sum
		}
		if u.data[i*n+i] == ZeroPivot {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		// Column i of L.
		for j = i + 1; j < n; j++ {
			sum = 0
			for k = 0; k < i; k++ {
				sum += l.data[j*n+k] * u.data[k*n+i]
			}
			l.data[j*n+i] = (d.data[j*n+i] - sum) / u.data[i*n+i]
		}
	}

	return l, u, nil
}

// Inverse returns m⁻¹ by solving L·U·x = eᵢ for every basis column.
func Inverse(m Matrix) (*Dense, error) {
	l, u, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := l.r
	inv, _ := NewDense(n, n)

	var (
		col, i, k int
		sum       float64
		y         = make([]float64, n)
		x         = make([]float64, n)
	)
	for col = 0; col < n; col++ {
		// Forward substitution: L·y = e_col.
		for i = 0; i < n; i++ {
			sum = 0
			for k = 0; k < i; k++ {
				sum += l.data[i*n+k] * y[k]
			}
			if i == col {
				y[i] = 1 - sum
			} else {
				y[i] = -sum
			}
		}
		// Back substitution: U·x = y.
		for i = n - 1; i >= 0; i-- {
			sum = 0
			for k = i + 1; k < n; k++ {
				sum += u.data[i*n+k] * x[k]
			}
			x[i] = (y[i] - sum) / u.data[i*n+i]
		}
		for i = 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv, nil
}
