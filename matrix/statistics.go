// SPDX-License-Identifier: MIT

// Package matrix - column statistics over observation matrices.
//
// Convention: rows are observations (samples), columns are variables
// (entities). Standard deviations use the sample (n-1) denominator.
//
// Zero-variance policy:
//   - Standardize leaves a zero-variance column untouched.
//   - Correlation maps a zero-variance column to a zero row/column, diagonal included.

package matrix

import "math"

const (
	opColumnStats     = "ColumnStats"
	opCenterColumns   = "CenterColumns"
	opStandardize     = "Standardize"
	opNormalizeRowsL1 = "NormalizeRowsL1"
	opCovariance      = "Covariance"
	opCorrelation     = "Correlation"
)

// ColumnStats returns per-column means and sample standard deviations.
// With a single row the deviations are all zero.
func ColumnStats(X Matrix) (means, stds []float64, err error) {
	d, err := toDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opColumnStats, err)
	}
	r, c := d.r, d.c
	means = make([]float64, c)
	stds = make([]float64, c)

	var i, j int
	for i = 0; i < r; i++ {
		base := i * c
		for j = 0; j < c; j++ {
			means[j] += d.data[base+j]
		}
	}
	invR := 1.0 / float64(r)
	for j = 0; j < c; j++ {
		means[j] *= invR
	}
	if r < 2 {
		return means, stds, nil
	}

	var dv float64
	for i = 0; i < r; i++ {
		base := i * c
		for j = 0; j < c; j++ {
			dv = d.data[base+j] - means[j]
			stds[j] += dv * dv
		}
	}
	for j = 0; j < c; j++ {
		stds[j] = math.Sqrt(stds[j] / float64(r-1))
	}

	return means, stds, nil
}

// CenterColumns subtracts each column mean; returns the centered copy and the means.
func CenterColumns(X Matrix) (*Dense, []float64, error) {
	means, _, err := ColumnStats(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}
	Xc, err := ewBroadcastSubCols(X, means)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}

	return Xc, means, nil
}

// Standardize z-scores every column: (x-mean)/std with the sample std.
//
// Implementation:
//   - Stage 1: ColumnStats.
//   - Stage 2: columns with std == 0 (or fewer than two rows) get shift 0 and
//     scale 1, i.e. pass through unchanged.
//   - Stage 3: broadcast subtract and scale into a fresh matrix.
//
// Returns:
//   - the standardized copy, the column means and the column stds.
func Standardize(X Matrix) (*Dense, []float64, []float64, error) {
	means, stds, err := ColumnStats(X)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opStandardize, err)
	}
	c := len(means)
	shift := make([]float64, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		if stds[j] == 0 {
			scale[j] = 1
			continue
		}
		shift[j] = means[j]
		scale[j] = 1 / stds[j]
	}

	Xc, err := ewBroadcastSubCols(X, shift)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opStandardize, err)
	}
	if err = ewScaleColsInPlace(Xc, scale); err != nil {
		return nil, nil, nil, matrixErrorf(opStandardize, err)
	}

	return Xc, means, stds, nil
}

// NormalizeRowsL1 divides each row by the sum of its absolute values.
// All-zero rows are kept as-is. Returns the normalized copy and the row norms.
func NormalizeRowsL1(X Matrix) (*Dense, []float64, error) {
	d, err := toDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	out := d.Clone().(*Dense)
	norms := make([]float64, d.r)
	for i := 0; i < d.r; i++ {
		row := out.data[i*d.c : (i+1)*d.c]
		var s float64
		for _, v := range row {
			s += math.Abs(v)
		}
		norms[i] = s
		if s == 0 {
			continue
		}
		for j := range row {
			row[j] /= s
		}
	}

	return out, norms, nil
}

// Covariance returns the c×c sample covariance XcᵀXc/(r-1).
// Requires at least two rows (ErrDimensionMismatch otherwise).
func Covariance(X Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	if X.Rows() < 2 {
		return nil, nil, matrixErrorf(opCovariance, ErrDimensionMismatch)
	}
	Xc, means, err := CenterColumns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov, err := gram(Xc, 1/float64(Xc.r-1))
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}

	return cov, means, nil
}

// Correlation returns the c×c Pearson correlation matrix of the columns of X,
// together with the column means and sample stds.
//
// Implementation:
//   - Stage 1: ColumnStats; columns with std == 0 become all-zero z-columns.
//   - Stage 2: Corr = ZᵀZ/(r-1), computed over the upper triangle and mirrored
//     so the result is exactly symmetric.
//   - Stage 3: clamp entries into [-1, 1] to absorb rounding.
//
// Errors:
//   - ErrDimensionMismatch when X has fewer than two rows.
func Correlation(X Matrix) (*Dense, []float64, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	if X.Rows() < 2 {
		return nil, nil, nil, matrixErrorf(opCorrelation, ErrDimensionMismatch)
	}
	means, stds, err := ColumnStats(X)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	c := len(means)
	inv := make([]float64, c)
	for j := 0; j < c; j++ {
		if stds[j] > 0 {
			inv[j] = 1 / stds[j]
		}
	}
	Z, err := ewBroadcastSubCols(X, means)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	if err = ewScaleColsInPlace(Z, inv); err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	corr, err := gram(Z, 1/float64(Z.r-1))
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	for k, v := range corr.data {
		if v > 1 {
			corr.data[k] = 1
		} else if v < -1 {
			corr.data[k] = -1
		}
	}

	return corr, means, stds, nil
}

// gram computes alpha·AᵀA over the upper triangle and mirrors it.
func gram(a *Dense, alpha float64) (*Dense, error) {
	r, c := a.r, a.c
	out, err := NewDense(c, c)
	if err != nil {
		return nil, err
	}
	var (
		i, j, k int
		sum     float64
	)
	for i = 0; i < c; i++ {
		for j = i; j < c; j++ {
			sum = 0
			for k = 0; k < r; k++ {
				sum += a.data[k*c+i] * a.data[k*c+j]
			}
			out.data[i*c+j] = alpha * sum
			out.data[j*c+i] = alpha * sum
		}
	}

	return out, nil
}
