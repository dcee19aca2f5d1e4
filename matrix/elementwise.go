// SPDX-License-Identifier: MIT

// Package matrix - elementwise helpers: column broadcasts, sanitizing and
// approximate comparison.

package matrix

import (
	"fmt"
	"math"
)

const (
	opBroadcastSubCols = "BroadcastSubCols"
	opScaleCols        = "ScaleCols"
	opReplaceInfNaN    = "ReplaceInfNaN"
	opAllClose         = "AllClose"
)

// ewBroadcastSubCols returns X - 1·colsᵀ, i.e. cols[j] subtracted from every cell of column j.
func ewBroadcastSubCols(X Matrix, cols []float64) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}
	if err := ValidateVecLen(cols, X.Cols()); err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}
	d, err := toDense(X)
	if err != nil {
		return nil, matrixErrorf(opBroadcastSubCols, err)
	}
	out := &Dense{r: d.r, c: d.c, data: make([]float64, len(d.data))}
	for i := 0; i < d.r; i++ {
		base := i * d.c
		for j := 0; j < d.c; j++ {
			out.data[base+j] = d.data[base+j] - cols[j]
		}
	}

	return out, nil
}

// ewScaleColsInPlace multiplies column j of d by scale[j].
func ewScaleColsInPlace(d *Dense, scale []float64) error {
	if d == nil {
		return matrixErrorf(opScaleCols, ErrNilMatrix)
	}
	if err := ValidateVecLen(scale, d.c); err != nil {
		return matrixErrorf(opScaleCols, err)
	}
	for i := 0; i < d.r; i++ {
		base := i * d.c
		for j := 0; j < d.c; j++ {
			d.data[base+j] *= scale[j]
		}
	}

	return nil
}

// ReplaceInfNaN returns a copy of values with every NaN/±Inf replaced by fill.
// It works on raw slices because matrices themselves never hold non-finite cells.
func ReplaceInfNaN(values []float64, fill float64) ([]float64, int, error) {
	if math.IsNaN(fill) || math.IsInf(fill, 0) {
		return nil, 0, matrixErrorf(opReplaceInfNaN, ErrNaNInf)
	}
	out := make([]float64, len(values))
	replaced := 0
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = fill
			replaced++
			continue
		}
		out[k] = v
	}

	return out, replaced, nil
}

// AllClose reports whether |a-b| ≤ atol + rtol·|b| holds for every cell.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if rtol < 0 || atol < 0 {
		return false, matrixErrorf(opAllClose, fmt.Errorf("negative tolerance: %w", ErrBadShape))
	}
	ad, err := toDense(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	bd, err := toDense(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	for k := range ad.data {
		if math.Abs(ad.data[k]-bd.data[k]) > atol+rtol*math.Abs(bd.data[k]) {
			return false, nil
		}
	}

	return true, nil
}
