// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/netfuse/matrix"
)

func TestMul_FastAndFallbackAgree(t *testing.T) {
	a := mustDense(t, 2, 3, []float64{1, 2, 0, 0, 1, 4})
	b := mustDense(t, 3, 2, []float64{1, 0, 2, 1, 3, 5})

	fast, err := matrix.Mul(a, b)
	require.NoError(t, err)
	slow, err := matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)

	want := mustDense(t, 2, 2, []float64{5, 2, 14, 21})
	ok, err := matrix.AllClose(fast, want, 0, 0)
	require.NoError(t, err)
	assert.True(t, ok, "fast path:\n%v", fast)
	ok, err = matrix.AllClose(slow, want, 0, 0)
	require.NoError(t, err)
	assert.True(t, ok, "fallback path:\n%v", slow)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestTransposeScaleAddMatVec(t *testing.T) {
	a := mustDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	assert.Equal(t, 3, at.Rows())
	assert.Equal(t, 6.0, mustAt(t, at, 2, 1))

	s, err := matrix.Scale(a, 2)
	require.NoError(t, err)
	assert.Equal(t, 12.0, mustAt(t, s, 1, 2))
	_, err = matrix.Scale(a, math.NaN())
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	sum, err := matrix.Add(a, s)
	require.NoError(t, err)
	assert.Equal(t, 3.0, mustAt(t, sum, 0, 0))

	y, err := matrix.MatVec(a, []float64{1, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -2}, y)
	_, err = matrix.MatVec(a, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestEigen_ReconstructsSymmetric(t *testing.T) {
	a := mustDense(t, 3, 3, []float64{
		4, 1, 2,
		1, 3, 0,
		2, 0, 5,
	})
	vals, vecs, err := matrix.Eigen(a, 1e-12, 0)
	require.NoError(t, err)

	// A·v_k = λ_k·v_k for every column k.
	for k := 0; k < 3; k++ {
		v, err := vecs.Col(k)
		require.NoError(t, err)
		av, err := matrix.MatVec(a, v)
		require.NoError(t, err)
		for i := range v {
			assert.InDelta(t, vals[k]*v[i], av[i], 1e-9)
		}
	}

	// Trace is preserved.
	assert.InDelta(t, 12.0, vals[0]+vals[1]+vals[2], 1e-9)
}

func TestEigen_RejectsAsymmetric(t *testing.T) {
	a := mustDense(t, 2, 2, []float64{1, 2, 0, 1})
	_, _, err := matrix.Eigen(a, 1e-9, 0)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
}

func TestLeadingEigen_RankOne(t *testing.T) {
	// u·uᵀ with u = (1,2,2): λ = 9, v = u/3.
	a := mustDense(t, 3, 3, []float64{
		1, 2, 2,
		2, 4, 4,
		2, 4, 4,
	})
	lambda, v, err := matrix.LeadingEigen(a, 1e-12, 0)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, lambda, 1e-9)

	sign := 1.0
	if v[0] < 0 {
		sign = -1
	}
	sliceClose(t, []float64{sign * v[0], sign * v[1], sign * v[2]}, []float64{1.0 / 3, 2.0 / 3, 2.0 / 3}, 1e-9)
}

func TestInverse_IdentityProduct(t *testing.T) {
	a := mustDense(t, 3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	inv, err := matrix.Inverse(a)
	require.NoError(t, err)
	prod, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	ok, err := matrix.AllClose(prod, id, 0, 1e-12)
	require.NoError(t, err)
	assert.True(t, ok, "A·A⁻¹ should be I:\n%v", prod)
}

func TestInverse_Singular(t *testing.T) {
	a := mustDense(t, 2, 2, []float64{1, 2, 2, 4})
	_, err := matrix.Inverse(a)
	require.ErrorIs(t, err, matrix.ErrSingular)
}
