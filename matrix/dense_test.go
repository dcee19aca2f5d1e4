// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/netfuse/matrix"
)

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(2, -1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDenseFrom_CopiesAndValidates(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	m, err := matrix.NewDenseFrom(2, 2, src)
	require.NoError(t, err)
	src[0] = 99
	assert.Equal(t, 1.0, mustAt(t, m, 0, 0), "source slice must be copied")

	_, err = matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDenseFrom(1, 2, []float64{1, math.NaN()})
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestDense_AtSetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 7))
	assert.Equal(t, 7.0, mustAt(t, m, 1, 2))

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 3, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)
}

func TestDense_CloneIndependent(t *testing.T) {
	m := mustDense(t, 1, 2, []float64{1, 2})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 5))
	assert.Equal(t, 1.0, mustAt(t, m, 0, 0))
}

func TestDense_RowColInduced(t *testing.T) {
	m := mustDense(t, 3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, row)

	col, err := m.Col(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 9}, col)

	sub, err := m.Induced([]int{0, 2}, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, 2, sub.Cols())
	assert.Equal(t, 3.0, mustAt(t, sub, 0, 0))
	assert.Equal(t, 7.0, mustAt(t, sub, 1, 1))

	_, err = m.Induced(nil, []int{0})
	require.ErrorIs(t, err, matrix.ErrBadShape)
	_, err = m.Induced([]int{0}, []int{3})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestDense_DoStopsAndRejectsNaN(t *testing.T) {
	m := mustDense(t, 2, 2, []float64{1, 2, 3, 4})
	visited := 0
	require.NoError(t, m.Do(func(i, j int, v float64) (float64, bool) {
		visited++
		return v * 10, visited < 3
	}))
	assert.Equal(t, 3, visited)
	assert.Equal(t, 30.0, mustAt(t, m, 1, 0))
	assert.Equal(t, 4.0, mustAt(t, m, 1, 1))

	err := m.Do(func(i, j int, v float64) (float64, bool) { return math.NaN(), true })
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestValidateSymmetric(t *testing.T) {
	sym := mustDense(t, 2, 2, []float64{1, 2, 2, 1})
	require.NoError(t, matrix.ValidateSymmetric(sym, 0))

	asym := mustDense(t, 2, 2, []float64{1, 2, 2.5, 1})
	require.ErrorIs(t, matrix.ValidateSymmetric(asym, 0.1), matrix.ErrAsymmetry)
	require.NoError(t, matrix.ValidateSymmetric(asym, 1))

	rect := mustDense(t, 1, 2, []float64{1, 2})
	require.ErrorIs(t, matrix.ValidateSymmetric(rect, 0), matrix.ErrDimensionMismatch)
	require.ErrorIs(t, matrix.ValidateSymmetric(nil, 0), matrix.ErrNilMatrix)
}
