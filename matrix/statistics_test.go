// SPDX-License-Identifier: MIT

package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/netfuse/matrix"
)

const epsTight = 1e-12

func TestCenterColumns_FastAndFallback(t *testing.T) {
	X := mustDense(t, 2, 3, []float64{1, 2, 3, 10, 20, 30})

	Yf, meansF, err := matrix.CenterColumns(X)
	if err != nil {
		t.Fatalf("fast: %v", err)
	}
	Ys, meansS, err := matrix.CenterColumns(hide{X})
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}

	want := []float64{5.5, 11, 16.5}
	sliceClose(t, meansF, want, 0)
	sliceClose(t, meansS, want, 0)

	for j := 0; j < 3; j++ {
		sum := mustAt(t, Yf, 0, j) + mustAt(t, Yf, 1, j)
		if math.Abs(sum) > epsTight {
			t.Fatalf("col %d not centered: sum=%g", j, sum)
		}
		if mustAt(t, Yf, 0, j) != mustAt(t, Ys, 0, j) {
			t.Fatalf("fast and fallback disagree at col %d", j)
		}
	}
}

func TestStandardize_ZeroMeanUnitVariance(t *testing.T) {
	X := mustDense(t, 4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	Z, means, stds, err := matrix.Standardize(X)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	sliceClose(t, means, []float64{2.5, 5}, epsTight)
	sliceClose(t, stds, []float64{math.Sqrt(5.0 / 3.0), 0}, epsTight)

	// Column 0 is z-scored, column 1 (zero variance) passes through.
	m, s, err := matrix.ColumnStats(Z)
	if err != nil {
		t.Fatalf("ColumnStats: %v", err)
	}
	if math.Abs(m[0]) > epsTight || math.Abs(s[0]-1) > epsTight {
		t.Fatalf("column 0 not standardized: mean=%g std=%g", m[0], s[0])
	}
	for i := 0; i < 4; i++ {
		if mustAt(t, Z, i, 1) != 5 {
			t.Fatalf("zero-variance column altered at row %d", i)
		}
	}
}

func TestStandardize_Idempotent(t *testing.T) {
	X := mustDense(t, 5, 2, []float64{
		0.3, 9,
		1.7, -2,
		-4, 3.5,
		2.2, 0,
		8, 1,
	})
	Z1, _, _, err := matrix.Standardize(X)
	if err != nil {
		t.Fatal(err)
	}
	Z2, _, _, err := matrix.Standardize(Z1)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := matrix.AllClose(Z2, Z1, 0, 1e-12)
	if err != nil || !ok {
		t.Fatalf("standardizing twice changed values: ok=%v err=%v", ok, err)
	}
}

func TestCorrelation_KnownValues(t *testing.T) {
	// col1 = 2*col0 (corr 1), col2 = -col0 (corr -1), col3 constant (zero row).
	X := mustDense(t, 3, 4, []float64{
		1, 2, -1, 7,
		2, 4, -2, 7,
		3, 6, -3, 7,
	})
	C, _, _, err := matrix.Correlation(X)
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	if math.Abs(mustAt(t, C, 0, 1)-1) > epsTight {
		t.Fatalf("corr(0,1)=%g want 1", mustAt(t, C, 0, 1))
	}
	if math.Abs(mustAt(t, C, 0, 2)+1) > epsTight {
		t.Fatalf("corr(0,2)=%g want -1", mustAt(t, C, 0, 2))
	}
	if mustAt(t, C, 3, 3) != 0 || mustAt(t, C, 0, 3) != 0 {
		t.Fatalf("constant column must correlate as zero")
	}
	if err = matrix.ValidateSymmetric(C, 0); err != nil {
		t.Fatalf("correlation not exactly symmetric: %v", err)
	}
}

func TestCovarianceCorrelation_NeedTwoRows(t *testing.T) {
	X := mustDense(t, 1, 2, []float64{1, 2})
	if _, _, err := matrix.Covariance(X); !errors.Is(err, matrix.ErrDimensionMismatch) {
		t.Fatalf("Covariance: want ErrDimensionMismatch, got %v", err)
	}
	if _, _, _, err := matrix.Correlation(X); !errors.Is(err, matrix.ErrDimensionMismatch) {
		t.Fatalf("Correlation: want ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalizeRowsL1(t *testing.T) {
	X := mustDense(t, 2, 2, []float64{1, -3, 0, 0})
	Y, norms, err := matrix.NormalizeRowsL1(X)
	if err != nil {
		t.Fatal(err)
	}
	sliceClose(t, norms, []float64{4, 0}, 0)
	if mustAt(t, Y, 0, 1) != -0.75 || mustAt(t, Y, 1, 0) != 0 {
		t.Fatalf("unexpected normalization:\n%v", Y)
	}
}

func TestReplaceInfNaN(t *testing.T) {
	out, n, err := matrix.ReplaceInfNaN([]float64{1, math.NaN(), math.Inf(-1)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("replaced=%d want 2", n)
	}
	sliceClose(t, out, []float64{1, 0, 0}, 0)
	if _, _, err = matrix.ReplaceInfNaN(nil, math.NaN()); !errors.Is(err, matrix.ErrNaNInf) {
		t.Fatalf("want ErrNaNInf for NaN fill, got %v", err)
	}
}
