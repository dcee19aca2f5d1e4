// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/netfuse/matrix"
)

// hide wraps any Matrix to hide its concrete type, forcing the
// materialization path inside the kernels.
type hide struct{ matrix.Matrix }

// mustDense builds an r×c *Dense from row-major data or fails the test.
func mustDense(t *testing.T, r, c int, data []float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, data)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return m
}

// mustAt reads (i,j) or fails the test.
func mustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// sliceClose asserts |got[i]-want[i]| ≤ tol for every i.
func sliceClose(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len mismatch: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("index %d: got %g want %g (tol %g)", i, got[i], want[i], tol)
		}
	}
}
