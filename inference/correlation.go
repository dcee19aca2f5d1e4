package inference

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// correlation keeps the correlation of every pair whose two-sided p-value
// survives the configured multiple-testing correction.
type correlation struct {
	name     string
	spearman bool
	settings Settings
}

func newCorrelation(name string, spearman bool, s Settings) *correlation {
	return &correlation{name: name, spearman: spearman, settings: s}
}

func (c *correlation) Name() string { return c.name }

// Infer computes ρ, the p-value of every upper-triangle pair
// (t = ρ²·dof/(1-ρ²), p = I_{dof/(dof+t)}(dof/2, 1/2), dof = n-2) and keeps
// the significant pairs with their signed ρ.
func (c *correlation) Infer(m *dataset.Matrix) (*network.Graph, error) {
	if err := c.settings.Validate(); err != nil {
		return nil, err
	}
	n := m.NumSamples()
	if n < 3 {
		return nil, fmt.Errorf("%s needs at least 3 samples, got %d: %w", c.name, n, ErrTooFewSamples)
	}
	rho, err := correlationMatrix(m, c.spearman)
	if err != nil {
		return nil, err
	}

	k := m.NumEntities()
	dof := float64(n - 2)
	pvals := make([]float64, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r, _ := rho.At(i, j)
			pvals = append(pvals, correlationPValue(r, dof))
		}
	}
	keep, err := Significant(c.settings.Correction, pvals, c.settings.Alpha)
	if err != nil {
		return nil, err
	}

	return network.FromDense(m.Entities(), rho, func(i, j int, w float64) bool {
		return w != 0 && keep[upperIndex(i, j, k)]
	})
}

// upperIndex is the row-major position of (i, j), i < j, in the strict upper triangle of a k×k matrix.
func upperIndex(i, j, k int) int {
	return i*k - i*(i+1)/2 + (j - i - 1)
}

// correlationPValue is the two-sided p-value of Pearson's r under H0: ρ = 0.
func correlationPValue(r, dof float64) float64 {
	r2 := r * r
	t := r2 * dof / (1 - r2 + epsilon)
	x := dof / (dof + t)
	if x >= 1 {
		return 1
	}
	if x <= 0 {
		return 0
	}

	return mathext.RegIncBeta(0.5*dof, 0.5, x)
}

const epsilon = 2.220446049250313e-16

// correlationMatrix returns the Pearson matrix of m's columns, or the
// Spearman matrix when ranked is set.
func correlationMatrix(m *dataset.Matrix, ranked bool) (*matrix.Dense, error) {
	data := m.Dense()
	if ranked {
		var err error
		if data, err = rankColumns(data); err != nil {
			return nil, err
		}
	}
	rho, _, _, err := matrix.Correlation(data)
	if err != nil {
		return nil, fmt.Errorf("correlation: %w", err)
	}

	return rho, nil
}

// rankColumns replaces each column by its ranks (1-based, ties averaged).
func rankColumns(d *matrix.Dense) (*matrix.Dense, error) {
	r, c := d.Shape()
	out, err := matrix.NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for j := 0; j < c; j++ {
		col, err := d.Col(j)
		if err != nil {
			return nil, err
		}
		for i, v := range averageRanks(col) {
			if err = out.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// averageRanks returns 1-based ranks with tied values sharing their mean rank.
func averageRanks(x []float64) []float64 {
	n := len(x)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start + 1
		for end < n && x[order[end]] == x[order[start]] {
			end++
		}
		avg := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = avg
		}
		start = end
	}

	return ranks
}

// clampUnit keeps ρ inside [-1, 1].
func clampUnit(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}
