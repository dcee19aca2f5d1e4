package inference

import (
	"fmt"
	"math"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// maxRho2 caps ρ² so -0.5·ln(1-ρ²) stays finite for perfectly dependent pairs.
const maxRho2 = 1 - 1e-12

// gaussianMI estimates pairwise mutual information from Spearman correlation
// under a Gaussian copula: MI = -0.5·ln(1-ρ²). The diagonal is 0.
func gaussianMI(m *dataset.Matrix) (*matrix.Dense, error) {
	if m.NumSamples() < 2 {
		return nil, fmt.Errorf("mutual information needs at least 2 samples: %w", ErrTooFewSamples)
	}
	rho, err := correlationMatrix(m, true)
	if err != nil {
		return nil, err
	}
	k := m.NumEntities()
	mi, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r, _ := rho.At(i, j)
			r = clampUnit(r)
			v := -0.5 * math.Log(1-math.Min(r*r, maxRho2))
			_ = mi.Set(i, j, v)
			_ = mi.Set(j, i, v)
		}
	}

	return mi, nil
}

// inferCLR scores each pair by sqrt(z_i² + z_j²) where z_i is the positive
// part of the pair's MI z-score within entity i's row (diagonal excluded).
func inferCLR(m *dataset.Matrix) (*network.Graph, error) {
	mi, err := gaussianMI(m)
	if err != nil {
		return nil, err
	}

	return network.FromDense(m.Entities(), clrScores(mi), network.KeepNonZero)
}

func clrScores(mi *matrix.Dense) *matrix.Dense {
	k := mi.Rows()
	mean := make([]float64, k)
	sd := make([]float64, k)
	if k > 1 {
		for i := 0; i < k; i++ {
			row, _ := mi.Row(i)
			var s float64
			for j, v := range row {
				if j != i {
					s += v
				}
			}
			mean[i] = s / float64(k-1)
			if k > 2 {
				var ss float64
				for j, v := range row {
					if j != i {
						ss += (v - mean[i]) * (v - mean[i])
					}
				}
				sd[i] = math.Sqrt(ss / float64(k-2))
			}
		}
	}
	z := func(i int, v float64) float64 {
		if sd[i] == 0 {
			return 0
		}

		return math.Max(0, (v-mean[i])/sd[i])
	}

	scores, _ := matrix.NewDense(k, k)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			v, _ := mi.At(i, j)
			zi, zj := z(i, v), z(j, v)
			s := math.Sqrt(zi*zi + zj*zj)
			_ = scores.Set(i, j, s)
			_ = scores.Set(j, i, s)
		}
	}

	return scores
}

// inferARACNE removes every pair that is the weakest edge of some triangle
// (data processing inequality, tolerance 0) and keeps the MI of the rest.
// Pruning decisions are taken on the unpruned matrix, so the result does not
// depend on the visiting order.
func inferARACNE(m *dataset.Matrix) (*network.Graph, error) {
	mi, err := gaussianMI(m)
	if err != nil {
		return nil, err
	}
	k := mi.Rows()
	pruned := aracnePruned(mi)

	return network.FromDense(m.Entities(), mi, func(i, j int, w float64) bool {
		return w > 0 && !pruned[i*k+j]
	})
}

// aracnePruned marks (row-major, upper triangle) the pairs that lose a triangle.
func aracnePruned(mi *matrix.Dense) []bool {
	k := mi.Rows()
	pruned := make([]bool, k*k)
	at := func(i, j int) float64 { v, _ := mi.At(i, j); return v }
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			ij := at(i, j)
			for x := 0; x < k; x++ {
				if x == i || x == j {
					continue
				}
				if ij < math.Min(at(i, x), at(j, x)) {
					pruned[i*k+j] = true
					break
				}
			}
		}
	}

	return pruned
}

// inferMRNET runs maximum-relevance/minimum-redundancy forward selection with
// every entity as the target. A feature's score is its relevance minus its
// mean redundancy with the features already selected; selection stops at the
// first non-positive score. The score matrix is symmetrised by max.
func inferMRNET(m *dataset.Matrix) (*network.Graph, error) {
	mi, err := gaussianMI(m)
	if err != nil {
		return nil, err
	}

	return network.FromDense(m.Entities(), mrnetScores(mi), network.KeepNonZero)
}

func mrnetScores(mi *matrix.Dense) *matrix.Dense {
	k := mi.Rows()
	at := func(i, j int) float64 { v, _ := mi.At(i, j); return v }
	scores := make([]float64, k*k)

	for target := 0; target < k; target++ {
		selected := make([]int, 0, k-1)
		used := make([]bool, k)
		used[target] = true
		redundancy := make([]float64, k)
		for len(selected) < k-1 {
			best, bestScore := -1, math.Inf(-1)
			for f := 0; f < k; f++ {
				if used[f] {
					continue
				}
				s := at(target, f)
				if len(selected) > 0 {
					s -= redundancy[f] / float64(len(selected))
				}
				if s > bestScore {
					best, bestScore = f, s
				}
			}
			if best < 0 || bestScore <= 0 {
				break
			}
			scores[target*k+best] = bestScore
			used[best] = true
			selected = append(selected, best)
			for f := 0; f < k; f++ {
				if !used[f] {
					redundancy[f] += at(f, best)
				}
			}
		}
	}

	sym, _ := matrix.NewDense(k, k)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			v := math.Max(scores[i*k+j], scores[j*k+i])
			_ = sym.Set(i, j, v)
			_ = sym.Set(j, i, v)
		}
	}

	return sym
}
