package inference

import (
	"fmt"
	"math"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// pcorrRidge is added to the correlation diagonal before inversion so that
// rank-deficient inputs (more entities than samples) stay invertible.
const pcorrRidge = 1e-3

// inferPartialCorrelation computes P = (R + λI)⁻¹ and scores each pair by
// -P_ij / sqrt(P_ii·P_jj).
func inferPartialCorrelation(m *dataset.Matrix) (*network.Graph, error) {
	if m.NumSamples() < 2 {
		return nil, fmt.Errorf("pcorr needs at least 2 samples: %w", ErrTooFewSamples)
	}
	rho, err := correlationMatrix(m, false)
	if err != nil {
		return nil, err
	}
	k := m.NumEntities()
	for i := 0; i < k; i++ {
		v, _ := rho.At(i, i)
		_ = rho.Set(i, i, v+pcorrRidge)
	}
	prec, err := matrix.Inverse(rho)
	if err != nil {
		return nil, fmt.Errorf("pcorr: %w", err)
	}

	scores, _ := matrix.NewDense(k, k)
	for i := 0; i < k; i++ {
		pii, _ := prec.At(i, i)
		for j := i + 1; j < k; j++ {
			pjj, _ := prec.At(j, j)
			pij, _ := prec.At(i, j)
			pji, _ := prec.At(j, i)
			den := math.Sqrt(pii * pjj)
			if den == 0 || math.IsNaN(den) {
				continue
			}
			s := clampUnit(-0.5 * (pij + pji) / den)
			_ = scores.Set(i, j, s)
			_ = scores.Set(j, i, s)
		}
	}

	return network.FromDense(m.Entities(), scores, network.KeepNonZero)
}
