package combine

import (
	"math"
	"sort"

	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// Summa is the unsupervised ensemble combiner. Methods are weighted by how
// well their pair rankings agree with the shared latent ranking, estimated
// from the leading eigenvector of the rank-correlation matrix.
type Summa struct {
	tol     float64
	maxIter int
}

// NewSumma returns a Summa using p.SummaTol and p.SummaMaxIter.
func NewSumma(p Params) *Summa {
	p = p.withDefaults()

	return &Summa{tol: p.SummaTol, maxIter: p.SummaMaxIter}
}

// Name implements Combiner.
func (s *Summa) Name() string { return "summa" }

// Combine returns the weighted sum of the raw scores over the union of
// scored pairs inside the common entity set.
//
// Implementation:
//   - Stage 1: single input → returned as is.
//   - Stage 2: align inputs in canonical order; identical inputs → first input.
//   - Stage 3: weights from the ranked score vectors (see Weights).
//   - Stage 4: consensus score per pair = Σ wᵢ·sᵢ, unscored counting 0.
func (s *Summa) Combine(graphs []*network.Graph) (*network.Graph, error) {
	if len(graphs) == 1 && graphs[0] != nil {
		return graphs[0], nil
	}
	a, err := align(s.Name(), graphs)
	if err != nil {
		return nil, err
	}
	if a.identical() {
		return restrictFirst(s.Name(), graphs, a)
	}

	w, err := s.weights(a)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(a.pairs))
	for p := range a.pairs {
		var sum float64
		for c := range a.scores {
			sum += w[c] * a.scores[c][p]
		}
		values[p] = sum
	}

	return a.build(values, nil)
}

// Weights returns the per-input weights, in input order. They are
// non-negative and sum to 1.
func (s *Summa) Weights(graphs []*network.Graph) ([]float64, error) {
	if len(graphs) == 1 && graphs[0] != nil {
		return []float64{1}, nil
	}
	a, err := align(s.Name(), graphs)
	if err != nil {
		return nil, err
	}
	w := uniform(len(graphs))
	if !a.identical() {
		if w, err = s.weights(a); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(w))
	for c, pos := range a.order {
		out[pos] = w[c]
	}

	return out, nil
}

// weights computes the canonical-order weight vector.
//
// Implementation:
//   - Stage 1: rank every score vector (1 = highest score, ties and unscored
//     pairs resolved by pair order, unscored pairs after all scored ones).
//   - Stage 2: k×k Spearman matrix of the rank vectors.
//   - Stage 3: re-estimate the diagonal as λ·vᵢ² from the leading eigenpair
//     until the largest change is below tol or maxIter rounds.
//   - Stage 4: orient, clamp and normalise the leading eigenvector.
func (s *Summa) weights(a *aligned) ([]float64, error) {
	k, np := len(a.scores), len(a.pairs)
	if np < 2 {
		return uniform(k), nil
	}

	// Stage 1.
	ranks, err := matrix.NewDense(np, k)
	if err != nil {
		return nil, failf(s.Name(), "%v", err)
	}
	for c := range a.scores {
		for p, r := range rankScores(a.scores[c], a.scored[c]) {
			_ = ranks.Set(p, c, r)
		}
	}

	// Stage 2.
	rho, _, _, err := matrix.Correlation(ranks)
	if err != nil {
		return nil, failf(s.Name(), "rank correlation: %v", err)
	}

	// Stage 3.
	var vec []float64
	for iter := 0; iter < s.maxIter; iter++ {
		lambda, v, err := matrix.LeadingEigen(rho, 0, 0)
		if err != nil {
			return nil, failf(s.Name(), "%v", err)
		}
		vec = v
		var delta float64
		for i := 0; i < k; i++ {
			old, _ := rho.At(i, i)
			next := lambda * v[i] * v[i]
			delta = math.Max(delta, math.Abs(next-old))
			_ = rho.Set(i, i, next)
		}
		if delta < s.tol {
			break
		}
	}
	if vec == nil {
		return uniform(k), nil
	}
	if _, vec, err = matrix.LeadingEigen(rho, 0, 0); err != nil {
		return nil, failf(s.Name(), "%v", err)
	}

	// Stage 4.
	return normaliseWeights(vec), nil
}

// rankScores ranks scored entries by descending score (stable on position),
// then unscored entries in position order.
func rankScores(scores []float64, scored []bool) []float64 {
	idx := make([]int, len(scores))
	for p := range idx {
		idx[p] = p
	}
	sort.SliceStable(idx, func(x, y int) bool {
		px, py := idx[x], idx[y]
		if scored[px] != scored[py] {
			return scored[px]
		}
		if !scored[px] {
			return false
		}

		return scores[px] > scores[py]
	})
	out := make([]float64, len(scores))
	for r, p := range idx {
		out[p] = float64(r + 1)
	}

	return out
}

// normaliseWeights orients v so its sum is positive (first non-zero entry
// positive when the sum is zero), clamps negatives to 0 and scales to sum 1.
// A vector with no positive mass yields uniform weights.
func normaliseWeights(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	flip := sum < 0
	if sum == 0 {
		for _, x := range v {
			if x != 0 {
				flip = x < 0
				break
			}
		}
	}
	out := make([]float64, len(v))
	var total float64
	for i, x := range v {
		if flip {
			x = -x
		}
		if x > 0 {
			out[i] = x
			total += x
		}
	}
	if total == 0 {
		return uniform(len(v))
	}
	for i := range out {
		out[i] /= total
	}

	return out
}

func uniform(k int) []float64 {
	out := make([]float64, k)
	for i := range out {
		out[i] = 1 / float64(k)
	}

	return out
}
