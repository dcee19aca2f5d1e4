package combine

import (
	"math"
	"sort"

	"github.com/katalvlaran/netfuse/network"
)

// reduceFunc folds the per-input values of one pair. mask marks inputs
// that score the pair; k is the number of inputs.
type reduceFunc func(values []float64, mask []bool, k int) float64

// reducer combines pairs independently with a reduceFunc, optionally on
// scaled ranks instead of raw scores.
type reducer struct {
	name   string
	fn     reduceFunc
	ranked bool
}

func newReducer(name string, fn reduceFunc, ranked bool) *reducer {
	return &reducer{name: name, fn: fn, ranked: ranked}
}

func (r *reducer) Name() string { return r.name }

// Combine scores every pair scored by at least one input.
func (r *reducer) Combine(graphs []*network.Graph) (*network.Graph, error) {
	if len(graphs) == 1 && graphs[0] != nil {
		return graphs[0], nil
	}
	a, err := align(r.name, graphs)
	if err != nil {
		return nil, err
	}
	if a.identical() && !r.ranked {
		return restrictFirst(r.name, graphs, a)
	}

	k := len(a.scores)
	vals := a.scores
	if r.ranked {
		vals = make([][]float64, k)
		for c := range a.scores {
			vals[c] = scaledRanks(a.scores[c], a.scored[c])
		}
	}

	out := make([]float64, len(a.pairs))
	column := make([]float64, k)
	mask := make([]bool, k)
	for p := range a.pairs {
		for c := 0; c < k; c++ {
			column[c], mask[c] = vals[c][p], a.scored[c][p]
		}
		out[p] = r.fn(column, mask, k)
	}

	return a.build(out, nil)
}

// scaledRanks ranks scored values ascending (ties averaged) and divides by
// the largest rank, so the strongest pair of the input gets 1.
func scaledRanks(scores []float64, scored []bool) []float64 {
	idx := make([]int, 0, len(scores))
	for p, ok := range scored {
		if ok {
			idx = append(idx, p)
		}
	}
	out := make([]float64, len(scores))
	if len(idx) == 0 {
		return out
	}
	sort.SliceStable(idx, func(x, y int) bool { return scores[idx[x]] < scores[idx[y]] })
	var top float64
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && scores[idx[end]] == scores[idx[start]] {
			end++
		}
		avg := float64(start+end+1) / 2
		for q := start; q < end; q++ {
			out[idx[q]] = avg
		}
		top = math.Max(top, avg)
		start = end
	}
	for _, p := range idx {
		out[p] /= top
	}

	return out
}

func present(values []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(values))
	for c, v := range values {
		if mask[c] {
			out = append(out, v)
		}
	}

	return out
}

func reduceMean(values []float64, mask []bool, _ int) float64 {
	vs := present(values, mask)
	var s float64
	for _, v := range vs {
		s += v
	}

	return s / float64(len(vs))
}

func reduceHardMean(values []float64, mask []bool, k int) float64 {
	var s float64
	for _, v := range present(values, mask) {
		s += v
	}

	return s / float64(k)
}

func reduceMedian(values []float64, mask []bool, _ int) float64 {
	vs := present(values, mask)
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}

	return 0.5 * (vs[n/2-1] + vs[n/2])
}

func reduceMax(values []float64, mask []bool, _ int) float64 {
	best := math.Inf(-1)
	for _, v := range present(values, mask) {
		best = math.Max(best, v)
	}

	return best
}

func reduceMin(values []float64, mask []bool, _ int) float64 {
	best := math.Inf(1)
	for _, v := range present(values, mask) {
		best = math.Min(best, v)
	}

	return best
}
