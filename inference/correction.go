package inference

import "sort"

// Correction names a multiple-testing correction.
type Correction string

const (
	CorrectionBH         Correction = "b-h"
	CorrectionBY         Correction = "b-y"
	CorrectionBonferroni Correction = "bonferroni"
	CorrectionNone       Correction = "none"
)

// corrections maps a name to its rejection rule: significant[k] reports
// whether hypothesis k is rejected at level alpha.
var corrections = map[Correction]func(p []float64, alpha float64) []bool{
	CorrectionBH:         benjaminiHochberg,
	CorrectionBY:         benjaminiYekutieli,
	CorrectionBonferroni: bonferroni,
	CorrectionNone:       noCorrection,
}

// Significant applies the named correction to p-values.
func Significant(c Correction, p []float64, alpha float64) ([]bool, error) {
	fn, ok := corrections[c]
	if !ok {
		return nil, ErrInvalidSettings
	}

	return fn(p, alpha), nil
}

func noCorrection(p []float64, _ float64) []bool {
	out := make([]bool, len(p))
	for k := range out {
		out[k] = true
	}

	return out
}

// bonferroni rejects p ≤ alpha/m.
func bonferroni(p []float64, alpha float64) []bool {
	out := make([]bool, len(p))
	if len(p) == 0 {
		return out
	}
	cut := alpha / float64(len(p))
	for k, v := range p {
		out[k] = v <= cut
	}

	return out
}

func benjaminiHochberg(p []float64, alpha float64) []bool {
	return stepUp(p, alpha)
}

// benjaminiYekutieli is the step-up rule at alpha / Σ_{i=1..m} 1/i.
func benjaminiYekutieli(p []float64, alpha float64) []bool {
	var cm float64
	for i := 1; i <= len(p); i++ {
		cm += 1 / float64(i)
	}
	if cm == 0 {
		return make([]bool, len(p))
	}

	return stepUp(p, alpha/cm)
}

// stepUp finds the largest rank k with p_(k) ≤ k·alpha/m and rejects the k
// smallest p-values. Ties keep input order.
func stepUp(p []float64, alpha float64) []bool {
	m := len(p)
	out := make([]bool, m)
	if m == 0 {
		return out
	}
	order := make([]int, m)
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	last := -1
	for rank, idx := range order {
		if p[idx] <= float64(rank+1)*alpha/float64(m) {
			last = rank
		}
	}
	for rank := 0; rank <= last; rank++ {
		out[order[rank]] = true
	}

	return out
}
