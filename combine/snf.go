package combine

import (
	"math"
	"sort"

	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// SNF is similarity network fusion: every input is diffused through the
// local neighbourhoods of the others until the networks agree.
type SNF struct {
	k   int
	t   int
	tol float64
}

// NewSNF returns an SNF using p.SNFNeighbors, p.SNFIter and p.SNFTol.
func NewSNF(p Params) *SNF {
	p = p.withDefaults()

	return &SNF{k: p.SNFNeighbors, t: p.SNFIter, tol: p.SNFTol}
}

// Name implements Combiner.
func (s *SNF) Name() string { return "snf" }

// Combine fuses the |weight| similarities of the inputs over their common
// entities. Non-zero off-diagonal entries of the fused matrix become edges.
//
// Implementation:
//   - Stage 1: single or identical inputs → first input.
//   - Stage 2: Pᵢ = sym(normalize(|Wᵢ|)), Sᵢ = top-K kernel of Pᵢ.
//   - Stage 3: Pᵢ ← sym(normalize(Sᵢ · mean_{j≠i} Pⱼ · Sᵢᵀ)) for T rounds,
//     stopping early once the largest change is below tol.
//   - Stage 4: result = sym(normalize(mean Pᵢ)).
func (s *SNF) Combine(graphs []*network.Graph) (*network.Graph, error) {
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
	n := len(a.entities)
	if n < 2 {
		return a.build(nil, func(int) bool { return false })
	}

	// Stage 2.
	k := len(a.scores)
	status := make([]*matrix.Dense, k)
	kernels := make([]*matrix.Dense, k)
	for c := range a.scores {
		w, _ := matrix.NewDense(n, n)
		for p, pr := range a.pairs {
			v := math.Abs(a.scores[c][p])
			_ = w.Set(pr[0], pr[1], v)
			_ = w.Set(pr[1], pr[0], v)
		}
		if status[c], err = symmetrise(normalizeSNF(w)); err != nil {
			return nil, failf(s.Name(), "%v", err)
		}
		kernels[c] = localKernel(status[c], s.k)
	}

	// Stage 3.
	for round := 0; round < s.t; round++ {
		next := make([]*matrix.Dense, k)
		var delta float64
		for c := range status {
			others, err := meanExcept(status, c)
			if err != nil {
				return nil, failf(s.Name(), "%v", err)
			}
			left, err := matrix.Mul(kernels[c], others)
			if err != nil {
				return nil, failf(s.Name(), "%v", err)
			}
			kt, err := matrix.Transpose(kernels[c])
			if err != nil {
				return nil, failf(s.Name(), "%v", err)
			}
			diffused, err := matrix.Mul(left, kt)
			if err != nil {
				return nil, failf(s.Name(), "%v", err)
			}
			if next[c], err = symmetrise(normalizeSNF(diffused)); err != nil {
				return nil, failf(s.Name(), "%v", err)
			}
			delta = math.Max(delta, maxAbsDiff(next[c], status[c]))
		}
		status = next
		if delta < s.tol {
			break
		}
	}

	// Stage 4.
	fused, err := meanExcept(status, -1)
	if err != nil {
		return nil, failf(s.Name(), "%v", err)
	}
	if fused, err = symmetrise(normalizeSNF(fused)); err != nil {
		return nil, failf(s.Name(), "%v", err)
	}

	return network.FromDense(a.entities, fused, network.KeepNonZero)
}

// normalizeSNF divides every off-diagonal entry by twice its row sum
// (diagonal excluded) and sets the diagonal to 1/2. Rows summing to 0 keep
// zero off-diagonal entries.
func normalizeSNF(w *matrix.Dense) *matrix.Dense {
	n := w.Rows()
	out, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		row, _ := w.Row(i)
		var sum float64
		for j, v := range row {
			if j != i {
				sum += v
			}
		}
		for j, v := range row {
			switch {
			case j == i:
				_ = out.Set(i, j, 0.5)
			case sum > 0:
				_ = out.Set(i, j, v/(2*sum))
			}
		}
	}

	return out
}

// symmetrise returns (W + Wᵀ)/2.
func symmetrise(w *matrix.Dense) (*matrix.Dense, error) {
	wt, err := matrix.Transpose(w)
	if err != nil {
		return nil, err
	}
	sum, err := matrix.Add(w, wt)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(sum, 0.5)
}

// localKernel keeps each row's K largest off-diagonal entries (K capped at
// n-1, ties resolved by column order) and scales the row to sum 1.
func localKernel(p *matrix.Dense, k int) *matrix.Dense {
	n := p.Rows()
	if k > n-1 {
		k = n - 1
	}
	out, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		row, _ := p.Row(i)
		cols := make([]int, 0, n-1)
		for j := range row {
			if j != i {
				cols = append(cols, j)
			}
		}
		sort.SliceStable(cols, func(x, y int) bool { return row[cols[x]] > row[cols[y]] })
		var sum float64
		for _, j := range cols[:k] {
			sum += row[j]
		}
		if sum <= 0 {
			continue
		}
		for _, j := range cols[:k] {
			_ = out.Set(i, j, row[j]/sum)
		}
	}

	return out
}

// meanExcept averages every matrix except the one at skip (skip < 0 keeps all).
func meanExcept(ms []*matrix.Dense, skip int) (*matrix.Dense, error) {
	var (
		acc   *matrix.Dense
		count int
		err   error
	)
	for c, m := range ms {
		if c == skip {
			continue
		}
		if acc == nil {
			acc = m.Clone().(*matrix.Dense)
		} else if acc, err = matrix.Add(acc, m); err != nil {
			return nil, err
		}
		count++
	}
	if acc == nil {
		return nil, matrix.ErrDimensionMismatch
	}

	return matrix.Scale(acc, 1/float64(count))
}

func maxAbsDiff(a, b *matrix.Dense) float64 {
	var d float64
	r, c := a.Shape()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, _ := a.At(i, j)
			y, _ := b.At(i, j)
			d = math.Max(d, math.Abs(x-y))
		}
	}

	return d
}
