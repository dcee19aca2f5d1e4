package combine

import (
	"sort"

	"github.com/katalvlaran/netfuse/network"
)

// aligned is the common view of k graphs: the shared entity set (sorted),
// the union of scored pairs inside it (canonical order), and per-graph score
// vectors over those pairs. Unscored pairs hold score 0 and scored=false.
type aligned struct {
	entities []string
	pairs    [][2]int
	scores   [][]float64
	scored   [][]bool
	// order[c] is the input position of the graph stored at row c.
	order []int
}

// align validates the inputs and builds the common view. Graph rows are put
// in canonical order (lexicographic on the score vectors, input position
// last) so every computation downstream is independent of input order.
func align(name string, graphs []*network.Graph) (*aligned, error) {
	if len(graphs) == 0 {
		return nil, failf(name, "no input graphs")
	}
	for i, g := range graphs {
		if g == nil {
			return nil, failf(name, "input %d is nil", i)
		}
	}

	common := graphs[0].Entities()
	for _, g := range graphs[1:] {
		kept := common[:0:0]
		for _, e := range common {
			if g.HasEntity(e) {
				kept = append(kept, e)
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return nil, failf(name, "input graphs share no entity")
	}
	sort.Strings(common)

	n := len(common)
	pairs := make([][2]int, 0)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for _, g := range graphs {
				if g.HasEdge(common[i], common[j]) {
					pairs = append(pairs, [2]int{i, j})
					break
				}
			}
		}
	}

	k := len(graphs)
	a := &aligned{
		entities: common,
		pairs:    pairs,
		scores:   make([][]float64, k),
		scored:   make([][]bool, k),
		order:    make([]int, k),
	}
	for c, g := range graphs {
		a.order[c] = c
		a.scores[c] = make([]float64, len(pairs))
		a.scored[c] = make([]bool, len(pairs))
		for p, pr := range pairs {
			a.scores[c][p], a.scored[c][p] = g.Weight(common[pr[0]], common[pr[1]])
		}
	}
	sort.Stable(byScores{a})

	return a, nil
}

// byScores orders graph rows by (scored, score) vectors.
type byScores struct{ a *aligned }

func (b byScores) Len() int { return len(b.a.order) }

func (b byScores) Swap(x, y int) {
	a := b.a
	a.scores[x], a.scores[y] = a.scores[y], a.scores[x]
	a.scored[x], a.scored[y] = a.scored[y], a.scored[x]
	a.order[x], a.order[y] = a.order[y], a.order[x]
}

func (b byScores) Less(x, y int) bool {
	a := b.a
	for p := range a.pairs {
		if a.scored[x][p] != a.scored[y][p] {
			return !a.scored[x][p]
		}
		if a.scores[x][p] != a.scores[y][p] {
			return a.scores[x][p] < a.scores[y][p]
		}
	}

	return false
}

// identical reports whether every graph carries the same scores on the common view.
func (a *aligned) identical() bool {
	for c := 1; c < len(a.scores); c++ {
		for p := range a.pairs {
			if a.scored[c][p] != a.scored[0][p] || a.scores[c][p] != a.scores[0][p] {
				return false
			}
		}
	}

	return true
}

// build materialises per-pair values over the common entities; keep decides
// which pairs are stored.
func (a *aligned) build(values []float64, keep func(p int) bool) (*network.Graph, error) {
	b, err := network.NewBuilder(a.entities)
	if err != nil {
		return nil, err
	}
	for p, pr := range a.pairs {
		if keep != nil && !keep(p) {
			continue
		}
		if err = b.SetWeight(a.entities[pr[0]], a.entities[pr[1]], values[p]); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// restrictFirst returns the first input restricted to the common entities,
// or the input itself when nothing is dropped.
func restrictFirst(name string, graphs []*network.Graph, a *aligned) (*network.Graph, error) {
	g := graphs[0]
	if g.NumEntities() == len(a.entities) {
		return g, nil
	}
	out, err := g.Restrict(a.entities)
	if err != nil {
		return nil, failf(name, "restrict: %v", err)
	}

	return out, nil
}
