package combine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/netfuse/network"
)

// Sentinel errors.
var (
	// ErrUnknownCombiner is returned by Lookup for an unregistered name.
	ErrUnknownCombiner = errors.New("combine: unknown combiner")

	// ErrCombinerFailure wraps every reason a combiner produced no graph
	// (no inputs, nil input, empty common entity set, numeric failure).
	ErrCombinerFailure = errors.New("combine: combiner failed")
)

// DefaultCombiner is used when no combiner is configured.
const DefaultCombiner = "summa"

// Combiner fuses several graphs over the same entities into one.
// A single input is returned unchanged.
type Combiner interface {
	Name() string
	Combine(graphs []*network.Graph) (*network.Graph, error)
}

// Params carries the tuning knobs of the iterative combiners.
type Params struct {
	// SummaTol stops the diagonal re-estimation once the largest change is below it.
	SummaTol float64
	// SummaMaxIter bounds the diagonal re-estimation rounds.
	SummaMaxIter int
	// SNFNeighbors is K, the local kernel size (capped at n-1).
	SNFNeighbors int
	// SNFIter is T, the number of diffusion rounds.
	SNFIter int
	// SNFTol stops the diffusion early once the largest change is below it.
	SNFTol float64
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		SummaTol:     1e-3,
		SummaMaxIter: 500,
		SNFNeighbors: 20,
		SNFIter:      20,
		SNFTol:       1e-9,
	}
}

// withDefaults replaces non-positive knobs by their defaults.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.SummaTol <= 0 {
		p.SummaTol = d.SummaTol
	}
	if p.SummaMaxIter <= 0 {
		p.SummaMaxIter = d.SummaMaxIter
	}
	if p.SNFNeighbors <= 0 {
		p.SNFNeighbors = d.SNFNeighbors
	}
	if p.SNFIter <= 0 {
		p.SNFIter = d.SNFIter
	}
	if p.SNFTol < 0 {
		p.SNFTol = d.SNFTol
	}

	return p
}

// registry is the static name → constructor table.
var registry = map[string]func(Params) Combiner{
	"summa":    func(p Params) Combiner { return NewSumma(p) },
	"snf":      func(p Params) Combiner { return NewSNF(p) },
	"mean":     func(Params) Combiner { return newReducer("mean", reduceMean, false) },
	"median":   func(Params) Combiner { return newReducer("median", reduceMedian, false) },
	"max":      func(Params) Combiner { return newReducer("max", reduceMax, false) },
	"min":      func(Params) Combiner { return newReducer("min", reduceMin, false) },
	"woc":      func(Params) Combiner { return newReducer("woc", reduceMean, true) },
	"woc_hard": func(Params) Combiner { return newReducer("woc_hard", reduceHardMean, true) },
}

// Lookup instantiates the combiner registered under name.
func Lookup(name string, p Params) (Combiner, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCombiner)
	}

	return ctor(p.withDefaults()), nil
}

// Names lists the registered combiners, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

func failf(name, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", name, ErrCombinerFailure, fmt.Sprintf(format, args...))
}
