package inference

import (
	"fmt"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/network"
)

// Loader returns a previously stored graph for method; ok is false when
// nothing is stored.
type Loader func(method string) (g *network.Graph, ok bool, err error)

// resumed serves a stored graph when one exists and falls through to the
// wrapped method otherwise.
type resumed struct {
	name  string
	inner Inferencer
	load  Loader
}

// Resume wraps inner, registered as name, so that a graph already produced
// by an earlier run is loaded instead of recomputed. The loaded graph is
// extended to every entity of the matrix. A load error, or a stored graph
// naming entities outside the matrix, fails the method.
func Resume(name string, inner Inferencer, load Loader) Inferencer {
	if load == nil {
		return inner
	}

	return &resumed{name: name, inner: inner, load: load}
}

func (r *resumed) Name() string { return r.inner.Name() }

func (r *resumed) Infer(m *dataset.Matrix) (*network.Graph, error) {
	g, ok, err := r.load(r.name)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", r.name, err)
	}
	if ok {
		// Edge lists only name connected entities.
		full, err := g.Extend(m.Entities())
		if err != nil {
			return nil, fmt.Errorf("resume %s: stored graph does not fit the matrix: %w", r.name, err)
		}

		return full, nil
	}

	return r.inner.Infer(m)
}
