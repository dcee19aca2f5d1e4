package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/netfuse/combine"
	"github.com/katalvlaran/netfuse/edgelist"
	"github.com/katalvlaran/netfuse/network"
)

// CombineParams mirrors combine.Params with file keys.
type CombineParams struct {
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"`
	K       int     `yaml:"K"`
	T       int     `yaml:"T"`
	SNFTol  float64 `yaml:"snf_tol"`
}

// CombineSpec describes a combine-only run over stored edge lists.
//
//	method: summa
//	filepaths: [out/pearson.csv.gz, out/clr.csv.gz]
//	interaction_symbol: "<->"
//	parameters: {tol: 0.001, max_iter: 500}
type CombineSpec struct {
	Method            string        `yaml:"method"`
	Filepaths         []string      `yaml:"filepaths"`
	InteractionSymbol string        `yaml:"interaction_symbol"`
	Parameters        CombineParams `yaml:"parameters"`
}

// LoadCombineSpec reads a YAML (or JSON) combine spec. Relative file paths
// are resolved against the spec's directory.
func LoadCombineSpec(path string) (*CombineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read combine spec: %w", err)
	}
	var spec CombineSpec
	if err = yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse combine spec %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, p := range spec.Filepaths {
		if !filepath.IsAbs(p) {
			spec.Filepaths[i] = filepath.Join(base, p)
		}
	}

	return &spec, nil
}

// methodName strips the directory and the edge-list extension.
func methodName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), edgelist.Ext)
}

// onUnion extends every graph to the sorted union of their entity sets. Edge
// lists only name connected entities, so a sparse method would otherwise
// shrink the common entity set of the combination.
func onUnion(graphs []*network.Graph) ([]*network.Graph, error) {
	seen := make(map[string]struct{})
	var union []string
	for _, g := range graphs {
		for _, e := range g.Entities() {
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				union = append(union, e)
			}
		}
	}
	sort.Strings(union)
	out := make([]*network.Graph, len(graphs))
	for i, g := range graphs {
		full, err := g.Extend(union)
		if err != nil {
			return nil, err
		}
		out[i] = full
	}

	return out, nil
}

// CombineFiles loads every edge list named by spec, fuses them and hands the
// consensus to sink under the combiner's name. A single input passes through
// the combiner unchanged.
func CombineFiles(ctx context.Context, spec *CombineSpec, sink Sink, logger *zap.Logger) (*network.Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("component", "pipeline"))
	if spec == nil {
		return nil, fmt.Errorf("nil combine spec: %w", combine.ErrCombinerFailure)
	}
	name := spec.Method
	if name == "" {
		name = combine.DefaultCombiner
	}
	c, err := combine.Lookup(name, combine.Params{
		SummaTol:     spec.Parameters.Tol,
		SummaMaxIter: spec.Parameters.MaxIter,
		SNFNeighbors: spec.Parameters.K,
		SNFIter:      spec.Parameters.T,
		SNFTol:       spec.Parameters.SNFTol,
	})
	if err != nil {
		return nil, err
	}
	if len(spec.Filepaths) == 0 {
		return nil, fmt.Errorf("%s: no input files: %w", name, combine.ErrCombinerFailure)
	}

	graphs := make([]*network.Graph, 0, len(spec.Filepaths))
	for _, p := range spec.Filepaths {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		g, err := edgelist.ReadFile(p, edgelist.WithSymbol(spec.InteractionSymbol))
		if err != nil {
			return nil, err
		}
		log.Info("edge list loaded",
			zap.String("method", methodName(p)),
			zap.Int("entities", g.NumEntities()),
			zap.Int("edges", g.EdgeCount()))
		graphs = append(graphs, g)
	}

	if graphs, err = onUnion(graphs); err != nil {
		return nil, err
	}

	start := time.Now()
	consensus, err := c.Combine(graphs)
	if err != nil {
		return nil, err
	}
	log.Info("consensus built",
		zap.String("combiner", c.Name()),
		zap.Int("inputs", len(graphs)),
		zap.Int("edges", consensus.EdgeCount()),
		zap.Duration("elapsed", time.Since(start)))
	if sink != nil {
		if err = sink.Put(ctx, "", c.Name(), consensus); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", c.Name(), ErrOutput, err)
		}
	}

	return consensus, nil
}
