package geneset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/netfuse/dataset"
)

// ErrGeneSetExcluded marks a set with too few entities in the matrix.
var ErrGeneSetExcluded = errors.New("geneset: gene set excluded")

// ErrUnsafeName marks a set whose name cannot be used as an output directory.
var ErrUnsafeName = errors.New("geneset: set name is not a plain directory name")

// CheckName rejects names that are not a single path element: separators,
// NUL, "." and "..".
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%q: %w", name, ErrUnsafeName)
	}

	return nil
}

// MinEntities is the smallest overlap a set needs to form a graph.
const MinEntities = 2

// ScopeFunc processes one gene set on its sliced matrix.
type ScopeFunc func(ctx context.Context, set GeneSet, m *dataset.Matrix) error

// Exclusion records a set that did not run.
type Exclusion struct {
	Set     string
	Matched int
	Err     error
}

// Failure records a set whose ScopeFunc returned an error.
type Failure struct {
	Set string
	Err error
}

// Outcome summarises a partitioned run. Every slice follows the input order.
type Outcome struct {
	Included []string
	Excluded []Exclusion
	Failed   []Failure
}

// Option configures Partition.
type Option func(*partitionConfig)

type partitionConfig struct {
	standardize bool
	limit       int
	logger      *zap.Logger
}

// WithStandardizePerSet re-standardizes each sliced matrix.
func WithStandardizePerSet(on bool) Option {
	return func(c *partitionConfig) { c.standardize = on }
}

// WithConcurrency bounds how many sets run at once (n < 1 means no bound).
func WithConcurrency(n int) Option {
	return func(c *partitionConfig) { c.limit = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *partitionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Partition runs fn once per gene set on the columns of m the set names.
//
// Implementation:
//   - Stage 1: restrict each set to the entities present in m (set order);
//     sets with an unusable or repeated name, or matching fewer than
//     MinEntities, are excluded and logged.
//   - Stage 2: slice (and optionally re-standardize) the matrix per set.
//   - Stage 3: run fn for every included set concurrently; an error is
//     recorded for that set only.
//
// The returned error is non-nil only when ctx is done.
func Partition(ctx context.Context, m *dataset.Matrix, sets []GeneSet, fn ScopeFunc, opts ...Option) (Outcome, error) {
	cfg := partitionConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With(zap.String("component", "geneset"))

	type slot struct {
		set      GeneSet
		excluded *Exclusion
		started  bool
		err      error
	}
	slots := make([]slot, len(sets))

	// Stage 1.
	names := make(map[string]struct{}, len(sets))
	for i, s := range sets {
		err := CheckName(s.Name)
		if _, dup := names[s.Name]; dup && err == nil {
			err = fmt.Errorf("%q: repeated set name", s.Name)
		}
		names[s.Name] = struct{}{}
		if err != nil {
			log.Warn("gene set excluded", zap.String("scope", s.Name), zap.Error(err))
			slots[i].excluded = &Exclusion{Set: s.Name, Err: fmt.Errorf("%w: %w", ErrGeneSetExcluded, err)}
			continue
		}
		var present []string
		for _, e := range s.Entities {
			if m.Has(e) {
				present = append(present, e)
			}
		}
		dropped := len(s.Entities) - len(present)
		if dropped > 0 {
			log.Debug("entities not in matrix", zap.String("scope", s.Name), zap.Int("dropped", dropped))
		}
		if len(present) < MinEntities {
			ex := &Exclusion{
				Set:     s.Name,
				Matched: len(present),
				Err:     fmt.Errorf("%s: %d of %d entities in matrix: %w", s.Name, len(present), len(s.Entities), ErrGeneSetExcluded),
			}
			log.Warn("gene set excluded", zap.String("scope", s.Name), zap.Int("matched", len(present)))
			slots[i].excluded = ex
			continue
		}
		slots[i].set = GeneSet{Name: s.Name, Description: s.Description, Entities: present}
	}

	// Stage 2 and 3.
	g, gctx := errgroup.WithContext(ctx)
	if cfg.limit > 0 {
		g.SetLimit(cfg.limit)
	}
	for i := range slots {
		if slots[i].excluded != nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		i := i
		slots[i].started = true
		g.Go(func() error {
			s := slots[i].set
			sub, err := m.Select(s.Entities)
			if err == nil && cfg.standardize {
				sub, err = sub.Standardize()
			}
			if err == nil {
				err = fn(gctx, s, sub)
			}
			if err != nil {
				log.Error("gene set failed", zap.String("scope", s.Name), zap.Error(err))
				slots[i].err = fmt.Errorf("%s: %w", s.Name, err)
			}

			return nil
		})
	}
	_ = g.Wait()

	var out Outcome
	for _, s := range slots {
		switch {
		case s.excluded != nil:
			out.Excluded = append(out.Excluded, *s.excluded)
		case s.err != nil:
			out.Failed = append(out.Failed, Failure{Set: s.set.Name, Err: s.err})
		case s.started:
			out.Included = append(out.Included, s.set.Name)
		}
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	return out, nil
}
