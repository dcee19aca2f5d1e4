package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/katalvlaran/netfuse/combine"
	"github.com/katalvlaran/netfuse/config"
	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/geneset"
	"github.com/katalvlaran/netfuse/inference"
	"github.com/katalvlaran/netfuse/network"
)

// ErrOutput reports that a produced graph could not be handed to the sink.
var ErrOutput = errors.New("pipeline: output failed")

// Mode is the run layout.
type Mode string

const (
	ModeSingle  Mode = "single"
	ModeGeneSet Mode = "geneset"
)

// ConsensusResult holds the graphs of one scope, keyed by method name and by
// the combiner's name for the consensus.
type ConsensusResult struct {
	Scope     string
	Graphs    map[string]*network.Graph
	Consensus string
	Failed    inference.Results
}

// ScopeFailure records a scope that produced no consensus.
type ScopeFailure struct {
	Scope string
	Err   error
}

// Report summarises a run.
type Report struct {
	RunID    uuid.UUID
	Mode     Mode
	Started  time.Time
	Finished time.Time
	Results  []ConsensusResult
	Excluded []geneset.Exclusion
	Failures []ScopeFailure
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry replaces the built-in inference registry.
func WithRegistry(r *inference.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithSink replaces the default FileSink.
func WithSink(s Sink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator drives one run: read, preprocess, infer, combine, write.
type Orchestrator struct {
	cfg      *config.Config
	registry *inference.Registry
	sink     Sink
	logger   *zap.Logger

	methods  []string
	combiner combine.Combiner
	settings inference.Settings
	sem      *semaphore.Weighted
}

// New validates cfg against the registries. Unknown method or combiner names
// fail here, before any data is read.
func New(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:      cfg,
		registry: inference.Builtin(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.sink == nil {
		o.sink = NewFileSink(cfg.Output.Dir, cfg.Output.Scaled)
	}
	o.logger = o.logger.With(zap.String("component", "pipeline"))

	var err error
	if o.methods, err = o.registry.Resolve(cfg.Inference.Methods); err != nil {
		return nil, err
	}
	name := cfg.Combine.Method
	if name == "" {
		name = combine.DefaultCombiner
	}
	if o.combiner, err = combine.Lookup(name, paramsFrom(cfg.Combine)); err != nil {
		return nil, err
	}
	o.settings = inference.Settings{Correction: inference.Correction(cfg.Inference.Correction), Alpha: cfg.Inference.Alpha}
	if err = o.settings.Validate(); err != nil {
		return nil, err
	}
	o.sem = semaphore.NewWeighted(int64(cfg.Inference.Workers))

	return o, nil
}

func paramsFrom(c config.CombineConfig) combine.Params {
	return combine.Params{
		SummaTol:     c.SummaTol,
		SummaMaxIter: c.SummaMaxIter,
		SNFNeighbors: c.SNFNeighbors,
		SNFIter:      c.SNFIter,
		SNFTol:       c.SNFTol,
	}
}

// Execute runs the pipeline. The returned error is run-fatal
// (dataset.ErrDataFormat, a GMT read failure, or ctx cancellation); scope
// failures are reported in the Report.
func (o *Orchestrator) Execute(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.New(), Started: time.Now(), Mode: ModeSingle}
	log := o.logger.With(zap.String("run_id", rep.RunID.String()))
	defer func() { rep.Finished = time.Now() }()

	m, err := o.load(log)
	if err != nil {
		return rep, err
	}

	if o.cfg.GeneSets.Path == "" {
		res, err := o.runScope(ctx, log, "", m)
		switch {
		case err == nil:
			rep.Results = append(rep.Results, res)
		case ctx.Err() != nil:
			return rep, ctx.Err()
		default:
			rep.Failures = append(rep.Failures, ScopeFailure{Scope: "", Err: err})
		}
		o.summary(log, rep)

		return rep, nil
	}

	rep.Mode = ModeGeneSet
	sets, err := geneset.ReadGMT(o.cfg.GeneSets.Path)
	if err != nil {
		return rep, err
	}
	log.Info("gene sets loaded", zap.Int("sets", len(sets)))

	var (
		mu      sync.Mutex
		byScope = make(map[string]ConsensusResult)
	)
	out, err := geneset.Partition(ctx, m, sets,
		func(ctx context.Context, s geneset.GeneSet, sub *dataset.Matrix) error {
			res, err := o.runScope(ctx, log, s.Name, sub)
			if err != nil {
				return err
			}
			mu.Lock()
			byScope[s.Name] = res
			mu.Unlock()

			return nil
		},
		geneset.WithStandardizePerSet(o.cfg.GeneSets.StandardizePerSet),
		geneset.WithConcurrency(o.cfg.Inference.Workers),
		geneset.WithLogger(log))
	for _, name := range out.Included {
		rep.Results = append(rep.Results, byScope[name])
	}
	rep.Excluded = out.Excluded
	for _, f := range out.Failed {
		rep.Failures = append(rep.Failures, ScopeFailure{Scope: f.Set, Err: f.Err})
	}
	if err != nil {
		return rep, err
	}
	o.summary(log, rep)

	return rep, nil
}

// load reads and preprocesses the input table.
func (o *Orchestrator) load(log *zap.Logger) (*dataset.Matrix, error) {
	in := o.cfg.Input
	delim, err := in.DelimiterRune()
	if err != nil {
		return nil, err
	}
	opts := dataset.DefaultReadOptions()
	opts.Delimiter = delim
	opts.HeaderRow = in.HeaderRow
	opts.IndexColumn = in.IndexColumn

	log.Info("reading data", zap.String("path", in.Path))
	raw, err := dataset.ReadTable(in.Path, opts)
	if err != nil {
		return nil, err
	}
	pre := o.cfg.Preprocess
	m, err := dataset.Prepare(raw,
		dataset.WithSamplesOnRows(pre.SamplesOnRows),
		dataset.WithFillValue(pre.FillValue),
		dataset.WithStandardize(pre.Standardize),
		dataset.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("data prepared", zap.Int("samples", m.NumSamples()), zap.Int("entities", m.NumEntities()))

	return m, nil
}

// runScope infers every method on m, writes each graph as soon as it is
// ready, then combines the survivors. An error is scope-fatal unless ctx is done.
func (o *Orchestrator) runScope(ctx context.Context, log *zap.Logger, scope string, m *dataset.Matrix) (ConsensusResult, error) {
	log = log.With(zap.String("scope", scope))
	var (
		mu       sync.Mutex
		sinkErrs []error
	)
	opts := []inference.RunnerOption{
		inference.WithSemaphore(o.sem),
		inference.WithSettings(o.settings),
		inference.WithLogger(log),
		inference.WithResultHook(func(r inference.MethodResult) {
			if !r.OK() {
				return
			}
			if err := o.sink.Put(ctx, scope, r.Method, r.Graph); err != nil {
				mu.Lock()
				sinkErrs = append(sinkErrs, fmt.Errorf("%s: %w", r.Method, err))
				mu.Unlock()
			}
		}),
	}
	if loader, ok := o.sink.(Loader); ok && o.cfg.Inference.Resume {
		opts = append(opts, inference.WithDecorator(func(name string, inf inference.Inferencer) inference.Inferencer {
			return inference.Resume(name, inf, func(method string) (*network.Graph, bool, error) {
				g, found, err := loader.Load(scope, method)
				if found {
					log.Info("resumed from stored graph", zap.String("method", method))
				}

				return g, found, err
			})
		}))
	}

	results, err := inference.NewRunner(o.registry, opts...).Run(ctx, m, o.methods)
	if err != nil {
		return ConsensusResult{}, err
	}
	if len(sinkErrs) > 0 {
		return ConsensusResult{}, fmt.Errorf("%w: %w", ErrOutput, errors.Join(sinkErrs...))
	}

	res := ConsensusResult{
		Scope:     scope,
		Graphs:    make(map[string]*network.Graph, len(results)+1),
		Consensus: o.combiner.Name(),
		Failed:    results.Failed(),
	}
	for _, r := range results.Succeeded() {
		res.Graphs[r.Method] = r.Graph
	}
	graphs := results.Graphs()
	if len(graphs) == 0 {
		return ConsensusResult{}, fmt.Errorf("%s: no method produced a graph: %w", o.combiner.Name(), combine.ErrCombinerFailure)
	}

	if err = o.sem.Acquire(ctx, 1); err != nil {
		return ConsensusResult{}, err
	}
	start := time.Now()
	consensus, err := o.combiner.Combine(graphs)
	o.sem.Release(1)
	if err != nil {
		return ConsensusResult{}, err
	}
	log.Info("consensus built",
		zap.String("combiner", o.combiner.Name()),
		zap.Int("inputs", len(graphs)),
		zap.Int("edges", consensus.EdgeCount()),
		zap.Duration("elapsed", time.Since(start)))
	if err = o.sink.Put(ctx, scope, o.combiner.Name(), consensus); err != nil {
		return ConsensusResult{}, fmt.Errorf("%s: %w: %w", o.combiner.Name(), ErrOutput, err)
	}
	res.Graphs[o.combiner.Name()] = consensus

	return res, nil
}

func (o *Orchestrator) summary(log *zap.Logger, rep *Report) {
	log.Info("run finished",
		zap.String("mode", string(rep.Mode)),
		zap.Int("scopes", len(rep.Results)),
		zap.Int("excluded", len(rep.Excluded)),
		zap.Int("failed", len(rep.Failures)),
		zap.Duration("elapsed", time.Since(rep.Started)))
}
