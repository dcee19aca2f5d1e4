package inference

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/network"
)

// DefaultWorkers bounds concurrent units when no semaphore or worker count is given.
const DefaultWorkers = 4

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// Runner fans a matrix out to a set of registered methods.
// A Runner is safe for concurrent use; its semaphore may be shared with other
// Runners so that several scopes draw from one pool.
type Runner struct {
	reg      *Registry
	settings Settings
	sem      *semaphore.Weighted
	hook     func(MethodResult)
	decorate func(name string, inf Inferencer) Inferencer
	logger   *zap.Logger
}

// WithWorkers bounds the number of methods running at once (n < 1 → 1).
// Ignored when WithSemaphore is also given.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		if r.sem == nil {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithSemaphore makes the Runner acquire one slot of sem per unit.
func WithSemaphore(sem *semaphore.Weighted) RunnerOption {
	return func(r *Runner) {
		if sem != nil {
			r.sem = sem
		}
	}
}

// WithSettings sets the settings passed to every method constructor.
func WithSettings(s Settings) RunnerOption {
	return func(r *Runner) { r.settings = s }
}

// WithResultHook registers fn to be called as soon as each unit finishes.
// fn is called from the unit's goroutine and must be safe for concurrent use.
func WithResultHook(fn func(MethodResult)) RunnerOption {
	return func(r *Runner) { r.hook = fn }
}

// WithDecorator wraps every instantiated method, e.g. with Resume. name is
// the registered method name.
func WithDecorator(fn func(name string, inf Inferencer) Inferencer) RunnerOption {
	return func(r *Runner) { r.decorate = fn }
}

// WithLogger sets the logger; units log under the "method" field.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a Runner over reg (Builtin() when nil).
func NewRunner(reg *Registry, opts ...RunnerOption) *Runner {
	if reg == nil {
		reg = Builtin()
	}
	r := &Runner{reg: reg, settings: DefaultSettings(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.sem == nil {
		r.sem = semaphore.NewWeighted(DefaultWorkers)
	}
	r.logger = r.logger.With(zap.String("component", "inference"))

	return r
}

// Run executes the requested methods on m and returns one result per
// resolved name, in request order.
//
// Implementation:
//   - Stage 1: resolve names; unknown names fail the whole call before any work.
//   - Stage 2: one unit per method, each holding a semaphore slot while it runs.
//   - Stage 3: failures, panics and invalid graphs become failed results.
//   - Stage 4: once ctx is done no new unit starts; unstarted units are
//     reported as failed and Run returns ctx.Err() with the partial results.
func (r *Runner) Run(ctx context.Context, m *dataset.Matrix, names []string) (Results, error) {
	// Stage 1.
	resolved, err := r.reg.Resolve(names)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("nil matrix: %w", dataset.ErrDataFormat)
	}
	methods := make([]Inferencer, len(resolved))
	for i, name := range resolved {
		inf, err := r.reg.New(name, r.settings)
		if err != nil {
			return nil, err
		}
		if r.decorate != nil {
			inf = r.decorate(name, inf)
		}
		methods[i] = inf
	}

	// Stage 2.
	results := make(Results, len(resolved))
	var g errgroup.Group
	for i := range resolved {
		i := i
		name := resolved[i]
		err := ctx.Err()
		if err == nil {
			err = r.sem.Acquire(ctx, 1)
		}
		if err != nil {
			// Stage 4.
			for j := i; j < len(resolved); j++ {
				results[j] = r.finish(failed(resolved[j], fmt.Errorf("not started: %w", err), 0))
			}
			break
		}
		g.Go(func() error {
			defer r.sem.Release(1)
			results[i] = r.finish(r.runUnit(name, methods[i], m))

			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// runUnit executes one method with panic recovery and graph validation.
func (r *Runner) runUnit(name string, inf Inferencer, m *dataset.Matrix) (res MethodResult) {
	start := time.Now()
	r.logger.Debug("method started", zap.String("method", name))
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("method panicked",
				zap.String("method", name),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
			res = failed(name, fmt.Errorf("panic: %v", p), time.Since(start))
		}
	}()

	g, err := inf.Infer(m)
	if err != nil {
		return failed(name, err, time.Since(start))
	}
	if err = validateGraph(g, m); err != nil {
		return failed(name, err, time.Since(start))
	}

	return MethodResult{Method: name, Graph: g, Status: StatusOK, Elapsed: time.Since(start)}
}

// finish logs the outcome and fires the result hook.
func (r *Runner) finish(res MethodResult) MethodResult {
	if res.OK() {
		r.logger.Info("method finished",
			zap.String("method", res.Method),
			zap.Int("edges", res.Graph.EdgeCount()),
			zap.Duration("elapsed", res.Elapsed))
	} else {
		r.logger.Warn("method failed", zap.String("method", res.Method), zap.Error(res.Err))
	}
	if r.hook != nil {
		r.hook(res)
	}

	return res
}

func failed(name string, cause error, elapsed time.Duration) MethodResult {
	return MethodResult{
		Method:  name,
		Status:  StatusFailed,
		Err:     fmt.Errorf("%s: %w: %w", name, ErrMethodFailure, cause),
		Elapsed: elapsed,
	}
}

// validateGraph rejects nil graphs and graphs naming entities outside m.
func validateGraph(g *network.Graph, m *dataset.Matrix) error {
	if g == nil {
		return fmt.Errorf("method returned no graph")
	}
	for _, e := range g.Entities() {
		if !m.Has(e) {
			return fmt.Errorf("graph entity %q is not a matrix column", e)
		}
	}

	return nil
}
