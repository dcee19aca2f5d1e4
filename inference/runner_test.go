package inference_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/semaphore"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/inference"
	"github.com/katalvlaran/netfuse/matrix"
	"github.com/katalvlaran/netfuse/network"
)

// waveMatrix returns 40 samples of four entities: g0 and g1 nearly collinear,
// g2 and g3 exactly uncorrelated with everything else.
func waveMatrix(t *testing.T) *dataset.Matrix {
	t.Helper()
	const n = 40
	wave := func(f float64, s int, fn func(float64) float64) float64 {
		return fn(2 * math.Pi * f * float64(s) / n)
	}
	data := make([]float64, 0, n*4)
	samples := make([]string, n)
	for s := 0; s < n; s++ {
		samples[s] = fmt.Sprintf("s%d", s)
		g0 := wave(1, s, math.Sin)
		data = append(data,
			g0,
			g0+0.1*wave(5, s, math.Sin),
			wave(2, s, math.Sin),
			wave(3, s, math.Cos),
		)
	}
	d, err := matrix.NewDenseFrom(n, 4, data)
	require.NoError(t, err)
	m, err := dataset.NewMatrix([]string{"g0", "g1", "g2", "g3"}, samples, d)
	require.NoError(t, err)

	return m
}

func constGraph(m *dataset.Matrix) (*network.Graph, error) {
	b, err := network.NewBuilder(m.Entities())
	if err != nil {
		return nil, err
	}
	ents := m.Entities()
	if err = b.SetWeight(ents[0], ents[1], 1); err != nil {
		return nil, err
	}

	return b.Build(), nil
}

func register(t *testing.T, r *inference.Registry, name string, fn func(*dataset.Matrix) (*network.Graph, error)) {
	t.Helper()
	require.NoError(t, r.Register(name, func(inference.Settings) inference.Inferencer {
		return inference.InferFunc{MethodName: name, Fn: fn}
	}))
}

func TestPearsonKeepsOnlySignificantEdges(t *testing.T) {
	m := waveMatrix(t)
	inf, err := inference.Builtin().New("pearson", inference.DefaultSettings())
	require.NoError(t, err)

	g, err := inf.Infer(m)
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
	w, ok := g.Weight("g1", "g0")
	require.True(t, ok)
	assert.InDelta(t, 1/math.Sqrt(1.01), w, 1e-9)
}

func TestSpearmanMonotoneRelation(t *testing.T) {
	m := waveMatrix(t)
	d := m.Dense()
	for s := 0; s < d.Rows(); s++ {
		v, _ := d.At(s, 0)
		require.NoError(t, d.Set(s, 1, math.Exp(3*v)))
	}
	m2, err := dataset.NewMatrix(m.Entities(), m.Samples(), d)
	require.NoError(t, err)

	inf, err := inference.Builtin().New("spearman", inference.DefaultSettings())
	require.NoError(t, err)
	g, err := inf.Infer(m2)
	require.NoError(t, err)
	w, ok := g.Weight("g0", "g1")
	require.True(t, ok)
	assert.Greater(t, w, 0.99)
}

func TestCorrelationNeedsThreeSamples(t *testing.T) {
	d, err := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3, 5})
	require.NoError(t, err)
	m, err := dataset.NewMatrix([]string{"a", "b"}, []string{"s1", "s2"}, d)
	require.NoError(t, err)

	inf, err := inference.Builtin().New("pearson", inference.DefaultSettings())
	require.NoError(t, err)
	_, err = inf.Infer(m)
	assert.ErrorIs(t, err, inference.ErrTooFewSamples)
}

func TestBuiltinDefaultsRun(t *testing.T) {
	m := waveMatrix(t)
	r := inference.NewRunner(nil, inference.WithLogger(zaptest.NewLogger(t)))

	res, err := r.Run(context.Background(), m, nil)
	require.NoError(t, err)
	require.Len(t, res, len(inference.DefaultMethods))
	for i, mr := range res {
		assert.Equal(t, inference.DefaultMethods[i], mr.Method)
		require.True(t, mr.OK(), "%s: %v", mr.Method, mr.Err)
		assert.ElementsMatch(t, m.Entities(), mr.Graph.Entities())
		for _, e := range mr.Graph.Edges() {
			assert.NotEqual(t, e.A, e.B)
			w, ok := mr.Graph.Weight(e.B, e.A)
			assert.True(t, ok)
			assert.Equal(t, e.Weight, w)
		}
	}
	assert.True(t, res[0].Graph.HasEdge("g0", "g1"))
}

func TestPartialCorrelation(t *testing.T) {
	m := waveMatrix(t)
	r := inference.NewRunner(nil)
	res, err := r.Run(context.Background(), m, []string{"pcorr"})
	require.NoError(t, err)
	require.True(t, res[0].OK(), "%v", res[0].Err)
	w, ok := res[0].Graph.Weight("g0", "g1")
	require.True(t, ok)
	assert.Greater(t, w, 0.5)
}

func TestRunIsolatesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := inference.NewRegistry()
	register(t, reg, "ok", constGraph)
	register(t, reg, "boom", func(*dataset.Matrix) (*network.Graph, error) { return nil, errors.New("boom") })
	register(t, reg, "panic", func(*dataset.Matrix) (*network.Graph, error) { panic("bad input") })
	register(t, reg, "nil", func(*dataset.Matrix) (*network.Graph, error) { return nil, nil })
	register(t, reg, "foreign", func(*dataset.Matrix) (*network.Graph, error) {
		b, err := network.NewBuilder([]string{"g0", "zz"})
		if err != nil {
			return nil, err
		}

		return b.Build(), nil
	})

	r := inference.NewRunner(reg, inference.WithLogger(zap.New(core)))
	res, err := r.Run(context.Background(), waveMatrix(t), []string{"boom", "ok", "panic", "nil", "foreign"})
	require.NoError(t, err)
	require.Len(t, res, 5)

	assert.Equal(t, []string{"boom", "ok", "panic", "nil", "foreign"},
		[]string{res[0].Method, res[1].Method, res[2].Method, res[3].Method, res[4].Method})
	assert.True(t, res[1].OK())
	for _, i := range []int{0, 2, 3, 4} {
		assert.Equal(t, inference.StatusFailed, res[i].Status, res[i].Method)
		assert.ErrorIs(t, res[i].Err, inference.ErrMethodFailure)
		assert.Nil(t, res[i].Graph)
	}
	assert.Len(t, res.Succeeded(), 1)
	assert.Len(t, res.Failed(), 4)
	assert.Len(t, res.Graphs(), 1)
	assert.Equal(t, 4, logs.FilterMessage("method failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("method panicked").Len())
}

func TestRunUnknownMethodBeforeAnyWork(t *testing.T) {
	var calls atomic.Int32
	reg := inference.NewRegistry()
	register(t, reg, "ok", func(m *dataset.Matrix) (*network.Graph, error) {
		calls.Add(1)

		return constGraph(m)
	})

	_, err := inference.NewRunner(reg).Run(context.Background(), waveMatrix(t), []string{"ok", "nope", "also-nope"})
	require.ErrorIs(t, err, inference.ErrUnknownMethod)
	assert.Contains(t, err.Error(), "nope, also-nope")
	assert.Zero(t, calls.Load())
}

func TestResolve(t *testing.T) {
	reg := inference.Builtin()
	names, err := reg.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, inference.DefaultMethods, names)

	names, err = reg.Resolve([]string{"clr", "pearson", "clr"})
	require.NoError(t, err)
	assert.Equal(t, []string{"clr", "pearson"}, names)

	assert.ErrorIs(t, reg.Register("clr", func(inference.Settings) inference.Inferencer { return nil }),
		inference.ErrDuplicateMethod)
	assert.Contains(t, reg.Names(), "pcorr")
}

func TestRunHookAndWorkerBound(t *testing.T) {
	var (
		running, peak atomic.Int32
		mu            sync.Mutex
		hooked        []string
	)
	slow := func(m *dataset.Matrix) (*network.Graph, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)

		return constGraph(m)
	}
	reg := inference.NewRegistry()
	for _, n := range []string{"a", "b", "c", "d"} {
		register(t, reg, n, slow)
	}

	r := inference.NewRunner(reg,
		inference.WithWorkers(2),
		inference.WithResultHook(func(mr inference.MethodResult) {
			mu.Lock()
			hooked = append(hooked, mr.Method)
			mu.Unlock()
		}))
	res, err := r.Run(context.Background(), waveMatrix(t), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded(), 4)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, hooked)
}

func TestRunCancelledStartsNothing(t *testing.T) {
	var calls atomic.Int32
	reg := inference.NewRegistry()
	register(t, reg, "ok", func(m *dataset.Matrix) (*network.Graph, error) {
		calls.Add(1)

		return constGraph(m)
	})
	register(t, reg, "ok2", constGraph)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := inference.NewRunner(reg).Run(ctx, waveMatrix(t), []string{"ok", "ok2"})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res, 2)
	for _, mr := range res {
		assert.False(t, mr.OK())
		assert.ErrorIs(t, mr.Err, inference.ErrMethodFailure)
		assert.ErrorIs(t, mr.Err, context.Canceled)
	}
	assert.Zero(t, calls.Load())
}

func TestRunSharedSemaphore(t *testing.T) {
	sem := semaphore.NewWeighted(1)
	reg := inference.NewRegistry()
	register(t, reg, "ok", constGraph)
	m := waveMatrix(t)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := inference.NewRunner(reg, inference.WithSemaphore(sem)).
				Run(context.Background(), m, []string{"ok"})
			assert.NoError(t, err)
			assert.True(t, res[0].OK())
		}()
	}
	wg.Wait()
	assert.True(t, sem.TryAcquire(1), "all slots released")
}

func TestResumeLoadsStoredGraph(t *testing.T) {
	m := waveMatrix(t)
	stored, err := constGraph(m)
	require.NoError(t, err)

	var calls atomic.Int32
	reg := inference.NewRegistry()
	register(t, reg, "fresh", func(m *dataset.Matrix) (*network.Graph, error) {
		calls.Add(1)

		return constGraph(m)
	})
	register(t, reg, "cached", func(m *dataset.Matrix) (*network.Graph, error) {
		calls.Add(100)

		return constGraph(m)
	})

	loader := func(method string) (*network.Graph, bool, error) {
		if method == "cached" {
			return stored, true, nil
		}

		return nil, false, nil
	}
	r := inference.NewRunner(reg, inference.WithDecorator(func(name string, inf inference.Inferencer) inference.Inferencer {
		return inference.Resume(name, inf, loader)
	}))
	res, err := r.Run(context.Background(), m, []string{"fresh", "cached"})
	require.NoError(t, err)
	require.Len(t, res.Succeeded(), 2)
	assert.True(t, stored.Equal(res[1].Graph, 0))
	assert.Equal(t, int32(1), calls.Load())
}

func TestResumeExtendsStoredGraphToMatrixEntities(t *testing.T) {
	m := waveMatrix(t)
	b, err := network.NewBuilder([]string{"g1", "g0"})
	require.NoError(t, err)
	require.NoError(t, b.SetWeight("g0", "g1", 0.7))
	sparse := b.Build()

	foreign, err := network.NewBuilder([]string{"g0", "zz"})
	require.NoError(t, err)
	require.NoError(t, foreign.SetWeight("g0", "zz", 1))

	stored := map[string]*network.Graph{"sparse": sparse, "foreign": foreign.Build()}
	reg := inference.NewRegistry()
	register(t, reg, "sparse", constGraph)
	register(t, reg, "foreign", constGraph)
	r := inference.NewRunner(reg, inference.WithDecorator(func(name string, inf inference.Inferencer) inference.Inferencer {
		return inference.Resume(name, inf, func(method string) (*network.Graph, bool, error) {
			g, ok := stored[method]

			return g, ok, nil
		})
	}))
	res, err := r.Run(context.Background(), m, []string{"sparse", "foreign"})
	require.NoError(t, err)

	require.True(t, res[0].OK())
	g := res[0].Graph
	assert.Equal(t, m.Entities(), g.Entities())
	assert.Equal(t, 1, g.EdgeCount())
	w, ok := g.Weight("g1", "g0")
	require.True(t, ok)
	assert.Equal(t, 0.7, w)

	assert.False(t, res[1].OK())
	assert.ErrorIs(t, res[1].Err, network.ErrEntityNotFound)
}

func TestResumeLoadErrorFailsMethod(t *testing.T) {
	reg := inference.NewRegistry()
	register(t, reg, "x", constGraph)
	r := inference.NewRunner(reg, inference.WithDecorator(func(name string, inf inference.Inferencer) inference.Inferencer {
		return inference.Resume(name, inf, func(string) (*network.Graph, bool, error) {
			return nil, false, errors.New("corrupt file")
		})
	}))
	res, err := r.Run(context.Background(), waveMatrix(t), []string{"x"})
	require.NoError(t, err)
	assert.False(t, res[0].OK())
	assert.Contains(t, res[0].Err.Error(), "corrupt file")
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, inference.DefaultSettings().Validate())
	assert.ErrorIs(t, inference.Settings{Correction: inference.CorrectionBH, Alpha: 1}.Validate(), inference.ErrInvalidSettings)
	assert.ErrorIs(t, inference.Settings{Correction: "x", Alpha: 0.05}.Validate(), inference.ErrInvalidSettings)
}
