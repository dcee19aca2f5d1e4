package inference

import (
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/netfuse/dataset"
	"github.com/katalvlaran/netfuse/network"
)

// Sentinel errors.
var (
	// ErrUnknownMethod is returned when a requested method name is not registered.
	ErrUnknownMethod = errors.New("inference: unknown method")

	// ErrMethodFailure wraps the reason a single method produced no graph.
	ErrMethodFailure = errors.New("inference: method failed")

	// ErrInvalidSettings reports unusable Settings (unknown correction, alpha out of range).
	ErrInvalidSettings = errors.New("inference: invalid settings")

	// ErrTooFewSamples is returned by methods that need more observations.
	ErrTooFewSamples = errors.New("inference: too few samples")
)

// Inferencer produces one graph from a matrix. Implementations must not
// mutate the matrix and must be safe to call from any goroutine.
type Inferencer interface {
	Name() string
	Infer(m *dataset.Matrix) (*network.Graph, error)
}

// InferFunc adapts a plain function into an Inferencer.
type InferFunc struct {
	MethodName string
	Fn         func(m *dataset.Matrix) (*network.Graph, error)
}

// Name implements Inferencer.
func (f InferFunc) Name() string { return f.MethodName }

// Infer implements Inferencer.
func (f InferFunc) Infer(m *dataset.Matrix) (*network.Graph, error) { return f.Fn(m) }

// Settings carries the knobs shared by the built-in methods.
type Settings struct {
	// Correction is the multiple-testing correction for the correlation methods.
	Correction Correction
	// Alpha is the significance level of that correction.
	Alpha float64
}

// DefaultSettings returns b-h at alpha 0.05.
func DefaultSettings() Settings {
	return Settings{Correction: CorrectionBH, Alpha: 0.05}
}

// Validate checks the correction name and alpha range.
func (s Settings) Validate() error {
	if _, ok := corrections[s.Correction]; !ok {
		return fmt.Errorf("correction %q: %w", s.Correction, ErrInvalidSettings)
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return fmt.Errorf("alpha %v: %w", s.Alpha, ErrInvalidSettings)
	}

	return nil
}

// Status is the outcome of one unit.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}

	return "failed"
}

// MethodResult is the outcome of running one method.
// Graph is nil and Err wraps ErrMethodFailure when Status is StatusFailed.
type MethodResult struct {
	Method  string
	Graph   *network.Graph
	Status  Status
	Err     error
	Elapsed time.Duration
}

// OK reports whether the method produced a graph.
func (r MethodResult) OK() bool { return r.Status == StatusOK }

// Results lists method results in the order the methods were requested.
type Results []MethodResult

// Succeeded returns the results that produced a graph, in order.
func (rs Results) Succeeded() Results {
	var out Results
	for _, r := range rs {
		if r.OK() {
			out = append(out, r)
		}
	}

	return out
}

// Failed returns the failed results, in order.
func (rs Results) Failed() Results {
	var out Results
	for _, r := range rs {
		if !r.OK() {
			out = append(out, r)
		}
	}

	return out
}

// Graphs returns the graphs of the successful results, in order.
func (rs Results) Graphs() []*network.Graph {
	var out []*network.Graph
	for _, r := range rs {
		if r.OK() {
			out = append(out, r.Graph)
		}
	}

	return out
}
