package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/katalvlaran/netfuse/edgelist"
	"github.com/katalvlaran/netfuse/network"
)

// Sink receives every produced graph. scope is "" in single mode.
// Implementations must be safe for concurrent use; paths are disjoint per
// (scope, name).
type Sink interface {
	Put(ctx context.Context, scope, name string, g *network.Graph) error
}

// Loader is implemented by sinks that can return a graph stored by an
// earlier run; it enables resume.
type Loader interface {
	Load(scope, name string) (*network.Graph, bool, error)
}

// FileSink writes edge lists under Dir as <Dir>/[<scope>/]<name>.csv.gz.
type FileSink struct {
	Dir    string
	Scaled bool
}

// NewFileSink returns a FileSink rooted at dir.
func NewFileSink(dir string, scaled bool) *FileSink {
	return &FileSink{Dir: dir, Scaled: scaled}
}

// Put implements Sink.
func (s *FileSink) Put(ctx context.Context, scope, name string, g *network.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkNames(scope, name); err != nil {
		return err
	}

	return edgelist.WriteFile(edgelist.Path(s.Dir, scope, name), g, edgelist.WithScaled(s.Scaled))
}

// Load implements Loader. Scaled files are never reloaded because the raw
// weights are gone.
func (s *FileSink) Load(scope, name string) (*network.Graph, bool, error) {
	if err := checkNames(scope, name); err != nil {
		return nil, false, err
	}
	path := edgelist.Path(s.Dir, scope, name)
	if s.Scaled || !edgelist.Exists(path) {
		return nil, false, nil
	}
	g, err := edgelist.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("load: %w", err)
	}

	return g, true, nil
}

// checkNames keeps every file inside Dir; scope "" is the single-mode root.
func checkNames(scope, name string) error {
	if scope != "" {
		if err := edgelist.CheckName(scope); err != nil {
			return fmt.Errorf("scope: %w", err)
		}
	}
	if err := edgelist.CheckName(name); err != nil {
		return fmt.Errorf("name: %w", err)
	}

	return nil
}

// MemorySink keeps graphs in memory, keyed by scope then name.
type MemorySink struct {
	mu     sync.Mutex
	graphs map[string]map[string]*network.Graph
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{graphs: make(map[string]map[string]*network.Graph)}
}

// Put implements Sink.
func (s *MemorySink) Put(_ context.Context, scope, name string, g *network.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graphs[scope] == nil {
		s.graphs[scope] = make(map[string]*network.Graph)
	}
	s.graphs[scope][name] = g

	return nil
}

// Load implements Loader.
func (s *MemorySink) Load(scope, name string) (*network.Graph, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[scope][name]

	return g, ok, nil
}

// Scopes returns a copy of the stored graphs.
func (s *MemorySink) Scopes() map[string]map[string]*network.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]*network.Graph, len(s.graphs))
	for scope, byName := range s.graphs {
		cp := make(map[string]*network.Graph, len(byName))
		for n, g := range byName {
			cp[n] = g
		}
		out[scope] = cp
	}

	return out
}
