package inference

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultMethods is the method list used when none is requested.
var DefaultMethods = []string{"pearson", "spearman", "aracne", "mrnet", "clr"}

// Constructor builds an Inferencer from the shared settings.
type Constructor func(s Settings) Inferencer

// ErrDuplicateMethod is returned when registering a name twice.
var ErrDuplicateMethod = errors.New("inference: method already registered")

// Registry is a name → constructor lookup table.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Builtin returns a fresh registry holding the bundled methods.
func Builtin() *Registry {
	r := NewRegistry()
	_ = r.Register("pearson", func(s Settings) Inferencer { return newCorrelation("pearson", false, s) })
	_ = r.Register("spearman", func(s Settings) Inferencer { return newCorrelation("spearman", true, s) })
	_ = r.Register("clr", func(Settings) Inferencer { return InferFunc{MethodName: "clr", Fn: inferCLR} })
	_ = r.Register("aracne", func(Settings) Inferencer { return InferFunc{MethodName: "aracne", Fn: inferARACNE} })
	_ = r.Register("mrnet", func(Settings) Inferencer { return InferFunc{MethodName: "mrnet", Fn: inferMRNET} })
	_ = r.Register("pcorr", func(Settings) Inferencer { return InferFunc{MethodName: "pcorr", Fn: inferPartialCorrelation} })

	return r
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("register %q: %w", name, ErrInvalidSettings)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.ctors[name]; dup {
		return fmt.Errorf("%q: %w", name, ErrDuplicateMethod)
	}
	r.ctors[name] = ctor

	return nil
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[name]

	return ok
}

// New instantiates the method registered under name.
func (r *Registry) New(name string, s Settings) (Inferencer, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownMethod)
	}

	return ctor(s), nil
}

// Resolve applies the selection rules: empty → DefaultMethods, duplicates
// collapsed keeping the first occurrence. Every unknown name is reported in
// a single ErrUnknownMethod.
func (r *Registry) Resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		names = DefaultMethods
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	var unknown []string
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if !r.Has(n) {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, n)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(unknown, ", "), ErrUnknownMethod)
	}

	return out, nil
}
