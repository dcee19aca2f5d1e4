// Package edgelist reads and writes graphs as gzip-compressed CSV edge lists.
//
// Layout: header "interaction,e1,e2,intensity", one row per scored pair with
// e1 < e2 lexicographically and interaction = e1 + Symbol + e2. Rows are
// sorted by (e1, e2).
package edgelist

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/netfuse/network"
)

var (
	// ErrFormat reports an edge list that cannot be parsed.
	ErrFormat = errors.New("edgelist: malformed edge list")

	// ErrUnsafeName reports a scope or graph name that is not a single path element.
	ErrUnsafeName = errors.New("edgelist: name is not a plain file name")
)

const (
	// Symbol joins the two endpoints in the interaction column.
	Symbol = "<->"
	// Ext is the file extension of every edge list.
	Ext = ".csv.gz"
)

var header = []string{"interaction", "e1", "e2", "intensity"}

// Option configures Write and Read.
type Option func(*options)

type options struct {
	scaled bool
	symbol string
}

// WithScaled writes |w| / max|w| instead of the raw weight.
func WithScaled(on bool) Option {
	return func(o *options) { o.scaled = on }
}

// WithSymbol overrides the interaction separator.
func WithSymbol(s string) Option {
	return func(o *options) {
		if s != "" {
			o.symbol = s
		}
	}
}

func collect(opts []Option) options {
	o := options{symbol: Symbol}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Path returns <dir>/[<scope>/]<name>.csv.gz.
func Path(dir, scope, name string) string {
	if scope == "" {
		return filepath.Join(dir, name+Ext)
	}

	return filepath.Join(dir, scope, name+Ext)
}

// CheckName rejects names that would leave their directory or alias another
// name: separators, NUL, "." and "..".
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%q: %w", name, ErrUnsafeName)
	}

	return nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.Mode().IsRegular()
}

type row struct {
	e1, e2 string
	w      float64
}

func rows(g *network.Graph, scaled bool) []row {
	edges := g.Edges()
	out := make([]row, len(edges))
	var top float64
	for i, e := range edges {
		a, b := e.A, e.B
		if b < a {
			a, b = b, a
		}
		out[i] = row{e1: a, e2: b, w: e.Weight}
		top = math.Max(top, math.Abs(e.Weight))
	}
	if scaled {
		for i := range out {
			if top > 0 {
				out[i].w = math.Abs(out[i].w) / top
			} else {
				out[i].w = 0
			}
		}
	}
	sort.Slice(out, func(x, y int) bool {
		if out[x].e1 != out[y].e1 {
			return out[x].e1 < out[y].e1
		}

		return out[x].e2 < out[y].e2
	})

	return out
}

// Write writes g as a gzip CSV edge list to w.
func Write(w io.Writer, g *network.Graph, opts ...Option) error {
	if g == nil {
		return fmt.Errorf("write: nil graph")
	}
	o := collect(opts)
	zw := gzip.NewWriter(w)
	cw := csv.NewWriter(zw)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows(g, o.scaled) {
		rec := []string{r.e1 + o.symbol + r.e2, r.e1, r.e2, strconv.FormatFloat(r.w, 'g', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return zw.Close()
}

// WriteFile writes g to path, creating parent directories. The file is
// written under a temporary name and renamed into place.
func WriteFile(path string, g *network.Graph, opts ...Option) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err = Write(tmp, g, opts...); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}

// Read parses a gzip CSV edge list. The entity set is every name that
// appears in an edge, sorted. When the e1/e2 columns are absent the
// interaction column is split on the symbol.
func Read(r io.Reader, opts ...Option) (*network.Graph, error) {
	o := collect(opts)
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %v: %w", err, ErrFormat)
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v: %w", err, ErrFormat)
	}
	col := map[string]int{}
	for i, h := range head {
		col[strings.TrimSpace(h)] = i
	}
	wi, ok := col["intensity"]
	if !ok {
		return nil, fmt.Errorf("no intensity column: %w", ErrFormat)
	}
	i1, ok1 := col["e1"]
	i2, ok2 := col["e2"]
	ii, oki := col["interaction"]
	if !(ok1 && ok2) && !oki {
		return nil, fmt.Errorf("no e1/e2 or interaction columns: %w", ErrFormat)
	}

	var (
		parsed []row
		names  = map[string]struct{}{}
		line   = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, ErrFormat)
		}
		field := func(i int) (string, error) {
			if i >= len(rec) {
				return "", fmt.Errorf("line %d: short record: %w", line, ErrFormat)
			}

			return rec[i], nil
		}
		var a, b string
		if ok1 && ok2 {
			if a, err = field(i1); err != nil {
				return nil, err
			}
			if b, err = field(i2); err != nil {
				return nil, err
			}
		} else {
			inter, err := field(ii)
			if err != nil {
				return nil, err
			}
			parts := strings.SplitN(inter, o.symbol, 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("line %d: interaction %q lacks %q: %w", line, inter, o.symbol, ErrFormat)
			}
			a, b = parts[0], parts[1]
		}
		ws, err := field(wi)
		if err != nil {
			return nil, err
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(ws), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: intensity %q: %w", line, ws, ErrFormat)
		}
		parsed = append(parsed, row{e1: a, e2: b, w: w})
		names[a], names[b] = struct{}{}, struct{}{}
	}

	entities := make([]string, 0, len(names))
	for n := range names {
		entities = append(entities, n)
	}
	sort.Strings(entities)
	bld, err := network.NewBuilder(entities)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrFormat)
	}
	for _, r := range parsed {
		if err = bld.SetWeight(r.e1, r.e2, r.w); err != nil {
			return nil, fmt.Errorf("%s%s%s: %v: %w", r.e1, o.symbol, r.e2, err, ErrFormat)
		}
	}

	return bld.Build(), nil
}

// ReadFile reads the edge list at path.
func ReadFile(path string, opts ...Option) (*network.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}
