package geneset

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrGMTFormat reports a GMT line that has no set name.
var ErrGMTFormat = errors.New("geneset: malformed GMT")

// GeneSet is a named, ordered list of entity names.
type GeneSet struct {
	Name        string
	Description string
	Entities    []string
}

// ReadGMT reads a GMT file; a .gz suffix is decompressed transparently.
func ReadGMT(path string) ([]GeneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %v: %w", path, err, ErrGMTFormat)
		}
		defer gz.Close()
		r = gz
	}

	sets, err := ParseGMT(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sets, nil
}

// ParseGMT parses "name<TAB>description<TAB>entity..." lines.
//
// Lines without a tab are split on whitespace. Blank lines are skipped.
// Entities repeated within a set keep their first position. When a name
// appears twice the later line replaces the earlier one in place.
func ParseGMT(r io.Reader) ([]GeneSet, error) {
	var (
		sets  []GeneSet
		index = make(map[string]int)
		sc    = bufio.NewScanner(r)
		line  int
	)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		var fields []string
		if strings.Contains(text, "\t") {
			fields = strings.Split(text, "\t")
		} else {
			fields = strings.Fields(text)
		}
		name := strings.TrimSpace(fields[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty set name: %w", line, ErrGMTFormat)
		}
		gs := GeneSet{Name: name}
		if len(fields) > 1 {
			gs.Description = strings.TrimSpace(fields[1])
		}
		seen := make(map[string]struct{})
		for _, f := range fields[min(2, len(fields)):] {
			e := strings.TrimSpace(f)
			if e == "" {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			gs.Entities = append(gs.Entities, e)
		}
		if at, dup := index[name]; dup {
			sets[at] = gs
			continue
		}
		index[name] = len(sets)
		sets = append(sets, gs)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return sets, nil
}

// WriteGMT writes sets in GMT format.
func WriteGMT(w io.Writer, sets []GeneSet) error {
	bw := bufio.NewWriter(w)
	for _, s := range sets {
		fields := append([]string{s.Name, s.Description}, s.Entities...)
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
