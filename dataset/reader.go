package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// ErrDataFormat reports an input table the pipeline cannot use.
var ErrDataFormat = errors.New("dataset: malformed data")

// missingTokens are the cell spellings read as a missing value.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"N/A":  {},
}

// RawTable is a parsed but unprocessed table. Values[i][j] is NaN for a missing cell.
type RawTable struct {
	RowLabels []string
	Columns   []string
	Values    [][]float64
}

// ReadOptions controls table parsing.
type ReadOptions struct {
	// Delimiter separates fields; zero means tab.
	Delimiter rune
	// HeaderRow is the number of lines skipped before the header line.
	HeaderRow int
	// IndexColumn holds the row labels; -1 means none.
	IndexColumn int
}

// DefaultReadOptions returns tab-separated, header on the first line, labels in column 0.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Delimiter: '\t', HeaderRow: 0, IndexColumn: 0}
}

// ReadTable opens path, transparently decompressing .gz and .br files, and parses it.
func ReadTable(path string, opts ReadOptions) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %v: %w", path, err, ErrDataFormat)
		}
		defer gz.Close()
		r = gz
	case ".br":
		r = brotli.NewReader(f)
	}

	t, err := ParseTable(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// ParseTable parses a delimited table from r.
//
// The header may omit the index column's name (one field fewer than the data
// rows), as pandas writes it. Cells in missingTokens become NaN.
func ParseTable(r io.Reader, opts ReadOptions) (*RawTable, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	if opts.HeaderRow < 0 || opts.IndexColumn < -1 {
		return nil, fmt.Errorf("header row %d, index column %d: %w", opts.HeaderRow, opts.IndexColumn, ErrDataFormat)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %v: %w", err, ErrDataFormat)
	}
	if len(records) <= opts.HeaderRow {
		return nil, fmt.Errorf("no header line: %w", ErrDataFormat)
	}
	header := records[opts.HeaderRow]
	rows := records[opts.HeaderRow+1:]

	width := len(header)
	if len(rows) > 0 && opts.IndexColumn >= 0 && len(rows[0]) == width+1 {
		// Unnamed index column.
		header = append([]string{""}, header...)
		width++
	}
	if opts.IndexColumn >= width {
		return nil, fmt.Errorf("index column %d beyond %d fields: %w", opts.IndexColumn, width, ErrDataFormat)
	}

	t := &RawTable{}
	seen := make(map[string]struct{}, width)
	for j, name := range header {
		if j == opts.IndexColumn {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty column name at field %d: %w", j, ErrDataFormat)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", name, ErrDataFormat)
		}
		seen[name] = struct{}{}
		t.Columns = append(t.Columns, name)
	}

	for i, rec := range rows {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != width {
			return nil, fmt.Errorf("line %d has %d fields, want %d: %w", opts.HeaderRow+i+2, len(rec), width, ErrDataFormat)
		}
		values := make([]float64, 0, len(t.Columns))
		label := strconv.Itoa(len(t.RowLabels))
		for j, cell := range rec {
			if j == opts.IndexColumn {
				label = strings.TrimSpace(cell)
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", opts.HeaderRow+i+2, j+1, err)
			}
			values = append(values, v)
		}
		t.RowLabels = append(t.RowLabels, label)
		t.Values = append(t.Values, values)
	}

	return t, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if _, missing := missingTokens[cell]; missing {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-numeric cell %q: %w", cell, ErrDataFormat)
	}

	return v, nil
}
