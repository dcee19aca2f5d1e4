package dataset

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/netfuse/matrix"
)

// Option configures Prepare.
type Option func(*prepareConfig)

type prepareConfig struct {
	samplesOnRows bool
	fillValue     float64
	standardize   bool
	logger        *zap.Logger
}

// WithSamplesOnColumns declares that the raw table has samples on columns
// (entities on rows); Prepare transposes it first.
func WithSamplesOnColumns() Option {
	return func(c *prepareConfig) { c.samplesOnRows = false }
}

// WithSamplesOnRows sets the orientation explicitly.
func WithSamplesOnRows(onRows bool) Option {
	return func(c *prepareConfig) { c.samplesOnRows = onRows }
}

// WithFillValue sets the value substituted for missing cells.
func WithFillValue(v float64) Option {
	return func(c *prepareConfig) { c.fillValue = v }
}

// WithStandardize toggles per-column standardization (default on).
func WithStandardize(on bool) Option {
	return func(c *prepareConfig) { c.standardize = on }
}

// WithLogger attaches a logger for dropped-column and fill counts.
func WithLogger(l *zap.Logger) Option {
	return func(c *prepareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Prepare converts a raw table into the analysis matrix.
//
// Implementation:
//   - Stage 1: orient so rows are samples.
//   - Stage 2: drop columns with every cell missing.
//   - Stage 3: ErrDataFormat on zero rows or zero columns.
//   - Stage 4: fill missing cells, then standardize when enabled.
func Prepare(raw *RawTable, opts ...Option) (*Matrix, error) {
	cfg := prepareConfig{samplesOnRows: true, standardize: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if math.IsNaN(cfg.fillValue) || math.IsInf(cfg.fillValue, 0) {
		return nil, fmt.Errorf("fill value %v: %w", cfg.fillValue, ErrDataFormat)
	}
	if raw == nil {
		return nil, fmt.Errorf("nil table: %w", ErrDataFormat)
	}

	// Stage 1.
	entities, samples, values := raw.Columns, raw.RowLabels, raw.Values
	if !cfg.samplesOnRows {
		entities, samples, values = raw.RowLabels, raw.Columns, transpose(raw.Values, len(raw.Columns))
	}
	for i, row := range values {
		if len(row) != len(entities) {
			return nil, fmt.Errorf("row %d has %d values for %d entities: %w", i, len(row), len(entities), ErrDataFormat)
		}
	}

	// Stage 2.
	keep := make([]int, 0, len(entities))
	for j := range entities {
		for i := range values {
			if !math.IsNaN(values[i][j]) {
				keep = append(keep, j)
				break
			}
		}
	}
	if dropped := len(entities) - len(keep); dropped > 0 {
		cfg.logger.Info("dropped all-missing entities", zap.Int("dropped", dropped))
	}

	// Stage 3.
	r, c := len(values), len(keep)
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%d samples x %d entities: %w", r, c, ErrDataFormat)
	}

	// Stage 4.
	flat := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for _, j := range keep {
			flat = append(flat, values[i][j])
		}
	}
	filled, nFilled, err := matrix.ReplaceInfNaN(flat, cfg.fillValue)
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	if nFilled > 0 {
		cfg.logger.Debug("filled missing cells", zap.Int("cells", nFilled), zap.Float64("value", cfg.fillValue))
	}
	dense, err := matrix.NewDenseFrom(r, c, filled)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %v: %w", err, ErrDataFormat)
	}

	names := make([]string, c)
	for k, j := range keep {
		names[k] = entities[j]
	}
	m, err := NewMatrix(names, samples, dense)
	if err != nil {
		return nil, err
	}
	if cfg.standardize {
		return m.Standardize()
	}

	return m, nil
}

func transpose(values [][]float64, width int) [][]float64 {
	out := make([][]float64, width)
	for j := range out {
		out[j] = make([]float64, len(values))
		for i := range values {
			if j < len(values[i]) {
				out[j][i] = values[i][j]
			} else {
				out[j][i] = math.NaN()
			}
		}
	}

	return out
}
