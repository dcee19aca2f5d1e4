package dataset

import (
	"fmt"

	"github.com/katalvlaran/netfuse/matrix"
)

// Matrix is the analysis matrix: rows are samples, columns are uniquely
// named entities. It is read-only after construction.
type Matrix struct {
	entities []string
	samples  []string
	index    map[string]int
	data     *matrix.Dense
}

// NewMatrix wraps a samples×entities Dense. samples may be nil.
func NewMatrix(entities, samples []string, data *matrix.Dense) (*Matrix, error) {
	if data == nil {
		return nil, fmt.Errorf("nil data: %w", ErrDataFormat)
	}
	if data.Cols() != len(entities) {
		return nil, fmt.Errorf("%d entities for %d columns: %w", len(entities), data.Cols(), ErrDataFormat)
	}
	if samples != nil && len(samples) != data.Rows() {
		return nil, fmt.Errorf("%d sample labels for %d rows: %w", len(samples), data.Rows(), ErrDataFormat)
	}
	index := make(map[string]int, len(entities))
	for j, e := range entities {
		if _, dup := index[e]; dup {
			return nil, fmt.Errorf("duplicate entity %q: %w", e, ErrDataFormat)
		}
		index[e] = j
	}

	m := &Matrix{
		entities: append([]string(nil), entities...),
		index:    index,
		data:     data,
	}
	if samples != nil {
		m.samples = append([]string(nil), samples...)
	}

	return m, nil
}

// Entities returns the column names in order.
func (m *Matrix) Entities() []string { return append([]string(nil), m.entities...) }

// Samples returns the row labels (nil when the table had none).
func (m *Matrix) Samples() []string { return append([]string(nil), m.samples...) }

// NumSamples returns the row count.
func (m *Matrix) NumSamples() int { return m.data.Rows() }

// NumEntities returns the column count.
func (m *Matrix) NumEntities() int { return len(m.entities) }

// Has reports whether entity is a column.
func (m *Matrix) Has(entity string) bool {
	_, ok := m.index[entity]

	return ok
}

// Dense returns a copy of the values.
func (m *Matrix) Dense() *matrix.Dense { return m.data.Clone().(*matrix.Dense) }

// Column returns a copy of one entity's values.
func (m *Matrix) Column(entity string) ([]float64, error) {
	j, ok := m.index[entity]
	if !ok {
		return nil, fmt.Errorf("entity %q: %w", entity, ErrDataFormat)
	}

	return m.data.Col(j)
}

// Select returns a matrix restricted to entities, in the given order.
func (m *Matrix) Select(entities []string) (*Matrix, error) {
	cols := make([]int, len(entities))
	for k, e := range entities {
		j, ok := m.index[e]
		if !ok {
			return nil, fmt.Errorf("entity %q: %w", e, ErrDataFormat)
		}
		cols[k] = j
	}
	rows := make([]int, m.data.Rows())
	for i := range rows {
		rows[i] = i
	}
	sub, err := m.data.Induced(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("select: %v: %w", err, ErrDataFormat)
	}

	return NewMatrix(entities, m.samples, sub)
}

// Standardize returns a z-scored copy (zero-variance columns unchanged).
func (m *Matrix) Standardize() (*Matrix, error) {
	z, _, _, err := matrix.Standardize(m.data)
	if err != nil {
		return nil, fmt.Errorf("standardize: %w", err)
	}

	return NewMatrix(m.entities, m.samples, z)
}
