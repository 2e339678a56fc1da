package encoding

import (
	"gonum.org/v1/gonum/mat"
)

var _ mat.Matrix = (*Matrix)(nil)

// ColumnSpec describes where a feature column came from.
type ColumnSpec struct {
	Name      string
	Source    string // original record column
	Category  string // category value, indicator columns only
	Indicator bool
}

// Matrix is a numeric Feature Matrix with named columns.
type Matrix struct {
	rows, cols int
	layout     []ColumnSpec
	dense      *mat.Dense // nil when rows or cols is zero
}

func newMatrix(rows int, layout []ColumnSpec, data []float64) *Matrix {
	m := &Matrix{rows: rows, cols: len(layout), layout: layout}
	if rows > 0 && len(layout) > 0 {
		m.dense = mat.NewDense(rows, len(layout), data)
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	if m.dense == nil {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.dense.At(i, j)
}

// T returns the transpose.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Columns returns the column names in order.
func (m *Matrix) Columns() []string {
	names := make([]string, len(m.layout))
	for i, c := range m.layout {
		names[i] = c.Name
	}
	return names
}

// Layout returns a copy of the column descriptions.
func (m *Matrix) Layout() []ColumnSpec {
	out := make([]ColumnSpec, len(m.layout))
	copy(out, m.layout)
	return out
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.cols)
	if m.dense != nil {
		mat.Row(out, i, m.dense)
	}
	return out
}

// Column returns a copy of the named column, or false when it is absent.
func (m *Matrix) Column(name string) ([]float64, bool) {
	j := m.index(name)
	if j < 0 {
		return nil, false
	}
	out := make([]float64, m.rows)
	if m.dense != nil {
		mat.Col(out, j, m.dense)
	}
	return out, true
}

// Dense returns the backing matrix, or nil for an empty matrix.
func (m *Matrix) Dense() *mat.Dense { return m.dense }

func (m *Matrix) index(name string) int {
	for j, c := range m.layout {
		if c.Name == name {
			return j
		}
	}
	return -1
}
