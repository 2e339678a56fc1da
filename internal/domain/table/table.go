// Package table implements the in-memory Record Table: an ordered sequence of
// rows over a typed schema of named columns.
package table

import (
	"fmt"
	"strconv"
)

// Kind is the value kind of a column.
type Kind int

// Column kinds.
const (
	KindNumeric Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single cell. A Value with Valid == false is missing.
type Value struct {
	Kind  Kind
	Num   float64
	Str   string
	Valid bool
}

// Number returns a present numeric value.
func Number(v float64) Value { return Value{Kind: KindNumeric, Num: v, Valid: true} }

// String returns a present string value.
func String(s string) Value { return Value{Kind: KindString, Str: s, Valid: true} }

// Null returns a missing value of the given kind.
func Null(kind Kind) Value { return Value{Kind: kind} }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return !v.Valid }

// Text renders the value the way it is written to delimited text files.
// Missing values render as the empty string.
func (v Value) Text() string {
	if !v.Valid {
		return ""
	}
	if v.Kind == KindNumeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Column names a column and fixes its kind.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered list of columns of a table.
type Schema []Column

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column.
func (s Schema) Index(name string) (int, bool) {
	for i, c := range s {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Table is an ordered collection of rows conforming to a schema.
type Table struct {
	schema Schema
	index  map[string]int
	rows   [][]Value
}

// New creates an empty table with the given schema.
func New(schema Schema) (*Table, error) {
	index := make(map[string]int, len(schema))
	for i, c := range schema {
		if _, ok := index[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		index[c.Name] = i
	}
	s := make(Schema, len(schema))
	copy(s, schema)
	return &Table{schema: s, index: index}, nil
}

// FromRows creates a table and appends every row.
func FromRows(schema Schema, rows ...[]Value) (*Table, error) {
	t, err := New(schema)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := t.Append(r...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Append adds a row. The row must match the schema width, and every present
// value must match its column kind.
func (t *Table) Append(row ...Value) error {
	if len(row) != len(t.schema) {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row), len(t.schema))
	}
	r := make([]Value, len(row))
	for i, v := range row {
		col := t.schema[i]
		if v.Valid && v.Kind != col.Kind {
			return fmt.Errorf("%w: column %q is %s, value is %s", ErrKindMismatch, col.Name, col.Kind, v.Kind)
		}
		v.Kind = col.Kind
		r[i] = v
	}
	t.rows = append(t.rows, r)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Schema returns a copy of the table schema.
func (t *Table) Schema() Schema {
	s := make(Schema, len(t.schema))
	copy(s, t.schema)
	return s
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return t.schema.Names() }

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require returns ErrColumnNotFound for the first name the table lacks.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
	}
	return nil
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.schema[i].Kind, nil
}

// Column returns a copy of the values of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]Value, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Project returns a new table holding only the named columns, in the given order.
func (t *Table) Project(names ...string) (*Table, error) {
	schema := make(Schema, len(names))
	idx := make([]int, len(names))
	for j, n := range names {
		i, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		schema[j] = t.schema[i]
		idx[j] = i
	}
	out, err := New(schema)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		nr := make([]Value, len(idx))
		for j, i := range idx {
			nr[j] = row[i]
		}
		out.rows[r] = nr
	}
	return out, nil
}
