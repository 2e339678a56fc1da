// Package encoding turns Record Tables into numeric Feature Matrices by
// projecting onto the input columns and one-hot expanding string columns.
package encoding

import (
	"fmt"
	"sort"

	"github.com/okian/survival/internal/domain/table"
)

// LabelVector holds binary outcomes aligned row-for-row with a training matrix.
type LabelVector []int

// Result is the output of Encode.
type Result struct {
	Train  *Matrix
	Labels LabelVector
	Test   *Matrix
}

// Encode extracts the label vector from train and one-hot encodes both tables
// independently. The column sets of the two matrices are not reconciled; see
// Reconcile.
func Encode(train, test *table.Table, features []string, label string) (*Result, error) {
	labels, err := ExtractLabels(train, label)
	if err != nil {
		return nil, fmt.Errorf("extract labels: %w", err)
	}
	xTrain, err := OneHot(train, features)
	if err != nil {
		return nil, fmt.Errorf("encode train: %w", err)
	}
	xTest, err := OneHot(test, features)
	if err != nil {
		return nil, fmt.Errorf("encode test: %w", err)
	}
	return &Result{Train: xTrain, Labels: labels, Test: xTest}, nil
}

// ExtractLabels returns the named column as a 0/1 label vector in row order.
func ExtractLabels(t *table.Table, label string) (LabelVector, error) {
	values, err := t.Column(label)
	if err != nil {
		return nil, err
	}
	out := make(LabelVector, len(values))
	for i, v := range values {
		if v.IsNull() || v.Kind != table.KindNumeric || (v.Num != 0 && v.Num != 1) {
			return nil, fmt.Errorf("%w: column %q row %d value %q", ErrInvalidLabel, label, i+1, v.Text())
		}
		out[i] = int(v.Num)
	}
	return out, nil
}

// OneHot projects t onto features and expands every string column into one
// indicator column per distinct observed value, named <column>_<value>.
// Numeric columns come first in feature order, followed by the indicator
// columns of each string column in feature order, categories sorted.
func OneHot(t *table.Table, features []string) (*Matrix, error) {
	p, err := t.Project(features...)
	if err != nil {
		return nil, err
	}
	schema := p.Schema()

	type block struct {
		col        int
		categories map[string]int // category -> output column
	}
	var (
		layout  []ColumnSpec
		numeric []int
		blocks  []block
	)
	for j, c := range schema {
		if c.Kind == table.KindNumeric {
			numeric = append(numeric, j)
			layout = append(layout, ColumnSpec{Name: c.Name, Source: c.Name})
		}
	}
	for j, c := range schema {
		if c.Kind != table.KindString {
			continue
		}
		values, _ := p.Column(c.Name)
		b := block{col: j, categories: map[string]int{}}
		for _, cat := range categories(values) {
			b.categories[cat] = len(layout)
			layout = append(layout, ColumnSpec{
				Name:      c.Name + "_" + cat,
				Source:    c.Name,
				Category:  cat,
				Indicator: true,
			})
		}
		blocks = append(blocks, b)
	}

	rows, cols := p.Len(), len(layout)
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		row := p.Row(i)
		base := i * cols
		for k, j := range numeric {
			v := row[j]
			if v.IsNull() {
				return nil, fmt.Errorf("%w: column %q row %d", ErrMissingValue, schema[j].Name, i+1)
			}
			data[base+k] = v.Num
		}
		for _, b := range blocks {
			v := row[b.col]
			if v.IsNull() {
				continue
			}
			data[base+b.categories[v.Str]] = 1
		}
	}
	return newMatrix(rows, layout, data), nil
}

func categories(values []table.Value) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if _, ok := seen[v.Str]; !ok {
			seen[v.Str] = struct{}{}
			out = append(out, v.Str)
		}
	}
	sort.Strings(out)
	return out
}
