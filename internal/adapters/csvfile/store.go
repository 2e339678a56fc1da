package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/survival/internal/domain/table"
)

const utf8BOM = "\ufeff"

// Store reads and writes tables as comma-separated files with a header row.
type Store struct {
	comma      rune
	createDirs bool
}

// New creates a Store. Parent directories are created on write by default.
func New(opts ...Option) *Store {
	s := &Store{comma: ',', createDirs: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the training and test tables. Either source missing fails with
// an error matching ErrDataNotFound.
func (s *Store) Load(ctx context.Context, trainPath, testPath string) (train, test *table.Table, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	train, err = s.ReadTable(trainPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load training data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	test, err = s.ReadTable(testPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load test data: %w", err)
	}
	return train, test, nil
}

// ReadTable parses the file at path into a table.
func (s *Store) ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	t, err := s.Decode(f, path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Decode parses delimited text from r. The first record is the header. A
// column whose non-empty cells all parse as numbers is numeric, otherwise it
// holds strings. Empty cells are missing values. name labels errors.
func (s *Store) Decode(r io.Reader, name string) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = s.comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: empty file", ErrMalformedHeader, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedHeader, name, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if h == "" {
			return nil, fmt.Errorf("%w: %s: column %d has no name", ErrMalformedHeader, name, i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", ErrMalformedHeader, name, h)
		}
		seen[h] = struct{}{}
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRow, name, err)
		}
		if len(rec) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: %s:%d: %d fields, header has %d", ErrMalformedRow, name, line, len(rec), len(header))
		}
		records = append(records, rec)
	}

	schema := make(table.Schema, len(header))
	for j, h := range header {
		schema[j] = table.Column{Name: h, Kind: inferKind(records, j)}
	}
	t, err := table.New(schema)
	if err != nil {
		return nil, err
	}
	row := make([]table.Value, len(header))
	for _, rec := range records {
		for j, cell := range rec {
			row[j] = parseCell(cell, schema[j].Kind)
		}
		if err := t.Append(row...); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return t, nil
}

// WriteTable writes t to path with a header row, replacing any existing file.
func (s *Store) WriteTable(path string, t *table.Table) (err error) {
	if s.createDirs {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return s.Encode(f, t)
}

// Encode writes t to w as delimited text.
func (s *Store) Encode(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = s.comma
	if err := cw.Write(t.Schema().Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Schema()))
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			rec[j] = v.Text()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func inferKind(records [][]string, col int) table.Kind {
	for _, rec := range records {
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return table.KindString
		}
	}
	return table.KindNumeric
}

func parseCell(cell string, kind table.Kind) table.Value {
	if kind == table.KindString {
		if cell == "" {
			return table.Null(table.KindString)
		}
		return table.String(cell)
	}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return table.Null(table.KindNumeric)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) {
		return table.Null(table.KindNumeric)
	}
	return table.Number(v)
}
