// Package frame provides the ordered-column table that the pipeline stages
// pass between each other, plus delimited-file input and output. Cells are
// strings; the empty string is the missing marker. Each stage owns the frame
// it produces and hands ownership to the next stage.
package frame

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Missing is the cell value marking an absent or unparseable field.
const Missing = ""

// Frame is an in-memory table with named, ordered columns.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates an empty frame with the given column names.
// Column names must be unique.
func New(cols []string) (*Frame, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; dup {
			return nil, eris.Wrapf(ErrSchemaViolation, "frame: duplicate column %q", c)
		}
		index[c] = i
	}
	return &Frame{cols: append([]string(nil), cols...), index: index}, nil
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Index returns the position of a column, or -1 if absent.
func (f *Frame) Index(col string) int {
	if i, ok := f.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Require returns ErrSchemaViolation naming the first missing column.
func (f *Frame) Require(cols ...string) error {
	for _, c := range cols {
		if !f.Has(c) {
			return eris.Wrapf(ErrSchemaViolation, "frame: required column %q not found (have %s)",
				c, strings.Join(f.cols, ", "))
		}
	}
	return nil
}

// Row returns the i-th row. The slice is owned by the frame.
func (f *Frame) Row(i int) []string { return f.rows[i] }

// Cell returns the value at row i, named column. Absent column yields Missing.
func (f *Frame) Cell(i int, col string) string {
	j := f.Index(col)
	if j < 0 {
		return Missing
	}
	return f.rows[i][j]
}

// SetCell overwrites the value at row i, named column.
func (f *Frame) SetCell(i int, col, value string) error {
	j := f.Index(col)
	if j < 0 {
		return eris.Wrapf(ErrSchemaViolation, "frame: set cell: column %q not found", col)
	}
	f.rows[i][j] = value
	return nil
}

// Col returns all values of a column in row order.
func (f *Frame) Col(col string) ([]string, error) {
	j := f.Index(col)
	if j < 0 {
		return nil, eris.Wrapf(ErrSchemaViolation, "frame: column %q not found", col)
	}
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[j]
	}
	return out, nil
}

// AppendRow adds a row. Short rows are padded with the missing marker,
// long rows rejected.
func (f *Frame) AppendRow(row []string) error {
	if len(row) > len(f.cols) {
		return eris.Wrapf(ErrSchemaViolation, "frame: row has %d fields, frame has %d columns",
			len(row), len(f.cols))
	}
	r := make([]string, len(f.cols))
	copy(r, row)
	f.rows = append(f.rows, r)
	return nil
}

// AddColumn appends a new column. values must match the row count, or be nil
// to fill with the missing marker.
func (f *Frame) AddColumn(col string, values []string) error {
	if f.Has(col) {
		return eris.Wrapf(ErrSchemaViolation, "frame: column %q already exists", col)
	}
	if values != nil && len(values) != len(f.rows) {
		return eris.Wrapf(ErrSchemaViolation, "frame: column %q has %d values for %d rows",
			col, len(values), len(f.rows))
	}
	f.index[col] = len(f.cols)
	f.cols = append(f.cols, col)
	for i := range f.rows {
		v := Missing
		if values != nil {
			v = values[i]
		}
		f.rows[i] = append(f.rows[i], v)
	}
	return nil
}

// Rename changes a column name in place.
func (f *Frame) Rename(old, new string) error {
	j := f.Index(old)
	if j < 0 {
		return eris.Wrapf(ErrSchemaViolation, "frame: rename: column %q not found", old)
	}
	if old == new {
		return nil
	}
	if f.Has(new) {
		return eris.Wrapf(ErrSchemaViolation, "frame: rename: column %q already exists", new)
	}
	delete(f.index, old)
	f.index[new] = j
	f.cols[j] = new
	return nil
}

// Drop removes the named columns. Absent names are ignored and reported back.
func (f *Frame) Drop(cols ...string) (removed []string) {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		if f.Has(c) {
			drop[c] = true
			removed = append(removed, c)
		}
	}
	if len(drop) == 0 {
		return nil
	}

	keep := make([]int, 0, len(f.cols))
	newCols := make([]string, 0, len(f.cols))
	for j, c := range f.cols {
		if !drop[c] {
			keep = append(keep, j)
			newCols = append(newCols, c)
		}
	}

	newIndex := make(map[string]int, len(newCols))
	for j, c := range newCols {
		newIndex[c] = j
	}
	for i, r := range f.rows {
		nr := make([]string, len(keep))
		for j, src := range keep {
			nr[j] = r[src]
		}
		f.rows[i] = nr
	}
	f.cols = newCols
	f.index = newIndex
	return removed
}

// Select returns a new frame holding only the named columns, in the given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	if err := f.Require(cols...); err != nil {
		return nil, err
	}
	out, err := New(cols)
	if err != nil {
		return nil, err
	}
	src := make([]int, len(cols))
	for j, c := range cols {
		src[j] = f.Index(c)
	}
	for _, r := range f.rows {
		nr := make([]string, len(cols))
		for j, s := range src {
			nr[j] = r[s]
		}
		out.rows = append(out.rows, nr)
	}
	return out, nil
}

// FilterRows returns a new frame with the rows for which keep returns true.
func (f *Frame) FilterRows(keep func(row []string) bool) *Frame {
	out := &Frame{cols: f.Columns(), index: make(map[string]int, len(f.cols))}
	for j, c := range out.cols {
		out.index[c] = j
	}
	for _, r := range f.rows {
		if keep(r) {
			out.rows = append(out.rows, append([]string(nil), r...))
		}
	}
	return out
}

// NormalizeHeader renames the column at position j to name when the source
// left it unlabeled. Exports from pandas-style tools ship the row index as a
// first column named "" or "Unnamed: 0"; the device feature source does
// exactly this with the device identifier.
func (f *Frame) NormalizeHeader(j int, name string) bool {
	if j < 0 || j >= len(f.cols) {
		return false
	}
	c := f.cols[j]
	if c != "" && !strings.HasPrefix(c, "Unnamed:") {
		return false
	}
	if f.Has(name) {
		return false
	}
	delete(f.index, c)
	f.cols[j] = name
	f.index[name] = j
	return true
}
