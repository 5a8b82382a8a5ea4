// pkg/model/metadata.go
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumn is returned when a table would carry the same column name twice
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrRaggedRow is returned when a row does not have one cell per column
	ErrRaggedRow = errors.New("row width does not match column count")
)

// Table is a rectangular, ordered sequence of rows over named, ordered columns
type Table struct {
	columns []string       // Column names in declared order
	index   map[string]int // Column name -> position
	rows    [][]Cell       // Each row has len(columns) cells
}

// NewTable creates an empty table over the given columns
func NewTable(columns []string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, name := range columns {
		if _, exists := t.index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, name)
	}
	return t, nil
}

// Empty returns a table with no columns and no rows
func Empty() *Table {
	t, _ := NewTable(nil)
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// ColumnIndex returns the position of a column by exact name
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table declares the column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow adds a row. The row must have exactly one cell per column.
func (t *Table) AppendRow(cells []Cell) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("%w: got %d cells, want %d", ErrRaggedRow, len(cells), len(t.columns))
	}
	t.rows = append(t.rows, append([]Cell(nil), cells...))
	return nil
}

// Row returns a copy of the i-th row
func (t *Table) Row(i int) []Cell {
	return append([]Cell(nil), t.rows[i]...)
}

// Cell returns the value at (row, column); ok is false if the column is unknown
func (t *Table) Cell(row int, column string) (Cell, bool) {
	i, ok := t.index[column]
	if !ok {
		return Cell{}, false
	}
	return t.rows[row][i], true
}

// SetCell replaces the value at (row, column)
func (t *Table) SetCell(row int, column string, c Cell) error {
	i, ok := t.index[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	t.rows[row][i] = c
	return nil
}

// RowText concatenates the text of every non-absent cell in the row, space separated
func (t *Table) RowText(row int) string {
	parts := make([]string, 0, len(t.columns))
	for _, c := range t.rows[row] {
		if !c.IsAbsent() {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, " ")
}

// Filter returns a new table with the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := t.shell()
	for i, row := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, append([]Cell(nil), row...))
		}
	}
	return out
}

// Select projects the table onto the given columns, in the given order
func (t *Table) Select(columns []string) (*Table, error) {
	out, err := NewTable(columns)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(columns))
	for i, name := range columns {
		pos, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		positions[i] = pos
	}
	for _, row := range t.rows {
		cells := make([]Cell, len(positions))
		for i, pos := range positions {
			cells[i] = row[pos]
		}
		out.rows = append(out.rows, cells)
	}
	return out, nil
}

// Clone returns a deep copy that shares nothing with the receiver
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// shell returns an empty table with the same columns
func (t *Table) shell() *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.columns)),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	return out
}
