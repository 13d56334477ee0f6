// Package table provides the rectangular dataset shared by every stage of
// the attribution pipeline.
//
// A Table is a list of named columns and rows of string cells. Cells are
// kept as text exactly as they were ingested; blank (whitespace-only) cells
// are treated as missing values. Operations never modify a Table in place:
// helpers that change data return a new Table.
package table

import (
	"fmt"
	"strings"
)

// Table is a rectangular dataset with named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a table with the given columns and rows.
// Rows are padded or truncated to the column count.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, fitRow(r, len(columns)))
	}
	return t
}

// Empty returns a table with the given columns and no rows.
func Empty(columns ...string) *Table {
	return New(columns, nil)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(column string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i for the named column.
// Unknown columns read as missing.
func (t *Table) Value(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 {
		return ""
	}
	return t.Rows[i][idx]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	return New(t.Columns, t.Rows)
}

// MapColumn returns a copy of the table with fn applied to every cell of the
// named column. The copy is returned unchanged if the column does not exist.
func (t *Table) MapColumn(column string, fn func(string) string) *Table {
	out := t.Clone()
	idx := out.Index(column)
	if idx < 0 {
		return out
	}
	for _, r := range out.Rows {
		r[idx] = fn(r[idx])
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i, r := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), r...))
		}
	}
	return out
}

// Head returns a copy holding at most n rows. n <= 0 keeps every row.
func (t *Table) Head(n int) *Table {
	if n <= 0 || n >= t.Len() {
		return t.Clone()
	}
	return New(t.Columns, t.Rows[:n])
}

// String renders a short description for logs.
func (t *Table) String() string {
	if t == nil {
		return "table<nil>"
	}
	return fmt.Sprintf("table<%d cols, %d rows>", len(t.Columns), len(t.Rows))
}

// IsMissing reports whether a cell holds no value.
func IsMissing(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Normalize trims and lowercases a cell; used for agent, assignee and name
// comparisons on both datasets.
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func fitRow(r []string, n int) []string {
	out := make([]string, n)
	copy(out, r)
	return out
}
