package table

import (
	"strings"
)

// Kind is the nominal class of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindText        Kind = "text"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
)

// IsStringLike reports whether the kind stores free or categorical text
func (k Kind) IsStringLike() bool {
	return k == KindText || k == KindCategorical
}

// Column is a named, typed sequence of values
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// NonNull returns the column's non-missing values in order
func (c *Column) NonNull() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsMissing {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of missing values
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing {
			n++
		}
	}
	return n
}

// DistinctCount returns the number of distinct non-missing values
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v.IsMissing {
			continue
		}
		seen[v.fingerprint()] = struct{}{}
	}
	return len(seen)
}

// Numeric extracts the non-missing numeric values of the column
func (c *Column) Numeric() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.IsNumeric() {
			out = append(out, v.AsFloat64())
		}
	}
	return out
}

// Strings extracts the non-missing string values of the column
func (c *Column) Strings() []string {
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsMissing {
			out = append(out, v.String())
		}
	}
	return out
}

// Table is an in-memory rectangular dataset: an ordered sequence of columns
type Table struct {
	Columns []Column `json:"columns"`
}

// New creates a table from columns; all columns must share the same length
func New(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// NumRows returns the row count (zero for an empty table)
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Shape returns (rows, cols)
func (t *Table) Shape() [2]int {
	return [2]int{t.NumRows(), t.NumCols()}
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns a pointer to the named column, or nil if absent
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Drop removes the named column in place; it reports whether a column was removed
func (t *Table) Drop(name string) bool {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy; mutating the copy never touches the original
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return &Table{Columns: cols}
}

// rowKey builds the duplicate-detection fingerprint for a row index
func (t *Table) rowKey(row int) string {
	var b strings.Builder
	for i := range t.Columns {
		b.WriteString(t.Columns[i].Values[row].fingerprint())
		b.WriteByte('\x1f')
	}
	return b.String()
}

// DuplicateRowCount counts rows that are exact copies of an earlier row
func (t *Table) DuplicateRowCount() int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for r := 0; r < t.NumRows(); r++ {
		key := t.rowKey(r)
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// RemoveDuplicateRows drops exact duplicate rows in place, keeping first
// occurrences; it returns the number of rows removed.
func (t *Table) RemoveDuplicateRows() int {
	keep := make([]int, 0, t.NumRows())
	seen := make(map[string]struct{}, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		key := t.rowKey(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, r)
	}
	removed := t.NumRows() - len(keep)
	if removed == 0 {
		return 0
	}
	t.SelectRows(keep)
	return removed
}

// SelectRows rewrites every column to contain only the given row indices, in order
func (t *Table) SelectRows(rows []int) {
	for i := range t.Columns {
		vals := make([]Value, len(rows))
		for j, r := range rows {
			vals[j] = t.Columns[i].Values[r]
		}
		t.Columns[i].Values = vals
	}
}
