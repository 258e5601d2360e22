package table

import (
	"testing"
)

func numbers(vals ...float64) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = NewNumericValue(v)
	}
	return out
}

func strs(vals ...string) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = NewStringValue(v)
	}
	return out
}

// TestCloneIsIndependent verifies that mutating a clone never touches the original
func TestCloneIsIndependent(t *testing.T) {
	orig := New(Column{Name: "x", Kind: KindNumeric, Values: numbers(1, 2, 3)})
	clone := orig.Clone()

	clone.Columns[0].Values[0] = NewNumericValue(99)
	clone.Drop("x")

	if orig.NumCols() != 1 {
		t.Fatalf("original lost a column after clone mutation")
	}
	if got := orig.Columns[0].Values[0].AsFloat64(); got != 1 {
		t.Errorf("original value changed: got %v, want 1", got)
	}
}

// TestDuplicateRowDetection tests counting and removal of exact duplicate rows
func TestDuplicateRowDetection(t *testing.T) {
	tbl := New(
		Column{Name: "a", Kind: KindNumeric, Values: numbers(1, 2, 1, 1)},
		Column{Name: "b", Kind: KindText, Values: strs("x", "y", "x", "z")},
	)

	// Rows 0 and 2 are identical; row 3 shares column a only
	if got := tbl.DuplicateRowCount(); got != 1 {
		t.Errorf("DuplicateRowCount = %d, want 1", got)
	}

	removed := tbl.RemoveDuplicateRows()
	if removed != 1 {
		t.Errorf("RemoveDuplicateRows = %d, want 1", removed)
	}
	if tbl.NumRows() != 3 {
		t.Errorf("NumRows after dedup = %d, want 3", tbl.NumRows())
	}
	if tbl.DuplicateRowCount() != 0 {
		t.Error("duplicates remain after removal")
	}
}

// TestDuplicateDistinguishesTypes ensures "1" (text) and 1 (numeric) are not equal
func TestDuplicateDistinguishesTypes(t *testing.T) {
	tbl := New(Column{Name: "v", Kind: KindText, Values: []Value{
		NewStringValue("1"),
		NewNumericValue(1),
	}})
	if got := tbl.DuplicateRowCount(); got != 0 {
		t.Errorf("DuplicateRowCount = %d, want 0", got)
	}
}

// TestEmptyTableShape tests the degenerate zero-row table
func TestEmptyTableShape(t *testing.T) {
	tbl := New(
		Column{Name: "a", Kind: KindNumeric},
		Column{Name: "b", Kind: KindText},
	)
	if tbl.NumRows() != 0 || tbl.NumCols() != 2 {
		t.Errorf("Shape = %v, want [0 2]", tbl.Shape())
	}
	if tbl.DuplicateRowCount() != 0 {
		t.Error("empty table reported duplicates")
	}
}

func TestDropAndLookup(t *testing.T) {
	tbl := New(
		Column{Name: "keep", Kind: KindNumeric, Values: numbers(1)},
		Column{Name: "drop", Kind: KindNumeric, Values: numbers(2)},
	)
	if !tbl.Drop("drop") {
		t.Fatal("Drop returned false for existing column")
	}
	if tbl.Drop("drop") {
		t.Error("Drop returned true for absent column")
	}
	if tbl.HasColumn("drop") {
		t.Error("dropped column still present")
	}
	if tbl.Column("keep") == nil {
		t.Error("surviving column not found")
	}
}

func TestColumnAccessors(t *testing.T) {
	col := Column{Name: "v", Kind: KindNumeric, Values: []Value{
		NewNumericValue(1),
		NewMissingValue(),
		NewNumericValue(3),
		NewNumericValue(1),
	}}

	if got := col.NullCount(); got != 1 {
		t.Errorf("NullCount = %d, want 1", got)
	}
	if got := col.DistinctCount(); got != 2 {
		t.Errorf("DistinctCount = %d, want 2", got)
	}
	if got := len(col.Numeric()); got != 3 {
		t.Errorf("len(Numeric()) = %d, want 3", got)
	}
}

// TestEmptyStringIsMissing tests that empty strings load as missing values
func TestEmptyStringIsMissing(t *testing.T) {
	v := NewStringValue("")
	if !v.IsMissing {
		t.Error("empty string value should be missing")
	}
	if v.String() != "" {
		t.Errorf("missing value String() = %q, want empty", v.String())
	}
}

func TestSelectRows(t *testing.T) {
	tbl := New(Column{Name: "x", Kind: KindNumeric, Values: numbers(10, 20, 30, 40)})
	tbl.SelectRows([]int{0, 2})

	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", tbl.NumRows())
	}
	if got := tbl.Columns[0].Values[1].AsFloat64(); got != 30 {
		t.Errorf("row 1 = %v, want 30", got)
	}
}
