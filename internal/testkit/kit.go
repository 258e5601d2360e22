// Package testkit builds deterministic synthetic tables for tests
package testkit

import (
	"fmt"

	"gosift/domain/table"
)

// MessyTable builds a 100-row table with one issue per column: a unique
// integer id, a constant status, and a price column cycling through a
// narrow band with exactly two injected extremes, so Tukey fences flag
// precisely those two cells.
func MessyTable() *table.Table {
	n := 100

	ids := make([]table.Value, n)
	status := make([]table.Value, n)
	price := make([]table.Value, n)
	for i := 0; i < n; i++ {
		ids[i] = table.NewNumericValue(float64(i + 1))
		status[i] = table.NewStringValue("active")
		price[i] = table.NewNumericValue(float64(100 + i%10))
	}
	price[10] = table.NewNumericValue(1000)
	price[20] = table.NewNumericValue(-1000)

	return table.New(
		table.Column{Name: "id", Kind: table.KindNumeric, Values: ids},
		table.Column{Name: "status", Kind: table.KindCategorical, Values: status},
		table.Column{Name: "price", Kind: table.KindNumeric, Values: price},
	)
}

// NumericLikeTextTable builds a table whose "amount" column stores
// numbers as strings, with a sprinkle of genuine text.
func NumericLikeTextTable() *table.Table {
	n := 100
	vals := make([]table.Value, n)
	for i := 0; i < n; i++ {
		if i%10 == 9 {
			vals[i] = table.NewStringValue("pending")
			continue
		}
		vals[i] = table.NewStringValue(fmt.Sprintf("%d", 100+i))
	}
	return table.New(
		table.Column{Name: "amount", Kind: table.KindText, Values: vals},
	)
}

// DuplicatedTable builds a 110-row table where the last 10 rows repeat
// the first 10 exactly.
func DuplicatedTable() *table.Table {
	n := 100
	ids := make([]table.Value, 0, n+10)
	names := make([]table.Value, 0, n+10)
	for i := 0; i < n; i++ {
		ids = append(ids, table.NewNumericValue(float64(i+1)))
		names = append(names, table.NewStringValue(fmt.Sprintf("item_%d", i%20)))
	}
	for i := 0; i < 10; i++ {
		ids = append(ids, ids[i])
		names = append(names, names[i])
	}
	return table.New(
		table.Column{Name: "id", Kind: table.KindNumeric, Values: ids},
		table.Column{Name: "name", Kind: table.KindText, Values: names},
	)
}

// EmptyTable builds a zero-row table with three typed columns
func EmptyTable() *table.Table {
	return table.New(
		table.Column{Name: "a", Kind: table.KindNumeric, Values: nil},
		table.Column{Name: "b", Kind: table.KindText, Values: nil},
		table.Column{Name: "c", Kind: table.KindCategorical, Values: nil},
	)
}

// SparseTable builds a table with controlled missingness: "mostly_gone"
// is 90% missing, "half_gone" 50%, "slightly_gone" 20%, and "full" 0%.
func SparseTable() *table.Table {
	n := 100
	withMissing := func(missPct int) []table.Value {
		vals := make([]table.Value, n)
		for i := 0; i < n; i++ {
			if i < missPct {
				vals[i] = table.NewMissingValue()
			} else {
				vals[i] = table.NewNumericValue(float64(i))
			}
		}
		return vals
	}

	return table.New(
		table.Column{Name: "mostly_gone", Kind: table.KindNumeric, Values: withMissing(90)},
		table.Column{Name: "half_gone", Kind: table.KindNumeric, Values: withMissing(50)},
		table.Column{Name: "slightly_gone", Kind: table.KindNumeric, Values: withMissing(20)},
		table.Column{Name: "full", Kind: table.KindNumeric, Values: withMissing(0)},
	)
}

// SkewedColumn returns n strictly positive values with one heavy tail
// entry, for exercising log transforms.
func SkewedColumn(n int) []table.Value {
	vals := make([]table.Value, n)
	for i := 0; i < n; i++ {
		vals[i] = table.NewNumericValue(float64(1 + i%3))
	}
	if n > 0 {
		vals[n-1] = table.NewNumericValue(10000)
	}
	return vals
}
