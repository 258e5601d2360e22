package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosift/domain/table"
	apperrors "gosift/internal/errors"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "data.csv", []byte("id,name,price,active\n1,widget,9.99,true\n2,gadget,19.50,false\n3,,5.00,true\n"))

	tbl, err := New(nil).Load(path)
	require.NoError(t, err)

	assert.Equal(t, [2]int{3, 4}, tbl.Shape())
	assert.Equal(t, table.KindNumeric, tbl.Column("id").Kind)
	assert.Equal(t, table.KindNumeric, tbl.Column("price").Kind)
	assert.Equal(t, table.KindBoolean, tbl.Column("active").Kind)
	assert.Equal(t, 1, tbl.Column("name").NullCount(), "empty cell loads as missing")
	assert.Equal(t, 9.99, tbl.Column("price").Values[0].AsFloat64())
}

func TestLoadCSVSemicolonDelimiter(t *testing.T) {
	path := writeFile(t, "data.csv", []byte("a;b\n1;x\n2;y\n"))

	tbl, err := New(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, tbl.Shape())
	assert.Equal(t, "x", tbl.Column("b").Values[0].AsString())
}

func TestLoadCSVTabDelimiter(t *testing.T) {
	path := writeFile(t, "data.csv", []byte("a\tb\n1\tx\n"))

	tbl, err := New(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumCols())
}

// TestLoadCSVLegacyEncoding: non-UTF-8 bytes decode via Windows-1252
func TestLoadCSVLegacyEncoding(t *testing.T) {
	// "café" with 0xE9 for é, invalid as UTF-8
	path := writeFile(t, "data.csv", []byte{'n', 'a', 'm', 'e', '\n', 'c', 'a', 'f', 0xE9, '\n'})

	tbl, err := New(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "café", tbl.Column("name").Values[0].AsString())
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := writeFile(t, "data.csv", []byte("  \n"))

	_, err := New(nil).Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyInput, apperrors.GetCode(err))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "data.parquet", []byte("whatever"))

	_, err := New(nil).Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "parquet", "parquet gets called out by name")

	_, err = New(nil).Load(writeFile(t, "data.avro", []byte("whatever")))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.GetCode(err))
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "data.json", []byte(`[
		{"id": 1, "name": "widget", "price": 9.99},
		{"id": 2, "name": "gadget"},
		{"id": 3, "name": null, "price": 5}
	]`))

	tbl, err := New(nil).Load(path)
	require.NoError(t, err)

	// Columns are the sorted union of keys
	assert.Equal(t, []string{"id", "name", "price"}, tbl.Names())
	assert.Equal(t, table.KindNumeric, tbl.Column("id").Kind)
	assert.True(t, tbl.Column("price").Values[1].IsMissing, "absent key loads as missing")
	assert.Equal(t, 1, tbl.Column("price").NullCount())
	assert.Equal(t, 1, tbl.Column("name").NullCount(), "JSON null loads as missing")
}

func TestLoadJSONEmptyArray(t *testing.T) {
	path := writeFile(t, "data.json", []byte(`[]`))

	_, err := New(nil).Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyInput, apperrors.GetCode(err))
}

func TestLoadJSONNotAnArray(t *testing.T) {
	path := writeFile(t, "data.json", []byte(`{"id": 1}`))

	_, err := New(nil).Load(path)
	assert.Error(t, err)
}

func TestInferColumnKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want table.Kind
	}{
		{"integers", []string{"1", "2", "3"}, table.KindNumeric},
		{"floats with blanks", []string{"1.5", "", "2.5"}, table.KindNumeric},
		{"booleans", []string{"true", "FALSE", "True"}, table.KindBoolean},
		{"dates", []string{"2024-01-01", "2024-06-15"}, table.KindDatetime},
		{"free text", []string{"alpha", "beta", "gamma"}, table.KindText},
		{"all blank", []string{"", "", ""}, table.KindText},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			col := inferColumn("c", tc.raw)
			assert.Equal(t, tc.want, col.Kind)
		})
	}
}

// TestInferCategorical: low-distinct repeated text reads as categorical
func TestInferCategorical(t *testing.T) {
	raw := make([]string, 100)
	for i := range raw {
		raw[i] = []string{"red", "green", "blue"}[i%3]
	}
	col := inferColumn("color", raw)
	assert.Equal(t, table.KindCategorical, col.Kind)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', sniffDelimiter("a,b,c\n1,2,3"))
	assert.Equal(t, ';', sniffDelimiter("a;b;c\n1;2;3"))
	assert.Equal(t, '\t', sniffDelimiter("a\tb\n1\t2"))
	assert.Equal(t, ',', sniffDelimiter("single\n1"), "defaults to comma")
}
