package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosift/domain/table"
)

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.json")
	in := map[string]any{"name": "dataset", "score": 0.87}

	require.NoError(t, SaveJSON(path, in))

	var out map[string]any
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, "dataset", out["name"])
	assert.Equal(t, 0.87, out["score"])
}

func TestWriteTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "clean.csv")
	tbl := table.New(
		table.Column{Name: "id", Kind: table.KindNumeric, Values: []table.Value{
			table.NewNumericValue(1),
			table.NewNumericValue(2),
		}},
		table.Column{Name: "when", Kind: table.KindDatetime, Values: []table.Value{
			table.NewTimestampValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
			table.NewMissingValue(),
		}},
		table.Column{Name: "name", Kind: table.KindText, Values: []table.Value{
			table.NewStringValue("a"),
			table.NewStringValue("b,c"),
		}},
	)

	require.NoError(t, WriteTableCSV(path, tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(data)

	assert.Contains(t, got, "id,when,name\n")
	assert.Contains(t, got, "1,2024-01-15T00:00:00Z,a\n")
	// Missing renders empty; embedded comma is quoted
	assert.Contains(t, got, "2,,\"b,c\"\n")
}
