package insight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosift/domain/table"
	"gosift/internal/config"
)

func linearTable() *table.Table {
	n := 30
	xs := make([]table.Value, n)
	ys := make([]table.Value, n)
	for i := 0; i < n; i++ {
		xs[i] = table.NewNumericValue(float64(i))
		ys[i] = table.NewNumericValue(float64(2 * i))
	}
	return table.New(
		table.Column{Name: "x", Kind: table.KindNumeric, Values: xs},
		table.Column{Name: "y", Kind: table.KindNumeric, Values: ys},
	)
}

func testGenerator(t *testing.T, writeArtifacts bool) *Generator {
	t.Helper()
	cfg := config.Default().Insight
	cfg.WriteArtifacts = writeArtifacts
	return New(cfg, t.TempDir(), "testdata", nil)
}

func TestGenerateSummaries(t *testing.T) {
	g := testGenerator(t, false)

	ir, err := g.Generate(linearTable())
	require.NoError(t, err)

	require.Contains(t, ir.SummaryStatistics, "x")
	s := ir.SummaryStatistics["x"]
	assert.InDelta(t, 14.5, s.Mean, 0.001)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 29.0, s.Max)
}

func TestGeneratePerfectCorrelation(t *testing.T) {
	g := testGenerator(t, false)

	ir, err := g.Generate(linearTable())
	require.NoError(t, err)

	require.Len(t, ir.Correlations, 1)
	p := ir.Correlations[0]
	assert.Equal(t, "x", p.ColumnA)
	assert.Equal(t, "y", p.ColumnB)
	assert.InDelta(t, 1.0, p.Correlation, 0.001)

	var strong bool
	for _, ins := range ir.KeyInsights {
		if strings.Contains(ins, "Strong correlation") {
			strong = true
		}
	}
	assert.True(t, strong, "r=1 must surface as a key insight")
}

func TestGenerateCorrelationDisabled(t *testing.T) {
	cfg := config.Default().Insight
	cfg.CorrelationAnalysis = false
	cfg.WriteArtifacts = false
	g := New(cfg, t.TempDir(), "testdata", nil)

	ir, err := g.Generate(linearTable())
	require.NoError(t, err)
	assert.Empty(t, ir.Correlations)
}

func TestGenerateWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default().Insight
	g := New(cfg, dir, "sales", nil)

	ir, err := g.Generate(linearTable())
	require.NoError(t, err)

	require.Len(t, ir.ArtifactsWritten, 2)
	mdPath := filepath.Join(dir, "sales_insights.md")
	htmlPath := filepath.Join(dir, "sales_insights.html")
	assert.Contains(t, ir.ArtifactsWritten, mdPath)
	assert.Contains(t, ir.ArtifactsWritten, htmlPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Insight Report: sales")
	assert.Contains(t, string(md), "| x |")

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
}

// TestGenerateTextOnlyTable: no numeric columns still yields a valid report
func TestGenerateTextOnlyTable(t *testing.T) {
	g := testGenerator(t, false)
	tbl := table.New(table.Column{Name: "s", Kind: table.KindText, Values: []table.Value{
		table.NewStringValue("a"),
		table.NewStringValue("b"),
	}})

	ir, err := g.Generate(tbl)
	require.NoError(t, err)

	assert.Empty(t, ir.SummaryStatistics)
	assert.Empty(t, ir.Correlations)
	require.NotEmpty(t, ir.KeyInsights)
	assert.Contains(t, ir.KeyInsights[0], "2 rows and 1 columns")
}
