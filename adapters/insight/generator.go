// Package insight summarizes a cleaned table into headline findings,
// pairwise correlations, and optional markdown/HTML report artifacts.
package insight

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
	apperrors "gosift/internal/errors"
)

// strongCorrelation is the absolute Pearson coefficient above which a
// pair is called out as a key insight.
const strongCorrelation = 0.7

// Generator distills a table into an InsightReport
type Generator struct {
	cfg          config.InsightConfig
	artifactsDir string
	datasetName  string
	logger       *internal.Logger
}

// New creates a Generator. artifactsDir and datasetName control where and
// under what prefix report artifacts are written.
func New(cfg config.InsightConfig, artifactsDir, datasetName string, logger *internal.Logger) *Generator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Generator{cfg: cfg, artifactsDir: artifactsDir, datasetName: datasetName, logger: logger}
}

// Generate computes summaries and correlations over tbl and, when
// configured, writes markdown and HTML report artifacts.
func (g *Generator) Generate(tbl *table.Table) (*report.InsightReport, error) {
	ir := &report.InsightReport{
		SummaryStatistics: map[string]report.NumericSummary{},
		Timestamp:         core.Now(),
	}

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if col.Kind != table.KindNumeric {
			continue
		}
		nums := col.Numeric()
		if len(nums) == 0 {
			continue
		}
		mean, _ := stats.Mean(nums)
		minV, _ := stats.Min(nums)
		maxV, _ := stats.Max(nums)
		median, _ := stats.Median(nums)
		q25, _ := stats.Percentile(nums, 25)
		q75, _ := stats.Percentile(nums, 75)
		std := 0.0
		if len(nums) > 1 {
			std, _ = stats.StandardDeviationSample(nums)
		}
		ir.SummaryStatistics[col.Name] = report.NumericSummary{
			Mean: mean, Std: std, Min: minV, Max: maxV,
			Median: median, Q25: q25, Q75: q75,
		}
	}

	if g.cfg.CorrelationAnalysis {
		ir.Correlations = g.correlations(tbl)
	}

	ir.KeyInsights = g.keyInsights(tbl, ir)
	if len(ir.Correlations) > 0 {
		ir.Recommendations = append(ir.Recommendations,
			"Inspect strongly correlated pairs for redundancy before modeling")
	}
	if len(ir.Recommendations) == 0 {
		ir.Recommendations = append(ir.Recommendations, "Dataset summarized; no modeling concerns surfaced")
	}

	if g.cfg.WriteArtifacts && g.artifactsDir != "" {
		written, err := g.writeArtifacts(tbl, ir)
		if err != nil {
			g.logger.Warn("Insight: failed to write artifacts: %v", err)
		}
		ir.ArtifactsWritten = written
	}

	g.logger.Info("Insight: %d summaries, %d correlation pair(s)",
		len(ir.SummaryStatistics), len(ir.Correlations))
	return ir, nil
}

// correlations computes Pearson coefficients for every pair of numeric
// columns over their jointly non-missing rows.
func (g *Generator) correlations(tbl *table.Table) []report.CorrelationPair {
	var numeric []*table.Column
	for i := range tbl.Columns {
		if tbl.Columns[i].Kind == table.KindNumeric {
			numeric = append(numeric, &tbl.Columns[i])
		}
	}

	var pairs []report.CorrelationPair
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			a, b := pairedValues(numeric[i], numeric[j])
			if len(a) < 3 {
				continue
			}
			r := stat.Correlation(a, b, nil)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, report.CorrelationPair{
				ColumnA:     numeric[i].Name,
				ColumnB:     numeric[j].Name,
				Correlation: math.Round(r*1000) / 1000,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
	})
	return pairs
}

func pairedValues(a, b *table.Column) ([]float64, []float64) {
	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for r := 0; r < n; r++ {
		if a.Values[r].IsNumeric() && b.Values[r].IsNumeric() {
			xs = append(xs, a.Values[r].AsFloat64())
			ys = append(ys, b.Values[r].AsFloat64())
		}
	}
	return xs, ys
}

func (g *Generator) keyInsights(tbl *table.Table, ir *report.InsightReport) []string {
	var insights []string
	insights = append(insights, fmt.Sprintf("Dataset has %d rows and %d columns", tbl.NumRows(), tbl.NumCols()))

	names := make([]string, 0, len(ir.SummaryStatistics))
	for name := range ir.SummaryStatistics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := ir.SummaryStatistics[name]
		if s.Std > 0 && s.Mean != 0 {
			cv := math.Abs(s.Std / s.Mean)
			if cv > 1 {
				insights = append(insights,
					fmt.Sprintf("'%s' is highly dispersed (std/mean %.2f)", name, cv))
			}
		}
	}

	for _, p := range ir.Correlations {
		if math.Abs(p.Correlation) >= strongCorrelation {
			insights = append(insights,
				fmt.Sprintf("Strong correlation between '%s' and '%s' (r=%.2f)",
					p.ColumnA, p.ColumnB, p.Correlation))
		}
	}
	return insights
}

// writeArtifacts renders the report as markdown and converts it to HTML
// with the same base name. It returns the paths written.
func (g *Generator) writeArtifacts(tbl *table.Table, ir *report.InsightReport) ([]string, error) {
	if err := os.MkdirAll(g.artifactsDir, 0o755); err != nil {
		return nil, apperrors.Wrapf(err, "create insight artifacts dir %s", g.artifactsDir)
	}

	md := g.renderMarkdown(tbl, ir)
	base := filepath.Join(g.artifactsDir, g.datasetName+"_insights")

	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return nil, apperrors.Wrapf(err, "write %s", mdPath)
	}
	written := []string{mdPath}

	htmlPath := base + ".html"
	html := markdown.ToHTML([]byte(md), nil, nil)
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return written, apperrors.Wrapf(err, "write %s", htmlPath)
	}
	return append(written, htmlPath), nil
}

func (g *Generator) renderMarkdown(tbl *table.Table, ir *report.InsightReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Insight Report: %s\n\n", g.datasetName)
	fmt.Fprintf(&b, "Generated %s\n\n", ir.Timestamp.Time().Format("2006-01-02 15:04:05"))

	b.WriteString("## Key Insights\n\n")
	for _, ins := range ir.KeyInsights {
		fmt.Fprintf(&b, "- %s\n", ins)
	}

	if len(ir.SummaryStatistics) > 0 {
		b.WriteString("\n## Numeric Summaries\n\n")
		b.WriteString("| Column | Mean | Std | Min | Median | Max |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		names := make([]string, 0, len(ir.SummaryStatistics))
		for name := range ir.SummaryStatistics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := ir.SummaryStatistics[name]
			fmt.Fprintf(&b, "| %s | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
				name, s.Mean, s.Std, s.Min, s.Median, s.Max)
		}
	}

	if len(ir.Correlations) > 0 {
		b.WriteString("\n## Correlations\n\n")
		b.WriteString("| Column A | Column B | r |\n")
		b.WriteString("|---|---|---|\n")
		for _, p := range ir.Correlations {
			fmt.Fprintf(&b, "| %s | %s | %.3f |\n", p.ColumnA, p.ColumnB, p.Correlation)
		}
	}

	if len(ir.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, rec := range ir.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	return b.String()
}
