package inspect

import (
	"math"
	"path/filepath"

	"github.com/montanaflynn/stats"

	"gosift/adapters/artifacts"
	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
)

// sampleSeed fixes the sampling order so repeated analysis of the same
// table is reproducible.
const sampleSeed = 42

// Inspector profiles a table and emits a QualityReport with human
// recommendations and machine-executable proposed actions.
type Inspector struct {
	cfg    config.InspectorConfig
	logger *internal.Logger
}

// New creates an Inspector with the given configuration
func New(cfg config.InspectorConfig, logger *internal.Logger) *Inspector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Inspector{cfg: cfg, logger: logger}
}

// Analyze profiles the table without mutating it. Empty-but-well-formed
// tables produce a degenerate report rather than an error.
func (a *Inspector) Analyze(tbl *table.Table) (*report.QualityReport, error) {
	a.logger.Info("Inspector: analyzing %d rows x %d columns", tbl.NumRows(), tbl.NumCols())

	// Core analysis
	missingValues := a.analyzeMissingValues(tbl)
	dataTypes := a.analyzeDataTypes(tbl)
	duplicateCount := tbl.DuplicateRowCount()
	outlierCount, outlierDetails := a.detectOutliers(tbl)
	columnStats := a.calculateColumnStatistics(tbl)

	// Enhanced analysis
	cardinality := a.analyzeCardinality(tbl)
	skewness := map[string]float64{}
	if a.cfg.Modules.Skewness {
		skewness = a.analyzeSkewness(tbl)
	}
	patterns := map[string]report.PatternProfile{}
	if a.cfg.Modules.Patterns {
		patterns = a.analyzePatterns(tbl)
	}
	issues := map[string]columnIssues{}
	if a.cfg.Modules.Consistency {
		issues = a.checkConsistency(tbl)
	}
	consistency := issueMessages(issues)
	qualityScores := a.calculateQualityScores(tbl, missingValues, cardinality, consistency)

	// Enrich column stats
	for name := range columnStats {
		cs := columnStats[name]
		cs.Cardinality = cardinality[name]
		if sk, ok := skewness[name]; ok {
			v := sk
			cs.Skewness = &v
		}
		if p, ok := patterns[name]; ok {
			pp := p
			cs.Patterns = &pp
		}
		cs.QualityScore = qualityScores[name]
		if od, ok := outlierDetails[name]; ok {
			d := od
			cs.Outliers = &d
		}
		columnStats[name] = cs
	}

	recommendations := a.generateRecommendations(
		tbl, missingValues, duplicateCount, outlierCount,
		cardinality, issues, qualityScores,
	)
	proposedActions := a.proposeActions(tbl, missingValues, issues, cardinality)

	overall := a.assessOverallQuality(tbl, missingValues, duplicateCount, outlierCount, qualityScores)

	qr := &report.QualityReport{
		OverallQuality:      overall,
		MissingValues:       missingValues,
		DataTypes:           dataTypes,
		DuplicateCount:      duplicateCount,
		OutlierCount:        outlierCount,
		ColumnStats:         columnStats,
		Recommendations:     recommendations,
		Timestamp:           core.Now(),
		CardinalityAnalysis: cardinality,
		SkewnessAnalysis:    skewness,
		PatternAnalysis:     patterns,
		ConsistencyIssues:   consistency,
		ColumnQualityScores: qualityScores,
		OutlierDetails:      outlierDetails,
		ProposedActions:     proposedActions,
	}

	if a.cfg.WriteArtifacts && a.cfg.ArtifactsDir != "" {
		base := filepath.Join(a.cfg.ArtifactsDir, a.cfg.DatasetName)
		if err := artifacts.SaveJSON(base+"_dq_report.json", qr); err != nil {
			a.logger.Warn("Inspector: failed to save quality report: %v", err)
		}
		if err := artifacts.SaveJSON(base+"_clean_plan.json", proposedActions); err != nil {
			a.logger.Warn("Inspector: failed to save clean plan: %v", err)
		}
	}

	a.logger.Info("Inspector complete. Overall quality = %s", overall)
	return qr, nil
}

func (a *Inspector) analyzeMissingValues(tbl *table.Table) map[string]float64 {
	out := make(map[string]float64, tbl.NumCols())
	n := tbl.NumRows()
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if n == 0 {
			out[col.Name] = 0.0
			continue
		}
		out[col.Name] = round2(float64(col.NullCount()) / float64(n) * 100)
	}
	return out
}

func (a *Inspector) analyzeDataTypes(tbl *table.Table) map[string]string {
	out := make(map[string]string, tbl.NumCols())
	for i := range tbl.Columns {
		out[tbl.Columns[i].Name] = string(tbl.Columns[i].Kind)
	}
	return out
}

// detectOutliers applies the classic Tukey fence per numeric column.
// Aggregation is configurable: "cell" sums per-column counts, "row"
// counts distinct rows touched by any column's outlier mask.
func (a *Inspector) detectOutliers(tbl *table.Table) (int, map[string]report.OutlierDetail) {
	details := make(map[string]report.OutlierDetail)
	outlierCount := 0
	rowIdx := make(map[int]struct{})
	n := tbl.NumRows()

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if col.Kind != table.KindNumeric {
			continue
		}
		nums := col.Numeric()
		if len(nums) < 4 {
			continue
		}

		q1, _ := stats.Percentile(nums, 25)
		q3, _ := stats.Percentile(nums, 75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}

		lower, upper := q1-1.5*iqr, q3+1.5*iqr
		colCount := 0
		for r, v := range col.Values {
			if !v.IsNumeric() {
				continue
			}
			f := v.AsFloat64()
			if f < lower || f > upper {
				colCount++
				if a.cfg.OutlierMethod != config.OutlierCountCell {
					rowIdx[r] = struct{}{}
				}
			}
		}

		if a.cfg.OutlierMethod == config.OutlierCountCell {
			outlierCount += colCount
		}

		details[col.Name] = report.OutlierDetail{
			Count:      colCount,
			Percentage: round2(float64(colCount) / float64(n) * 100),
			LowerBound: lower,
			UpperBound: upper,
			Q1:         q1,
			Q3:         q3,
			IQR:        iqr,
		}
	}

	if a.cfg.OutlierMethod != config.OutlierCountCell {
		outlierCount = len(rowIdx)
	}
	return outlierCount, details
}

func (a *Inspector) calculateColumnStatistics(tbl *table.Table) map[string]report.ColumnStats {
	out := make(map[string]report.ColumnStats, tbl.NumCols())
	n := tbl.NumRows()

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		nullCount := col.NullCount()
		cs := report.ColumnStats{
			Dtype:        string(col.Kind),
			NonNullCount: n - nullCount,
			NullCount:    nullCount,
			UniqueCount:  col.DistinctCount(),
			MissingPct:   round2(float64(nullCount) / float64(maxInt(n, 1)) * 100),
		}

		if col.Kind == table.KindNumeric {
			nums := col.Numeric()
			if len(nums) > 0 {
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
				cs.Numeric = &report.NumericSummary{
					Mean:   mean,
					Std:    std,
					Min:    minV,
					Max:    maxV,
					Median: median,
					Q25:    q25,
					Q75:    q75,
				}
			}
		} else if col.Kind.IsStringLike() {
			strs := col.Strings()
			if len(strs) > 0 {
				mode, freq := mostCommon(strs)
				totalLen := 0
				minLen, maxLen := len(strs[0]), len(strs[0])
				for _, s := range strs {
					totalLen += len(s)
					if len(s) < minLen {
						minLen = len(s)
					}
					if len(s) > maxLen {
						maxLen = len(s)
					}
				}
				cs.Text = &report.TextSummary{
					MostCommon:     mode,
					MostCommonFreq: freq,
					AvgLength:      round2(float64(totalLen) / float64(len(strs))),
					MinLength:      minLen,
					MaxLength:      maxLen,
				}
			}
		}

		out[col.Name] = cs
	}
	return out
}

// analyzeCardinality classifies each column's distinct-value profile.
// constant iff distinct <= 1; unique when every non-null value is
// distinct; otherwise ratio bands against the configured thresholds.
func (a *Inspector) analyzeCardinality(tbl *table.Table) map[string]report.Cardinality {
	out := make(map[string]report.Cardinality, tbl.NumCols())
	n := tbl.NumRows()
	lo := a.cfg.Thresholds.CardinalityLowRatio
	hi := a.cfg.Thresholds.CardinalityHighRatio

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if n == 0 {
			out[col.Name] = report.CardinalityConstant
			continue
		}
		distinct := col.DistinctCount()
		nonNull := n - col.NullCount()
		ratio := float64(distinct) / float64(n)
		switch {
		case distinct <= 1:
			out[col.Name] = report.CardinalityConstant
		case distinct == nonNull && nonNull > 1:
			out[col.Name] = report.CardinalityUnique
		case ratio < lo:
			out[col.Name] = report.CardinalityLow
		case ratio < 0.50:
			out[col.Name] = report.CardinalityMedium
		case ratio < hi:
			out[col.Name] = report.CardinalityHigh
		default:
			out[col.Name] = report.CardinalityUnique
		}
	}
	return out
}

// analyzeSkewness computes the adjusted Fisher-Pearson coefficient for
// numeric columns with more than two values and nonzero spread.
func (a *Inspector) analyzeSkewness(tbl *table.Table) map[string]float64 {
	out := make(map[string]float64)
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if col.Kind != table.KindNumeric {
			continue
		}
		nums := col.Numeric()
		if len(nums) <= 2 {
			continue
		}
		mean, _ := stats.Mean(nums)
		std, _ := stats.StandardDeviationSample(nums)
		if std == 0 {
			continue
		}

		n := float64(len(nums))
		sumCubed := 0.0
		for _, x := range nums {
			d := (x - mean) / std
			sumCubed += d * d * d
		}
		skew := n / ((n - 1) * (n - 2)) * sumCubed
		if math.IsNaN(skew) || math.IsInf(skew, 0) {
			continue
		}
		out[col.Name] = round3(skew)
	}
	return out
}

// assessOverallQuality maps aggregate health into one of four bands
func (a *Inspector) assessOverallQuality(
	tbl *table.Table,
	missingValues map[string]float64,
	duplicateCount, outlierCount int,
	qualityScores map[string]float64,
) report.OverallQuality {
	avgMissing := meanOf(missingValues)
	totalRows := maxInt(tbl.NumRows(), 1)
	dupPct := float64(duplicateCount) / float64(totalRows) * 100
	outlierPct := float64(outlierCount) / float64(totalRows) * 100
	avgQuality := 0.5
	if len(qualityScores) > 0 {
		avgQuality = meanOf(qualityScores)
	}

	switch {
	case avgMissing < 5 && dupPct < 1 && outlierPct < 1 && avgQuality > 0.8:
		return report.QualityExcellent
	case avgMissing < 15 && dupPct < 5 && outlierPct < 5 && avgQuality > 0.6:
		return report.QualityGood
	case avgMissing < 40 && dupPct < 20 && outlierPct < 15 && avgQuality > 0.4:
		return report.QualityFair
	default:
		return report.QualityPoor
	}
}

func meanOf(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}

func mostCommon(strs []string) (string, int) {
	freq := make(map[string]int, len(strs))
	for _, s := range strs {
		freq[s]++
	}
	best, bestCount := "", 0
	for _, s := range strs { // iterate in column order for determinism
		if freq[s] > bestCount {
			best, bestCount = s, freq[s]
		}
	}
	return best, bestCount
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
