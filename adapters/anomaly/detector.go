// Package anomaly flags unusual rows with an ensemble of cheap
// statistical detectors over the numeric columns.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
)

// madScale converts the median absolute deviation into a consistent
// estimator of the standard deviation under normality.
const madScale = 0.6745

// Detector scores rows with the configured methods and reports rows a
// majority of methods agree on.
type Detector struct {
	cfg    config.AnomalyConfig
	logger *internal.Logger
}

// New creates a Detector with the given configuration
func New(cfg config.AnomalyConfig, logger *internal.Logger) *Detector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Detect runs the ensemble over tbl. Tables below the minimum row count
// produce a degenerate report rather than an error.
func (d *Detector) Detect(tbl *table.Table) (*report.AnomalyReport, error) {
	n := tbl.NumRows()
	ar := &report.AnomalyReport{
		Method:            methodLabel(d.cfg.Methods),
		FeatureImportance: map[string]float64{},
		Timestamp:         core.Now(),
	}

	numericCols := numericColumns(tbl)
	if n < d.cfg.MinRows || len(numericCols) == 0 {
		ar.Recommendations = append(ar.Recommendations,
			fmt.Sprintf("Skipped: need at least %d rows and one numeric column", d.cfg.MinRows))
		return ar, nil
	}

	// votes[r] counts how many methods flagged row r; colHits tracks
	// which columns contributed to flagged cells for feature importance.
	votes := make([]int, n)
	colHits := map[string]int{}
	activeMethods := 0

	for _, method := range d.cfg.Methods {
		var flagged []rowColumn
		switch method {
		case "robust_zscore":
			flagged = d.robustZScore(numericCols)
		case "iqr":
			flagged = d.iqrFences(numericCols)
		default:
			d.logger.Warn("Anomaly: unknown method %q skipped", method)
			continue
		}
		activeMethods++

		seen := map[int]struct{}{}
		for _, fc := range flagged {
			colHits[fc.column]++
			if _, ok := seen[fc.row]; ok {
				continue
			}
			seen[fc.row] = struct{}{}
			votes[fc.row]++
		}
	}

	if activeMethods == 0 {
		ar.Recommendations = append(ar.Recommendations, "Skipped: no recognized detection methods configured")
		return ar, nil
	}

	// Majority vote: a row is anomalous when more than half of the
	// active methods flag it.
	quorum := activeMethods/2 + 1
	for r := 0; r < n; r++ {
		if votes[r] >= quorum {
			ar.AnomalyIndices = append(ar.AnomalyIndices, r)
		}
	}
	ar.AnomalyCount = len(ar.AnomalyIndices)
	ar.AnomalyPercentage = math.Round(float64(ar.AnomalyCount)/float64(n)*100*100) / 100

	totalHits := 0
	for _, c := range colHits {
		totalHits += c
	}
	if totalHits > 0 {
		for name, c := range colHits {
			ar.FeatureImportance[name] = math.Round(float64(c)/float64(totalHits)*1000) / 1000
		}
	}

	switch {
	case ar.AnomalyCount == 0:
		ar.Recommendations = append(ar.Recommendations, "No anomalous rows detected")
	case ar.AnomalyPercentage > 10:
		ar.Recommendations = append(ar.Recommendations,
			fmt.Sprintf("High anomaly rate (%.1f%%): review data collection before modeling", ar.AnomalyPercentage))
	default:
		ar.Recommendations = append(ar.Recommendations,
			fmt.Sprintf("Review %d anomalous row(s); top contributing column: %s",
				ar.AnomalyCount, topFeature(ar.FeatureImportance)))
	}

	d.logger.Info("Anomaly: %d/%d rows flagged by %d method(s)", ar.AnomalyCount, n, activeMethods)
	return ar, nil
}

// rowColumn identifies one flagged cell
type rowColumn struct {
	row    int
	column string
}

// robustZScore flags cells whose modified z-score, based on the median
// and the median absolute deviation, exceeds the configured threshold.
func (d *Detector) robustZScore(cols []*table.Column) []rowColumn {
	var flagged []rowColumn
	for _, col := range cols {
		nums := col.Numeric()
		if len(nums) < 3 {
			continue
		}
		median, _ := stats.Median(nums)
		devs := make([]float64, len(nums))
		for i, x := range nums {
			devs[i] = math.Abs(x - median)
		}
		mad, _ := stats.Median(devs)
		if mad == 0 {
			continue
		}
		for r, v := range col.Values {
			if !v.IsNumeric() {
				continue
			}
			z := madScale * (v.AsFloat64() - median) / mad
			if math.Abs(z) > d.cfg.Threshold {
				flagged = append(flagged, rowColumn{row: r, column: col.Name})
			}
		}
	}
	return flagged
}

// iqrFences flags cells outside the Tukey fence of their column
func (d *Detector) iqrFences(cols []*table.Column) []rowColumn {
	var flagged []rowColumn
	for _, col := range cols {
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
		for r, v := range col.Values {
			if !v.IsNumeric() {
				continue
			}
			f := v.AsFloat64()
			if f < lower || f > upper {
				flagged = append(flagged, rowColumn{row: r, column: col.Name})
			}
		}
	}
	return flagged
}

func numericColumns(tbl *table.Table) []*table.Column {
	var out []*table.Column
	for i := range tbl.Columns {
		if tbl.Columns[i].Kind == table.KindNumeric {
			out = append(out, &tbl.Columns[i])
		}
	}
	return out
}

func methodLabel(methods []string) string {
	if len(methods) == 0 {
		return "none"
	}
	label := methods[0]
	for _, m := range methods[1:] {
		label += "+" + m
	}
	return label
}

func topFeature(importance map[string]float64) string {
	if len(importance) == 0 {
		return "n/a"
	}
	names := make([]string, 0, len(importance))
	for name := range importance {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if importance[names[i]] != importance[names[j]] {
			return importance[names[i]] > importance[names[j]]
		}
		return names[i] < names[j]
	})
	return names[0]
}
