// Package feature derives new columns from a cleaned table: calendar
// parts from datetime columns, log transforms for skewed positive
// numerics, and frequency encodings for bounded categoricals.
package feature

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
)

// skewCutoff is the absolute skewness above which a positive numeric
// column gets a log1p companion.
const skewCutoff = 1.0

// Engineer derives new feature columns without mutating the input
type Engineer struct {
	cfg    config.FeatureConfig
	logger *internal.Logger
}

// New creates an Engineer with the given configuration
func New(cfg config.FeatureConfig, logger *internal.Logger) *Engineer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engineer{cfg: cfg, logger: logger}
}

// Transform returns a copy of tbl with derived columns appended, plus a
// report describing every feature created.
func (e *Engineer) Transform(tbl *table.Table) (*table.Table, *report.FeatureReport, error) {
	out := tbl.Clone()
	fr := &report.FeatureReport{
		OriginalFeatures: tbl.NumCols(),
		FeaturesCreated:  map[string]string{},
		Timestamp:        core.Now(),
	}

	// Snapshot the original columns; appending while iterating would
	// re-derive features from derived columns.
	originals := make([]table.Column, len(out.Columns))
	copy(originals, out.Columns)

	for i := range originals {
		col := &originals[i]
		switch {
		case col.Kind == table.KindDatetime && e.cfg.DatetimeFeatures:
			e.expandDatetime(out, col, fr)
		case col.Kind == table.KindNumeric && e.cfg.NumericFeatures:
			e.logTransform(out, col, fr)
		case col.Kind.IsStringLike() && e.cfg.CategoricalFeatures:
			e.frequencyEncode(out, col, fr)
		}
	}

	fr.NewFeatures = len(fr.FeaturesCreated)
	fr.TotalFeatures = out.NumCols()
	if fr.NewFeatures == 0 {
		fr.Recommendations = append(fr.Recommendations, "No derivable features found; table passed through unchanged")
	} else {
		fr.Recommendations = append(fr.Recommendations,
			fmt.Sprintf("Created %d feature(s); review before modeling", fr.NewFeatures))
	}

	e.logger.Info("Feature: %d -> %d columns", fr.OriginalFeatures, fr.TotalFeatures)
	return out, fr, nil
}

// expandDatetime appends year, month, day and dayofweek columns
func (e *Engineer) expandDatetime(out *table.Table, col *table.Column, fr *report.FeatureReport) {
	parts := []struct {
		suffix  string
		extract func(v table.Value) float64
	}{
		{"year", func(v table.Value) float64 { return float64(v.TimestampVal.Year()) }},
		{"month", func(v table.Value) float64 { return float64(v.TimestampVal.Month()) }},
		{"day", func(v table.Value) float64 { return float64(v.TimestampVal.Day()) }},
		{"dayofweek", func(v table.Value) float64 { return float64(v.TimestampVal.Weekday()) }},
	}

	for _, p := range parts {
		name := col.Name + "_" + p.suffix
		if out.HasColumn(name) {
			continue
		}
		vals := make([]table.Value, len(col.Values))
		for i, v := range col.Values {
			if !v.IsTimestamp() {
				vals[i] = table.NewMissingValue()
				continue
			}
			vals[i] = table.NewNumericValue(p.extract(v))
		}
		out.Columns = append(out.Columns, table.Column{Name: name, Kind: table.KindNumeric, Values: vals})
		fr.FeaturesCreated[name] = fmt.Sprintf("%s extracted from '%s'", p.suffix, col.Name)
	}
	fr.TransformationsApplied = append(fr.TransformationsApplied,
		fmt.Sprintf("Expanded datetime column '%s'", col.Name))
}

// logTransform appends a log1p companion for strictly non-negative
// columns with strong skew.
func (e *Engineer) logTransform(out *table.Table, col *table.Column, fr *report.FeatureReport) {
	nums := col.Numeric()
	if len(nums) <= 2 {
		return
	}
	minV, _ := stats.Min(nums)
	if minV < 0 {
		return
	}
	skew := sampleSkewness(nums)
	if math.Abs(skew) <= skewCutoff {
		return
	}

	name := col.Name + "_log1p"
	if out.HasColumn(name) {
		return
	}
	vals := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if !v.IsNumeric() {
			vals[i] = table.NewMissingValue()
			continue
		}
		vals[i] = table.NewNumericValue(math.Log1p(v.AsFloat64()))
	}
	out.Columns = append(out.Columns, table.Column{Name: name, Kind: table.KindNumeric, Values: vals})
	fr.FeaturesCreated[name] = fmt.Sprintf("log1p of skewed column '%s' (skew %.2f)", col.Name, skew)
	fr.TransformationsApplied = append(fr.TransformationsApplied,
		fmt.Sprintf("Log-transformed '%s'", col.Name))
}

// frequencyEncode appends a count encoding for categoricals whose
// distinct count stays within the configured bound.
func (e *Engineer) frequencyEncode(out *table.Table, col *table.Column, fr *report.FeatureReport) {
	distinct := col.DistinctCount()
	if distinct == 0 || distinct > e.cfg.MaxCategoricalUnique {
		return
	}

	name := col.Name + "_freq"
	if out.HasColumn(name) {
		return
	}
	freq := map[string]int{}
	for _, v := range col.Values {
		if !v.IsMissing {
			freq[v.String()]++
		}
	}
	vals := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing {
			vals[i] = table.NewMissingValue()
			continue
		}
		vals[i] = table.NewNumericValue(float64(freq[v.String()]))
	}
	out.Columns = append(out.Columns, table.Column{Name: name, Kind: table.KindNumeric, Values: vals})
	fr.FeaturesCreated[name] = fmt.Sprintf("frequency encoding of '%s' (%d categories)", col.Name, distinct)
	fr.TransformationsApplied = append(fr.TransformationsApplied,
		fmt.Sprintf("Frequency-encoded '%s'", col.Name))
}

// sampleSkewness is the adjusted Fisher-Pearson coefficient
func sampleSkewness(nums []float64) float64 {
	mean, _ := stats.Mean(nums)
	std, _ := stats.StandardDeviationSample(nums)
	if std == 0 {
		return 0
	}
	n := float64(len(nums))
	sumCubed := 0.0
	for _, x := range nums {
		d := (x - mean) / std
		sumCubed += d * d * d
	}
	skew := n / ((n - 1) * (n - 2)) * sumCubed
	if math.IsNaN(skew) || math.IsInf(skew, 0) {
		return 0
	}
	return skew
}
