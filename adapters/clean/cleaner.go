// Package clean remediates tables. Given a quality report with proposed
// actions it executes the plan; without one it falls back to independent
// heuristics. The input table is never mutated.
package clean

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
)

// datetimeFormats are tried in order when parsing date-like text columns
var datetimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// Cleaner executes remediation plans produced by the Inspector
type Cleaner struct {
	cfg    config.CleanerConfig
	logger *internal.Logger
}

// New creates a Cleaner with the given configuration
func New(cfg config.CleanerConfig, logger *internal.Logger) *Cleaner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Cleaner{cfg: cfg, logger: logger}
}

// Clean returns a remediated copy of tbl plus a report of what changed.
// Actions referencing columns absent from the table are skipped silently,
// which makes re-running the same plan on already-clean data a no-op.
func (c *Cleaner) Clean(tbl *table.Table, qualityReport *report.QualityReport) (*table.Table, *report.CleaningReport, error) {
	out := tbl.Clone()
	cr := &report.CleaningReport{
		OriginalShape:        tbl.Shape(),
		MissingValuesHandled: map[string]string{},
		Timestamp:            core.Now(),
	}

	if removed := out.RemoveDuplicateRows(); removed > 0 {
		cr.RowsRemoved += removed
		cr.ActionsTaken = append(cr.ActionsTaken, fmt.Sprintf("Removed %d duplicate rows", removed))
	}

	if qualityReport != nil && len(qualityReport.ProposedActions) > 0 {
		c.logger.Info("Cleaner: executing %d proposed actions", len(qualityReport.ProposedActions))
		c.executePlan(out, qualityReport, cr)
	} else {
		c.logger.Info("Cleaner: no plan available, applying heuristics")
		c.applyHeuristics(out, cr)
	}

	c.handleOutliers(out, outlierBounds(out, qualityReport), cr)

	cr.CleanedShape = out.Shape()
	c.logger.Info("Cleaner complete: %v -> %v, %d actions",
		cr.OriginalShape, cr.CleanedShape, len(cr.ActionsTaken))
	return out, cr, nil
}

// executePlan runs the proposed actions in a fixed order regardless of
// their order in the plan: drops first (a dropped column needs no other
// fixes), then type conversions, then text normalization, then
// imputation, then informational flags.
func (c *Cleaner) executePlan(tbl *table.Table, qr *report.QualityReport, cr *report.CleaningReport) {
	plan := qr.ProposedActions

	dropped := map[string]bool{}
	for _, act := range plan {
		if act.Action != report.ActionDropColumn || dropped[act.Column] {
			continue
		}
		if tbl.Drop(act.Column) {
			dropped[act.Column] = true
			cr.ColumnsDropped = append(cr.ColumnsDropped, act.Column)
			cr.ActionsTaken = append(cr.ActionsTaken,
				fmt.Sprintf("Dropped column '%s' (%s)", act.Column, act.Reason))
		}
	}

	for _, act := range plan {
		if dropped[act.Column] {
			continue
		}
		col := tbl.Column(act.Column)
		if col == nil {
			continue
		}
		switch act.Action {
		case report.ActionCastNumeric:
			if castNumeric(col) {
				cr.ActionsTaken = append(cr.ActionsTaken,
					fmt.Sprintf("Converted '%s' to numeric", act.Column))
			}
		case report.ActionParseDatetime:
			if parseDatetime(col) {
				cr.ActionsTaken = append(cr.ActionsTaken,
					fmt.Sprintf("Parsed '%s' as datetime", act.Column))
			}
		}
	}

	for _, act := range plan {
		if dropped[act.Column] {
			continue
		}
		col := tbl.Column(act.Column)
		if col == nil {
			continue
		}
		switch act.Action {
		case report.ActionTrimWhitespace:
			if trimWhitespace(col) {
				cr.ActionsTaken = append(cr.ActionsTaken,
					fmt.Sprintf("Trimmed whitespace in '%s'", act.Column))
			}
		case report.ActionStandardizeCase:
			mode := act.Mode
			if mode == "" {
				mode = report.CaseLower
			}
			if standardizeCase(col, mode) {
				cr.ActionsTaken = append(cr.ActionsTaken,
					fmt.Sprintf("Standardized case in '%s' to %s", act.Column, mode))
			}
		}
	}

	for _, act := range plan {
		if act.Action != report.ActionImpute || dropped[act.Column] {
			continue
		}
		col := tbl.Column(act.Column)
		if col == nil || col.NullCount() == 0 {
			continue
		}
		strategy := act.Strategy
		if strategy == "" {
			strategy = report.ImputeSimple
		}
		method := impute(col, strategy)
		if method == "" {
			continue
		}
		cr.MissingValuesHandled[act.Column] = method
		cr.ActionsTaken = append(cr.ActionsTaken,
			fmt.Sprintf("Imputed missing values in '%s' using %s strategy", act.Column, strategy))
	}

	for _, act := range plan {
		if act.Action != report.ActionFlagID || dropped[act.Column] || !tbl.HasColumn(act.Column) {
			continue
		}
		cr.ActionsTaken = append(cr.ActionsTaken,
			fmt.Sprintf("Identified '%s' as potential ID column (unique values)", act.Column))
	}
}

// applyHeuristics is the fallback when no plan is available: drop
// columns past the missing threshold, then impute whatever is left.
func (c *Cleaner) applyHeuristics(tbl *table.Table, cr *report.CleaningReport) {
	n := tbl.NumRows()
	if n == 0 {
		return
	}

	var toDrop []string
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if float64(col.NullCount())/float64(n) > c.cfg.MissingThreshold {
			toDrop = append(toDrop, col.Name)
		}
	}
	for _, name := range toDrop {
		tbl.Drop(name)
		cr.ColumnsDropped = append(cr.ColumnsDropped, name)
	}
	if len(toDrop) > 0 {
		cr.ActionsTaken = append(cr.ActionsTaken,
			fmt.Sprintf("Dropped %d columns with >%.0f%% missing", len(toDrop), c.cfg.MissingThreshold*100))
	}

	imputed := 0
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if col.NullCount() == 0 {
			continue
		}
		method := impute(col, report.ImputeSimple)
		if method == "" {
			continue
		}
		cr.MissingValuesHandled[col.Name] = method
		imputed++
	}
	if imputed > 0 {
		cr.ActionsTaken = append(cr.ActionsTaken, fmt.Sprintf("Imputed %d columns", imputed))
	}
}

// outlierBounds merges the Inspector's Tukey fences, when a report
// carries them, with fences recomputed from the cleaned data for every
// numeric column the report does not cover. Columns with fewer than 4
// non-null values or a zero IQR get no fence.
func outlierBounds(tbl *table.Table, qr *report.QualityReport) map[string]report.OutlierDetail {
	bounds := map[string]report.OutlierDetail{}
	if qr != nil {
		for name, d := range qr.OutlierDetails {
			bounds[name] = d
		}
	}
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if col.Kind != table.KindNumeric {
			continue
		}
		if _, ok := bounds[col.Name]; ok {
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
		bounds[col.Name] = report.OutlierDetail{
			LowerBound: q1 - 1.5*iqr,
			UpperBound: q3 + 1.5*iqr,
			Q1:         q1,
			Q3:         q3,
			IQR:        iqr,
		}
	}
	return bounds
}

// handleOutliers applies the merged fences so both stages agree on what
// an outlier is. Clip mode clamps values into the fence; remove mode
// drops every row containing at least one outlier.
func (c *Cleaner) handleOutliers(tbl *table.Table, details map[string]report.OutlierDetail, cr *report.CleaningReport) {
	if len(details) == 0 {
		return
	}

	names := make([]string, 0, len(details))
	for name := range details {
		if tbl.HasColumn(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	handled := 0
	if c.cfg.OutlierMethod == config.OutlierHandleRemove {
		badRows := map[int]struct{}{}
		for _, name := range names {
			d := details[name]
			col := tbl.Column(name)
			for r, v := range col.Values {
				if v.IsNumeric() && (v.AsFloat64() < d.LowerBound || v.AsFloat64() > d.UpperBound) {
					badRows[r] = struct{}{}
				}
			}
		}
		if len(badRows) > 0 {
			keep := make([]int, 0, tbl.NumRows())
			for r := 0; r < tbl.NumRows(); r++ {
				if _, bad := badRows[r]; !bad {
					keep = append(keep, r)
				}
			}
			tbl.SelectRows(keep)
			handled = len(badRows)
			cr.RowsRemoved += handled
		}
	} else {
		for _, name := range names {
			d := details[name]
			col := tbl.Column(name)
			for r, v := range col.Values {
				if !v.IsNumeric() {
					continue
				}
				f := v.AsFloat64()
				switch {
				case f < d.LowerBound:
					col.Values[r] = table.NewNumericValue(d.LowerBound)
					handled++
				case f > d.UpperBound:
					col.Values[r] = table.NewNumericValue(d.UpperBound)
					handled++
				}
			}
		}
	}

	if handled > 0 {
		cr.ActionsTaken = append(cr.ActionsTaken,
			fmt.Sprintf("Handled %d outliers using %s method", handled, c.cfg.OutlierMethod))
	}
}

// castNumeric converts a text column to numeric in place. Thousands
// separators and currency signs are stripped; unparseable values become
// missing. Reports whether anything changed.
func castNumeric(col *table.Column) bool {
	if col.Kind == table.KindNumeric {
		return false
	}
	converted := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing {
			converted[i] = table.NewMissingValue()
			continue
		}
		s := strings.TrimSpace(v.String())
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimPrefix(s, "$")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			converted[i] = table.NewMissingValue()
			continue
		}
		converted[i] = table.NewNumericValue(f)
	}
	col.Kind = table.KindNumeric
	col.Values = converted
	return true
}

// parseDatetime converts a text column to timestamps in place;
// unparseable values become missing. Reports whether anything changed.
func parseDatetime(col *table.Column) bool {
	if col.Kind == table.KindDatetime {
		return false
	}
	converted := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing {
			converted[i] = table.NewMissingValue()
			continue
		}
		ts, ok := parseTimestamp(strings.TrimSpace(v.String()))
		if !ok {
			converted[i] = table.NewMissingValue()
			continue
		}
		converted[i] = table.NewTimestampValue(ts)
	}
	col.Kind = table.KindDatetime
	col.Values = converted
	return true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range datetimeFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func trimWhitespace(col *table.Column) bool {
	changed := false
	for i, v := range col.Values {
		if !v.IsString() {
			continue
		}
		s := v.AsString()
		trimmed := strings.TrimSpace(s)
		if trimmed == s {
			continue
		}
		col.Values[i] = table.NewStringValue(trimmed)
		changed = true
	}
	return changed
}

func standardizeCase(col *table.Column, mode report.CaseMode) bool {
	changed := false
	for i, v := range col.Values {
		if !v.IsString() {
			continue
		}
		s := v.AsString()
		var folded string
		if mode == report.CaseUpper {
			folded = strings.ToUpper(s)
		} else {
			folded = strings.ToLower(s)
		}
		if folded == s {
			continue
		}
		col.Values[i] = table.NewStringValue(folded)
		changed = true
	}
	return changed
}

// impute fills a column's missing values and returns a description of the
// method used, or "" when the column kind is not imputable.
func impute(col *table.Column, strategy report.ImputeStrategy) string {
	switch {
	case col.Kind == table.KindNumeric:
		if strategy == report.ImputeAdvanced {
			return imputeNumericAdvanced(col)
		}
		return imputeNumericMedian(col)
	case col.Kind.IsStringLike():
		if strategy == report.ImputeAdvanced {
			fillString(col, "Missing_Category")
			return "sentinel (Missing_Category)"
		}
		mode := columnMode(col)
		if mode == "" {
			mode = "Unknown"
		}
		fillString(col, mode)
		return fmt.Sprintf("mode (%s)", mode)
	default:
		return ""
	}
}

func imputeNumericMedian(col *table.Column) string {
	nums := col.Numeric()
	if len(nums) == 0 {
		return ""
	}
	median, _ := stats.Median(nums)
	for i, v := range col.Values {
		if v.IsMissing {
			col.Values[i] = table.NewNumericValue(median)
		}
	}
	return fmt.Sprintf("median (%g)", median)
}

// imputeNumericAdvanced forward-fills, back-fills the leading gap, and
// falls back to the median for anything still missing.
func imputeNumericAdvanced(col *table.Column) string {
	nums := col.Numeric()
	if len(nums) == 0 {
		return ""
	}
	last := table.NewMissingValue()
	for i, v := range col.Values {
		if v.IsMissing {
			if !last.IsMissing {
				col.Values[i] = last
			}
		} else {
			last = v
		}
	}
	next := table.NewMissingValue()
	for i := len(col.Values) - 1; i >= 0; i-- {
		v := col.Values[i]
		if v.IsMissing {
			if !next.IsMissing {
				col.Values[i] = next
			}
		} else {
			next = v
		}
	}
	median, _ := stats.Median(nums)
	for i, v := range col.Values {
		if v.IsMissing {
			col.Values[i] = table.NewNumericValue(median)
		}
	}
	return "forward/backward fill + median"
}

func fillString(col *table.Column, s string) {
	for i, v := range col.Values {
		if v.IsMissing {
			col.Values[i] = table.NewStringValue(s)
		}
	}
}

// columnMode returns the most frequent non-missing string, first
// occurrence winning ties.
func columnMode(col *table.Column) string {
	strs := col.Strings()
	if len(strs) == 0 {
		return ""
	}
	freq := make(map[string]int, len(strs))
	for _, s := range strs {
		freq[s]++
	}
	best, bestCount := "", 0
	for _, s := range strs {
		if freq[s] > bestCount {
			best, bestCount = s, freq[s]
		}
	}
	return best
}
