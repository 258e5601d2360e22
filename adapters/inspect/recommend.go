package inspect

import (
	"fmt"
	"sort"
	"strings"

	"gosift/domain/report"
	"gosift/domain/table"
)

// generateRecommendations emits the priority-ordered, human-readable
// findings. Rules are independent and additive; the list is never empty.
func (a *Inspector) generateRecommendations(
	tbl *table.Table,
	missingValues map[string]float64,
	duplicateCount, outlierCount int,
	cardinality map[string]report.Cardinality,
	issues map[string]columnIssues,
	qualityScores map[string]float64,
) []string {
	th := a.cfg.Thresholds
	names := tbl.Names()
	var recs []string

	constantCols := filterNames(names, func(c string) bool {
		return cardinality[c] == report.CardinalityConstant
	})
	if len(constantCols) > 0 {
		recs = append(recs, fmt.Sprintf("CRITICAL: Drop constant columns (%d): %s",
			len(constantCols), headList(constantCols)))
	}

	criticalMissing := filterNames(names, func(c string) bool {
		return missingValues[c] > th.MissingDrop*100
	})
	if len(criticalMissing) > 0 {
		recs = append(recs, fmt.Sprintf("CRITICAL: >70%% missing in %d column(s): %s",
			len(criticalMissing), headList(criticalMissing)))
	}

	if duplicateCount > 0 {
		dupPct := float64(duplicateCount) / float64(maxInt(tbl.NumRows(), 1)) * 100
		recs = append(recs, fmt.Sprintf("HIGH: Remove %d duplicate rows (%.1f%%).", duplicateCount, dupPct))
	}

	highMissing := filterNames(names, func(c string) bool {
		pct := missingValues[c]
		return pct > th.MissingHigh*100 && pct <= th.MissingDrop*100
	})
	if len(highMissing) > 0 {
		recs = append(recs, fmt.Sprintf("HIGH: Handle %d column(s) with 30-70%% missing: %s",
			len(highMissing), headList(highMissing)))
	}

	numericText := filterNames(names, func(c string) bool {
		return issues[c].numericLike
	})
	if len(numericText) > 0 {
		recs = append(recs, fmt.Sprintf("HIGH: Convert numeric-like text to numbers in %d column(s): %s",
			len(numericText), headList(numericText)))
	}

	moderateMissing := filterNames(names, func(c string) bool {
		pct := missingValues[c]
		return pct > th.MissingMedium*100 && pct <= th.MissingHigh*100
	})
	if len(moderateMissing) > 0 {
		recs = append(recs, fmt.Sprintf("MEDIUM: Impute %d column(s) with 10-30%% missing: %s",
			len(moderateMissing), headList(moderateMissing)))
	}

	if outlierCount > 0 {
		recs = append(recs, fmt.Sprintf("MEDIUM: Review %d outlier value(s); consider capping or removal.", outlierCount))
	}

	dateLike := filterNames(names, func(c string) bool {
		return issues[c].dateLike
	})
	if len(dateLike) > 0 {
		recs = append(recs, fmt.Sprintf("MEDIUM: Parse datetime in %d column(s): %s",
			len(dateLike), headList(dateLike)))
	}

	wsCols := filterNames(names, func(c string) bool {
		return issues[c].whitespace
	})
	if len(wsCols) > 0 {
		recs = append(recs, fmt.Sprintf("INFO: Trim whitespace in %d column(s): %s",
			len(wsCols), headList(wsCols)))
	}

	caseCols := filterNames(names, func(c string) bool {
		return issues[c].caseInconsistent
	})
	if len(caseCols) > 0 {
		recs = append(recs, fmt.Sprintf("INFO: Standardize case in %d column(s): %s",
			len(caseCols), headList(caseCols)))
	}

	lowQ := filterNames(names, func(c string) bool {
		return qualityScores[c] < 0.5
	})
	if len(lowQ) > 0 {
		sort.SliceStable(lowQ, func(i, j int) bool {
			return qualityScores[lowQ[i]] < qualityScores[lowQ[j]]
		})
		parts := make([]string, 0, 3)
		for i, c := range lowQ {
			if i >= 3 {
				break
			}
			parts = append(parts, fmt.Sprintf("%s (%.2f)", c, qualityScores[c]))
		}
		suffix := ""
		if len(lowQ) > 3 {
			suffix = " ..."
		}
		recs = append(recs, "QUALITY: Low-quality columns (score < 0.5): "+strings.Join(parts, ", ")+suffix)
	}

	if len(recs) == 0 {
		recs = append(recs, "EXCELLENT: No major data quality issues detected!")
	}
	return recs
}

// proposeActions translates missing-value bands and consistency findings
// into machine-executable actions using the same thresholds as the
// recommendations, so every CRITICAL/HIGH/MEDIUM finding about
// missingness or consistency has a corresponding action.
func (a *Inspector) proposeActions(
	tbl *table.Table,
	missingValues map[string]float64,
	issues map[string]columnIssues,
	cardinality map[string]report.Cardinality,
) []report.ProposedAction {
	th := a.cfg.Thresholds
	var actions []report.ProposedAction

	for _, c := range tbl.Names() {
		pct := missingValues[c]
		switch {
		case pct > th.MissingDrop*100:
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionDropColumn, Reason: "missing>70%",
			})
		case pct > th.MissingHigh*100:
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionImpute, Strategy: report.ImputeAdvanced, Reason: "missing 30-70%",
			})
		case pct > th.MissingMedium*100:
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionImpute, Strategy: report.ImputeSimple, Reason: "missing 10-30%",
			})
		}
	}

	for _, c := range tbl.Names() {
		iss, ok := issues[c]
		if !ok {
			continue
		}
		if iss.numericLike {
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionCastNumeric, Reason: "numeric-like text",
			})
		}
		if iss.dateLike {
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionParseDatetime, Reason: "date-like text",
			})
		}
		if iss.whitespace {
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionTrimWhitespace, Reason: "leading/trailing whitespace",
			})
		}
		if iss.caseInconsistent {
			actions = append(actions, report.ProposedAction{
				Column: c, Action: report.ActionStandardizeCase, Mode: report.CaseLower, Reason: "case inconsistency",
			})
		}
	}

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		switch cardinality[col.Name] {
		case report.CardinalityConstant:
			actions = append(actions, report.ProposedAction{
				Column: col.Name, Action: report.ActionDropColumn, Reason: "constant",
			})
		case report.CardinalityUnique:
			// Unique non-numeric columns may be legitimate identifiers;
			// flag them instead of dropping.
			if col.Kind != table.KindNumeric {
				actions = append(actions, report.ProposedAction{
					Column: col.Name, Action: report.ActionFlagID, Reason: "unique values",
				})
			}
		}
	}

	return actions
}

func filterNames(names []string, keep func(string) bool) []string {
	var out []string
	for _, n := range names {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// headList renders at most three names, with an ellipsis when truncated
func headList(names []string) string {
	head := names
	suffix := ""
	if len(head) > 3 {
		head = head[:3]
		suffix = " ..."
	}
	return strings.Join(head, ", ") + suffix
}
