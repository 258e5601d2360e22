package inspect

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gosift/domain/table"
)

var numericLikeRe = regexp.MustCompile(`^[-+]?\d*\.?\d+$`)

// columnIssues carries both the typed findings (used for action
// proposal) and the human-readable messages attached to the report.
type columnIssues struct {
	messages         []string
	numericLike      bool
	dateLike         bool
	whitespace       bool
	caseInconsistent bool
	lengthVariation  bool
}

// checkConsistency detects textual anomalies per column over a bounded
// deterministic sample. Detection of one column never aborts the rest.
func (a *Inspector) checkConsistency(tbl *table.Table) map[string]columnIssues {
	out := make(map[string]columnIssues)
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if !col.Kind.IsStringLike() {
			continue
		}
		values := col.Strings()
		if len(values) == 0 {
			continue
		}
		sample := sampleStrings(values, a.cfg.SampleSize)

		issues := a.checkColumnSample(sample)
		if len(issues.messages) > 0 {
			out[col.Name] = issues
		}
	}
	return out
}

func (a *Inspector) checkColumnSample(sample []string) columnIssues {
	var issues columnIssues
	n := float64(len(sample))

	// Numeric-likeness after stripping thousands separators
	numericCount := 0
	for _, s := range sample {
		if numericLikeRe.MatchString(strings.ReplaceAll(s, ",", "")) {
			numericCount++
		}
	}
	numLike := float64(numericCount) / n
	if numLike > 0.7 {
		issues.numericLike = true
		issues.messages = append(issues.messages,
			fmt.Sprintf("Numeric-like: %.0f%% numeric strings", numLike*100))
	} else if numLike > 0.1 && numLike < 0.7 {
		issues.messages = append(issues.messages,
			fmt.Sprintf("Mixed: %.0f%% numeric, %.0f%% text", numLike*100, (1-numLike)*100))
	}

	if isDateLike(sample) {
		issues.dateLike = true
		issues.messages = append(issues.messages, "Date-like: consider datetime parsing")
	}

	leading, trailing := 0, 0
	for _, s := range sample {
		if s != strings.TrimLeft(s, " \t\n\r") {
			leading++
		}
		if s != strings.TrimRight(s, " \t\n\r") {
			trailing++
		}
	}
	if leading > 0 || trailing > 0 {
		issues.whitespace = true
		issues.messages = append(issues.messages,
			fmt.Sprintf("Whitespace: %d leading, %d trailing occurrences", leading, trailing))
	}

	distinct := make(map[string]struct{}, len(sample))
	lowerDistinct := make(map[string]struct{}, len(sample))
	for _, s := range sample {
		distinct[s] = struct{}{}
		lowerDistinct[strings.ToLower(s)] = struct{}{}
	}
	if float64(len(lowerDistinct)) < float64(len(distinct))*0.9 {
		issues.caseInconsistent = true
		issues.messages = append(issues.messages,
			"Case inconsistency: same values with different casing")
	}

	minLen, maxLen, meanLen, stdLen := lengthStats(sample)
	if stdLen > math.Max(meanLen, 1) {
		issues.lengthVariation = true
		issues.messages = append(issues.messages,
			fmt.Sprintf("Length variation: %d-%d chars (mean %.1f)", minLen, maxLen, meanLen))
	}

	return issues
}

// lengthStats returns min, max, mean, and population std of string lengths
func lengthStats(sample []string) (int, int, float64, float64) {
	if len(sample) == 0 {
		return 0, 0, 0, 0
	}
	minLen, maxLen := len(sample[0]), len(sample[0])
	sum := 0
	for _, s := range sample {
		l := len(s)
		sum += l
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}
	mean := float64(sum) / float64(len(sample))

	variance := 0.0
	for _, s := range sample {
		d := float64(len(s)) - mean
		variance += d * d
	}
	std := 0.0
	if len(sample) > 1 {
		std = math.Sqrt(variance / float64(len(sample)-1))
	}
	return minLen, maxLen, mean, std
}

func issueMessages(issues map[string]columnIssues) map[string][]string {
	out := make(map[string][]string, len(issues))
	for name, iss := range issues {
		out[name] = iss.messages
	}
	return out
}
