package inspect

import (
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"gosift/domain/report"
	"gosift/domain/table"
)

var (
	phoneRe    = regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}`)
	currencyRe = regexp.MustCompile(`^\$?[\d,]+\.?\d*$`)
)

// timestampFormats are the layouts tried when estimating date-likelihood
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// analyzePatterns summarizes the structural shape of text/categorical
// columns: run-length-compressed character-class masks plus content flags.
func (a *Inspector) analyzePatterns(tbl *table.Table) map[string]report.PatternProfile {
	out := make(map[string]report.PatternProfile)
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

		maskFreq := make(map[string]int, len(sample))
		for _, s := range sample {
			maskFreq[charMask(s)]++
		}

		masks := make([]string, 0, len(maskFreq))
		for m := range maskFreq {
			masks = append(masks, m)
		}
		sort.Slice(masks, func(x, y int) bool {
			if maskFreq[masks[x]] != maskFreq[masks[y]] {
				return maskFreq[masks[x]] > maskFreq[masks[y]]
			}
			return masks[x] < masks[y]
		})

		top := make(map[string]int)
		for j, m := range masks {
			if j >= 5 {
				break
			}
			top[m] = maskFreq[m]
		}

		consistency := 0.0
		if len(masks) > 0 {
			consistency = float64(maskFreq[masks[0]]) / float64(len(sample)) * 100
		}

		profile := report.PatternProfile{
			TopPatterns:    top,
			UniquePatterns: len(maskFreq),
			ConsistencyPct: round1(consistency),
			IsDateLike:     isDateLike(sample),
		}
		for _, s := range sample {
			if strings.Contains(s, "@") {
				profile.ContainsEmail = true
			}
			if strings.Contains(s, "http") {
				profile.ContainsURL = true
			}
			if phoneRe.MatchString(s) {
				profile.ContainsPhone = true
			}
			if currencyRe.MatchString(s) {
				profile.ContainsCurrency = true
			}
		}

		out[col.Name] = profile
	}
	return out
}

// charMask reduces a string to a run-length-compressed mask over four
// character classes: Alpha -> A, Digit -> #, Space -> W, Symbol -> S.
func charMask(s string) string {
	var b strings.Builder
	var last rune
	for _, ch := range s {
		var t rune
		switch {
		case unicode.IsLetter(ch):
			t = 'A'
		case unicode.IsDigit(ch):
			t = '#'
		case unicode.IsSpace(ch):
			t = 'W'
		default:
			t = 'S'
		}
		if t != last {
			b.WriteRune(t)
			last = t
		}
	}
	return b.String()
}

// isDateLike tries timestamp parsing on at most 50 sampled values and
// reports whether more than 70% parse successfully.
func isDateLike(sample []string) bool {
	head := sample
	if len(head) > 50 {
		head = head[:50]
	}
	if len(head) == 0 {
		return false
	}
	parsed := 0
	for _, s := range head {
		if parsesAsTimestamp(s) {
			parsed++
		}
	}
	return float64(parsed)/float64(len(head)) > 0.7
}

func parsesAsTimestamp(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, layout := range timestampFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// sampleStrings picks at most k values with a fixed-seed shuffle so
// repeated analysis of the same table is reproducible.
func sampleStrings(values []string, k int) []string {
	if k <= 0 || len(values) <= k {
		return values
	}
	rng := rand.New(rand.NewSource(sampleSeed))
	idx := rng.Perm(len(values))[:k]
	sort.Ints(idx)
	out := make([]string, k)
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
