package inspect

import (
	"math"

	"gosift/domain/report"
	"gosift/domain/table"
)

// calculateQualityScores computes the per-column [0,1] health metric:
// 1.0 minus completeness, cardinality, consistency, and pattern/length
// penalties, clamped to the unit interval.
func (a *Inspector) calculateQualityScores(
	tbl *table.Table,
	missingValues map[string]float64,
	cardinality map[string]report.Cardinality,
	consistencyIssues map[string][]string,
) map[string]float64 {
	scores := make(map[string]float64, tbl.NumCols())

	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		score := 1.0

		// Completeness (max -0.40)
		score -= missingValues[col.Name] / 100 * 0.40

		// Cardinality (max -0.25)
		switch cardinality[col.Name] {
		case report.CardinalityConstant:
			score -= 0.25
		case report.CardinalityUnique:
			if col.Kind.IsStringLike() {
				score -= 0.10
			}
		}

		// Type consistency (max -0.20)
		if issues, ok := consistencyIssues[col.Name]; ok {
			score -= math.Min(float64(len(issues))*0.07, 0.20)
		}

		// Pattern/length consistency for text (max -0.15)
		if col.Kind.IsStringLike() {
			strs := col.Strings()
			if len(strs) > 1 {
				uniqRatio := float64(col.DistinctCount()) / float64(len(strs))
				if uniqRatio < 0.01 {
					score -= 0.10
				}
				_, _, meanLen, stdLen := lengthStats(strs)
				if stdLen > math.Max(meanLen, 1) {
					score -= 0.05
				}
			}
		}

		scores[col.Name] = math.Max(0.0, math.Min(1.0, round3(score)))
	}
	return scores
}
