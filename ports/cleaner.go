package ports

import (
	"gosift/domain/report"
	"gosift/domain/table"
)

// Cleaner remediates a table. When qualityReport carries proposed actions
// the Cleaner executes them (agentic mode); otherwise it falls back to
// independent heuristics. Implementations clone the input before mutating.
type Cleaner interface {
	Clean(tbl *table.Table, qualityReport *report.QualityReport) (*table.Table, *report.CleaningReport, error)
}
