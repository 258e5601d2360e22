package ports

import (
	"gosift/domain/report"
	"gosift/domain/table"
)

// Inspector profiles a table and produces a quality report with
// machine-executable proposed actions. Implementations must not mutate
// the table they analyze.
type Inspector interface {
	Analyze(tbl *table.Table) (*report.QualityReport, error)
}
