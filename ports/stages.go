package ports

import (
	"gosift/domain/report"
	"gosift/domain/table"
)

// AnomalyDetector is an independent analysis stage with a simple
// report = Detect(table) contract; it is not coupled to the
// Inspector/Cleaner feedback loop.
type AnomalyDetector interface {
	Detect(tbl *table.Table) (*report.AnomalyReport, error)
}

// FeatureEngineer is an independent transformer stage. It returns a new
// table; the input is never mutated.
type FeatureEngineer interface {
	Transform(tbl *table.Table) (*table.Table, *report.FeatureReport, error)
}

// InsightGenerator summarizes a cleaned table into an insight report
// and optional artifacts.
type InsightGenerator interface {
	Generate(tbl *table.Table) (*report.InsightReport, error)
}
