package ports

import (
	"context"

	"gosift/domain/report"
)

// ReportRepository persists pipeline run results for later audit.
// Persistence is optional; the pipeline works without a repository.
type ReportRepository interface {
	SaveResult(ctx context.Context, result *report.PipelineResult) error
}
