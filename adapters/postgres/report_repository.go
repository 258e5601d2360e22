// Package postgres persists pipeline run results for later audit
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gosift/domain/report"
	"gosift/internal/errors"
	"gosift/ports"
)

// ReportRepositoryImpl implements ReportRepository for PostgreSQL
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// Connect opens a PostgreSQL connection pool and verifies it
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// EnsureSchema creates the pipeline_runs table if it is missing
func (r *ReportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			input_file TEXT NOT NULL,
			output_file TEXT,
			execution_time DOUBLE PRECISION NOT NULL,
			result JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return errors.DatabaseError("failed to ensure pipeline_runs schema", err)
	}
	return nil
}

// SaveResult stores the full run result as JSONB keyed by run ID.
// Re-saving the same run overwrites the previous row.
func (r *ReportRepositoryImpl) SaveResult(ctx context.Context, result *report.PipelineResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to encode pipeline result")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (run_id, status, input_file, output_file, execution_time, result)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			output_file = EXCLUDED.output_file,
			execution_time = EXCLUDED.execution_time,
			result = EXCLUDED.result
	`, string(result.RunID), result.Status, result.InputFile, result.OutputFile, result.ExecutionTime, payload)
	if err != nil {
		return errors.DatabaseError("failed to save pipeline result", err)
	}
	return nil
}

// GetResult loads a stored run result by ID
func (r *ReportRepositoryImpl) GetResult(ctx context.Context, runID string) (*report.PipelineResult, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT result FROM pipeline_runs WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, errors.DatabaseError("failed to load pipeline result", err)
	}

	var result report.PipelineResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode pipeline result")
	}
	return &result, nil
}
