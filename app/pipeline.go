package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gosift/adapters/artifacts"
	"gosift/domain/core"
	"gosift/domain/report"
	"gosift/domain/table"
	"gosift/internal"
	"gosift/internal/config"
	apperrors "gosift/internal/errors"
	"gosift/ports"
)

// PipelineService runs the cleaning pipeline end to end: inspect,
// detect anomalies, clean, engineer features, summarize. Stages run
// strictly in sequence; each consumes the previous stage's output.
type PipelineService struct {
	cfg        config.Config
	loader     ports.Loader
	inspector  ports.Inspector
	anomaly    ports.AnomalyDetector
	cleaner    ports.Cleaner
	feature    ports.FeatureEngineer
	insight    ports.InsightGenerator
	repository ports.ReportRepository // optional
	logger     *internal.Logger
}

// NewPipelineService wires the pipeline stages. repository may be nil,
// in which case results are only written to the artifacts directory.
func NewPipelineService(
	cfg config.Config,
	loader ports.Loader,
	inspector ports.Inspector,
	anomaly ports.AnomalyDetector,
	cleaner ports.Cleaner,
	feature ports.FeatureEngineer,
	insight ports.InsightGenerator,
	repository ports.ReportRepository,
	logger *internal.Logger,
) *PipelineService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		cfg:        cfg,
		loader:     loader,
		inspector:  inspector,
		anomaly:    anomaly,
		cleaner:    cleaner,
		feature:    feature,
		insight:    insight,
		repository: repository,
		logger:     logger,
	}
}

// RunPipeline processes a single input file. A stage failure marks the
// run failed and records the error; downstream stages that can still
// operate on earlier output keep running so one bad stage does not
// discard the rest of the analysis.
func (s *PipelineService) RunPipeline(ctx context.Context, inputFile string) *report.PipelineResult {
	start := time.Now()
	result := &report.PipelineResult{
		RunID:     core.RunID(core.NewID()),
		Status:    report.StatusCompleted,
		InputFile: inputFile,
	}
	s.logger.Info("Pipeline %s: processing %s", result.RunID, inputFile)

	tbl, err := s.loader.Load(inputFile)
	if err != nil {
		s.fail(result, fmt.Sprintf("load: %v", err))
		s.finish(ctx, result, start)
		return result
	}

	if s.cfg.Stages.Inspector {
		qr, err := s.inspector.Analyze(tbl)
		if err != nil {
			s.fail(result, fmt.Sprintf("inspector: %v", err))
		} else {
			result.QualityReport = qr
		}
	}

	if s.cfg.Stages.Anomaly {
		ar, err := s.anomaly.Detect(tbl)
		if err != nil {
			s.fail(result, fmt.Sprintf("anomaly: %v", err))
		} else {
			result.AnomalyReport = ar
		}
	}

	cleaned := tbl
	if s.cfg.Stages.Cleaner {
		out, cr, err := s.cleaner.Clean(tbl, result.QualityReport)
		if err != nil {
			s.fail(result, fmt.Sprintf("cleaner: %v", err))
		} else {
			cleaned = out
			result.CleaningReport = cr
		}
	}

	if s.cfg.Stages.Feature {
		out, fr, err := s.feature.Transform(cleaned)
		if err != nil {
			s.fail(result, fmt.Sprintf("feature: %v", err))
		} else {
			cleaned = out
			result.FeatureReport = fr
		}
	}

	if s.cfg.Stages.Insight {
		ir, err := s.insight.Generate(cleaned)
		if err != nil {
			s.fail(result, fmt.Sprintf("insight: %v", err))
		} else {
			result.InsightReport = ir
		}
	}

	if result.CleaningReport != nil {
		path, err := s.writeCleaned(inputFile, cleaned, start)
		if err != nil {
			s.fail(result, fmt.Sprintf("output: %v", err))
		} else {
			result.OutputFile = path
		}
	}

	s.finish(ctx, result, start)
	return result
}

// batchExtensions mirrors the loader's dispatch table
var batchExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
}

// RunBatchPipeline processes every supported file in dir, in directory
// listing order. A failing file never stops the batch; its result simply
// carries the failed status.
func (s *PipelineService) RunBatchPipeline(ctx context.Context, dir string) ([]*report.PipelineResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrapf(err, "reading batch directory %s", dir)
	}

	var results []*report.PipelineResult
	for _, e := range entries {
		if e.IsDir() || !batchExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		results = append(results, s.RunPipeline(ctx, filepath.Join(dir, e.Name())))
	}

	failed := 0
	for _, r := range results {
		if r.Status == report.StatusFailed {
			failed++
		}
	}
	s.logger.Info("Batch complete: %d file(s), %d failed", len(results), failed)
	return results, nil
}

func (s *PipelineService) writeCleaned(inputFile string, tbl *table.Table, start time.Time) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	name := fmt.Sprintf("%s_cleaned_%s.csv", base, start.Format("20060102_150405"))
	path := filepath.Join(s.cfg.Data.OutputPath, name)
	if err := artifacts.WriteTableCSV(path, tbl); err != nil {
		return "", err
	}
	return path, nil
}

func (s *PipelineService) fail(result *report.PipelineResult, msg string) {
	s.logger.Error("Pipeline %s: %s", result.RunID, msg)
	result.Status = report.StatusFailed
	result.Errors = append(result.Errors, msg)
}

func (s *PipelineService) finish(ctx context.Context, result *report.PipelineResult, start time.Time) {
	result.ExecutionTime = time.Since(start).Seconds()

	resultPath := filepath.Join(s.cfg.Data.ArtifactsPath,
		fmt.Sprintf("run_%s.json", result.RunID))
	if err := artifacts.SaveJSON(resultPath, result); err != nil {
		s.logger.Warn("Pipeline %s: failed to save run artifact: %v", result.RunID, err)
	}

	if s.repository != nil {
		if err := s.repository.SaveResult(ctx, result); err != nil {
			s.logger.Warn("Pipeline %s: failed to persist result: %v", result.RunID, err)
		}
	}

	s.logger.Info("Pipeline %s: %s in %.2fs", result.RunID, result.Status, result.ExecutionTime)
}
