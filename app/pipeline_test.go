package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosift/adapters/anomaly"
	"gosift/adapters/clean"
	"gosift/adapters/feature"
	"gosift/adapters/insight"
	"gosift/adapters/inspect"
	"gosift/adapters/loader"
	"gosift/domain/report"
	"gosift/internal/config"
)

func testService(t *testing.T) (*PipelineService, config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Data.ArtifactsPath = t.TempDir()
	cfg.Data.OutputPath = t.TempDir()
	cfg.Inspector.ArtifactsDir = cfg.Data.ArtifactsPath
	cfg.Inspector.DatasetName = "testset"

	svc := NewPipelineService(
		cfg,
		loader.New(nil),
		inspect.New(cfg.Inspector, nil),
		anomaly.New(cfg.Anomaly, nil),
		clean.New(cfg.Cleaner, nil),
		feature.New(cfg.Feature, nil),
		insight.New(cfg.Insight, cfg.Data.ArtifactsPath, cfg.Inspector.DatasetName, nil),
		nil,
		nil,
	)
	return svc, cfg
}

func writeMessyCSV(t *testing.T, path string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,status,price,note\n")
	// status is constant; two extreme prices; one duplicated row at the end
	for i := 1; i <= 50; i++ {
		price := 100 + i%10
		if i == 10 {
			price = 10000
		}
		if i == 20 {
			price = -10000
		}
		b.WriteString(strings.Join([]string{
			strconv.Itoa(i), "active", strconv.Itoa(price), "ok",
		}, ",") + "\n")
	}
	b.WriteString("1,active,101,ok\n")

	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunPipelineEndToEnd(t *testing.T) {
	svc, cfg := testService(t)
	input := writeMessyCSV(t, filepath.Join(t.TempDir(), "messy.csv"))

	result := svc.RunPipeline(context.Background(), input)

	require.Equal(t, report.StatusCompleted, result.Status, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.QualityReport)
	require.NotNil(t, result.AnomalyReport)
	require.NotNil(t, result.CleaningReport)
	require.NotNil(t, result.FeatureReport)
	require.NotNil(t, result.InsightReport)
	assert.Greater(t, result.ExecutionTime, 0.0)

	// The constant status column was proposed for drop and removed
	assert.Contains(t, result.CleaningReport.ColumnsDropped, "status")
	// The duplicated trailing row was removed
	assert.Equal(t, 1, result.CleaningReport.RowsRemoved)

	// Cleaned CSV exists in the output dir with the timestamped name
	require.NotEmpty(t, result.OutputFile)
	assert.True(t, strings.HasPrefix(filepath.Base(result.OutputFile), "messy_cleaned_"))
	_, err := os.Stat(result.OutputFile)
	require.NoError(t, err)

	// Run result artifact is saved alongside the stage artifacts
	runArtifact := filepath.Join(cfg.Data.ArtifactsPath, "run_"+result.RunID.String()+".json")
	_, err = os.Stat(runArtifact)
	require.NoError(t, err)
}

func TestRunPipelineMissingFile(t *testing.T) {
	svc, _ := testService(t)

	result := svc.RunPipeline(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))

	assert.Equal(t, report.StatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "load:")
	assert.Nil(t, result.QualityReport)
	assert.Empty(t, result.OutputFile)
}

// TestRunBatchPipelineDirectory: the batch walks a directory in listing
// order, skips unsupported files, and a bad file must not stop the batch.
func TestRunBatchPipelineDirectory(t *testing.T) {
	svc, _ := testService(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_empty.csv"), nil, 0o644))
	writeMessyCSV(t, filepath.Join(dir, "b_messy.csv"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	results, err := svc.RunBatchPipeline(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, results, 2, "only supported files are processed")
	assert.Equal(t, "a_empty.csv", filepath.Base(results[0].InputFile))
	assert.Equal(t, "b_messy.csv", filepath.Base(results[1].InputFile))
	assert.Equal(t, report.StatusFailed, results[0].Status)
	assert.Equal(t, report.StatusCompleted, results[1].Status)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}

func TestRunBatchPipelineMissingDirectory(t *testing.T) {
	svc, _ := testService(t)

	results, err := svc.RunBatchPipeline(context.Background(), filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	assert.Nil(t, results)
}

// TestRunPipelineStagesDisabled: toggled-off stages leave their reports nil
func TestRunPipelineStagesDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Data.ArtifactsPath = t.TempDir()
	cfg.Data.OutputPath = t.TempDir()
	cfg.Inspector.ArtifactsDir = cfg.Data.ArtifactsPath
	cfg.Stages.Anomaly = false
	cfg.Stages.Feature = false
	cfg.Stages.Insight = false

	svc := NewPipelineService(
		cfg,
		loader.New(nil),
		inspect.New(cfg.Inspector, nil),
		anomaly.New(cfg.Anomaly, nil),
		clean.New(cfg.Cleaner, nil),
		feature.New(cfg.Feature, nil),
		insight.New(cfg.Insight, cfg.Data.ArtifactsPath, "x", nil),
		nil,
		nil,
	)

	result := svc.RunPipeline(context.Background(), writeMessyCSV(t, filepath.Join(t.TempDir(), "messy.csv")))

	assert.Equal(t, report.StatusCompleted, result.Status)
	assert.NotNil(t, result.QualityReport)
	assert.NotNil(t, result.CleaningReport)
	assert.Nil(t, result.AnomalyReport)
	assert.Nil(t, result.FeatureReport)
	assert.Nil(t, result.InsightReport)
}
