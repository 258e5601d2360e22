package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

// TestMergeDoesNotMutateDefaults guards the pure-merge contract: the same
// defaults value must be reusable across runs.
func TestMergeDoesNotMutateDefaults(t *testing.T) {
	defaults := Default()
	size := 25
	enabled := false
	overrides := &Overrides{}
	overrides.Inspector = &struct {
		DatasetName   *string `yaml:"dataset_name"`
		ArtifactsDir  *string `yaml:"artifacts_dir"`
		OutlierMethod *string `yaml:"outlier_method"`
		SampleSize    *int    `yaml:"sample_size"`
		Thresholds    *struct {
			MissingDrop          *float64 `yaml:"missing_drop"`
			MissingHigh          *float64 `yaml:"missing_high"`
			MissingMedium        *float64 `yaml:"missing_medium"`
			CardinalityLowRatio  *float64 `yaml:"cardinality_low_ratio"`
			CardinalityHighRatio *float64 `yaml:"cardinality_high_ratio"`
		} `yaml:"thresholds"`
		Modules *struct {
			Patterns    *bool `yaml:"patterns"`
			Consistency *bool `yaml:"consistency"`
			Skewness    *bool `yaml:"skewness"`
		} `yaml:"modules"`
		WriteArtifacts *bool `yaml:"write_artifacts"`
	}{
		SampleSize:     &size,
		WriteArtifacts: &enabled,
	}

	merged := Merge(defaults, overrides)

	assert.Equal(t, 25, merged.Inspector.SampleSize)
	assert.False(t, merged.Inspector.WriteArtifacts)
	// Defaults untouched
	assert.Equal(t, 500, defaults.Inspector.SampleSize)
	assert.True(t, defaults.Inspector.WriteArtifacts)
	// Unspecified fields keep defaults
	assert.Equal(t, "dataset", merged.Inspector.DatasetName)
	assert.Equal(t, 0.70, merged.Inspector.Thresholds.MissingDrop)
}

func TestMergeNilOverrides(t *testing.T) {
	defaults := Default()
	assert.Equal(t, defaults, Merge(defaults, nil))
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gosift.yaml")
	yaml := `
stages:
  insight: false
inspector:
  sample_size: 100
  outlier_method: cell
cleaner:
  outlier_method: remove
  missing_threshold: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Stages.Insight)
	assert.True(t, cfg.Stages.Inspector, "untouched stage keeps default")
	assert.Equal(t, 100, cfg.Inspector.SampleSize)
	assert.Equal(t, OutlierCountCell, cfg.Inspector.OutlierMethod)
	assert.Equal(t, OutlierHandleRemove, cfg.Cleaner.OutlierMethod)
	assert.Equal(t, 0.5, cfg.Cleaner.MissingThreshold)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad inspector outlier method", "inspector:\n  outlier_method: sideways\n"},
		{"bad cleaner outlier method", "cleaner:\n  outlier_method: ignore\n"},
		{"bad sample size", "inspector:\n  sample_size: 0\n"},
		{"bad missing threshold", "cleaner:\n  missing_threshold: 1.5\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
