package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"gosift/internal/errors"
)

// Outlier aggregation modes for the Inspector and handling policies for
// the Cleaner.
const (
	OutlierCountRow  = "row"
	OutlierCountCell = "cell"

	OutlierHandleClip   = "clip"
	OutlierHandleRemove = "remove"
)

// Thresholds holds the Inspector's decision bands. Missing-value bands are
// ratios in [0,1]; cardinality bands are distinct/row ratios.
type Thresholds struct {
	MissingDrop          float64 `yaml:"missing_drop"`
	MissingHigh          float64 `yaml:"missing_high"`
	MissingMedium        float64 `yaml:"missing_medium"`
	CardinalityLowRatio  float64 `yaml:"cardinality_low_ratio"`
	CardinalityHighRatio float64 `yaml:"cardinality_high_ratio"`
}

// Modules toggles the Inspector's optional analysis passes
type Modules struct {
	Patterns    bool `yaml:"patterns"`
	Consistency bool `yaml:"consistency"`
	Skewness    bool `yaml:"skewness"`
}

// InspectorConfig configures the profiling stage
type InspectorConfig struct {
	DatasetName    string     `yaml:"dataset_name"`
	ArtifactsDir   string     `yaml:"artifacts_dir"`
	OutlierMethod  string     `yaml:"outlier_method"` // row | cell
	SampleSize     int        `yaml:"sample_size"`
	Thresholds     Thresholds `yaml:"thresholds"`
	Modules        Modules    `yaml:"modules"`
	WriteArtifacts bool       `yaml:"write_artifacts"`
}

// CleanerConfig configures the remediation stage
type CleanerConfig struct {
	MissingThreshold float64 `yaml:"missing_threshold"` // fallback column-drop ratio
	OutlierMethod    string  `yaml:"outlier_method"`    // clip | remove
}

// AnomalyConfig configures the anomaly detection stage
type AnomalyConfig struct {
	Methods   []string `yaml:"methods"`
	MinRows   int      `yaml:"min_rows"`
	Threshold float64  `yaml:"threshold"` // robust z-score cutoff
}

// FeatureConfig configures the feature engineering stage
type FeatureConfig struct {
	DatetimeFeatures     bool `yaml:"datetime_features"`
	NumericFeatures      bool `yaml:"numeric_features"`
	CategoricalFeatures  bool `yaml:"categorical_features"`
	MaxCategoricalUnique int  `yaml:"max_categorical_unique"`
}

// InsightConfig configures the insight/reporting stage
type InsightConfig struct {
	CorrelationAnalysis bool `yaml:"correlation_analysis"`
	WriteArtifacts      bool `yaml:"write_artifacts"`
}

// Stages toggles which pipeline stages run
type Stages struct {
	Inspector bool `yaml:"inspector"`
	Anomaly   bool `yaml:"anomaly"`
	Cleaner   bool `yaml:"cleaner"`
	Feature   bool `yaml:"feature"`
	Insight   bool `yaml:"insight"`
}

// DataConfig holds file system paths used by the orchestrator
type DataConfig struct {
	ArtifactsPath string `yaml:"artifacts_path"`
	OutputPath    string `yaml:"output_path"`
}

// DatabaseConfig holds the optional report-store connection
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Config is the complete, immutable pipeline configuration. Construct it
// once via Default or Merge; never mutate a shared instance.
type Config struct {
	Stages    Stages          `yaml:"stages"`
	Inspector InspectorConfig `yaml:"inspector"`
	Cleaner   CleanerConfig   `yaml:"cleaner"`
	Anomaly   AnomalyConfig   `yaml:"anomaly"`
	Feature   FeatureConfig   `yaml:"feature"`
	Insight   InsightConfig   `yaml:"insight"`
	Data      DataConfig      `yaml:"data"`
	Database  DatabaseConfig  `yaml:"database"`
}

// Default returns the canonical default configuration
func Default() Config {
	return Config{
		Stages: Stages{
			Inspector: true,
			Anomaly:   true,
			Cleaner:   true,
			Feature:   true,
			Insight:   true,
		},
		Inspector: InspectorConfig{
			DatasetName:   "dataset",
			ArtifactsDir:  "data/artifacts",
			OutlierMethod: OutlierCountRow,
			SampleSize:    500,
			Thresholds: Thresholds{
				MissingDrop:          0.70,
				MissingHigh:          0.30,
				MissingMedium:        0.10,
				CardinalityLowRatio:  0.05,
				CardinalityHighRatio: 0.95,
			},
			Modules: Modules{
				Patterns:    true,
				Consistency: true,
				Skewness:    true,
			},
			WriteArtifacts: true,
		},
		Cleaner: CleanerConfig{
			MissingThreshold: 0.8,
			OutlierMethod:    OutlierHandleClip,
		},
		Anomaly: AnomalyConfig{
			Methods:   []string{"robust_zscore", "iqr"},
			MinRows:   10,
			Threshold: 3.5,
		},
		Feature: FeatureConfig{
			DatetimeFeatures:     true,
			NumericFeatures:      true,
			CategoricalFeatures:  true,
			MaxCategoricalUnique: 50,
		},
		Insight: InsightConfig{
			CorrelationAnalysis: true,
			WriteArtifacts:      true,
		},
		Data: DataConfig{
			ArtifactsPath: getEnvOrDefault("GOSIFT_ARTIFACTS_PATH", "data/artifacts"),
			OutputPath:    getEnvOrDefault("GOSIFT_OUTPUT_PATH", "data/output"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}
}

// Overrides mirrors Config with optional fields; absent fields keep the
// default value during Merge.
type Overrides struct {
	Stages *struct {
		Inspector *bool `yaml:"inspector"`
		Anomaly   *bool `yaml:"anomaly"`
		Cleaner   *bool `yaml:"cleaner"`
		Feature   *bool `yaml:"feature"`
		Insight   *bool `yaml:"insight"`
	} `yaml:"stages"`
	Inspector *struct {
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
	} `yaml:"inspector"`
	Cleaner *struct {
		MissingThreshold *float64 `yaml:"missing_threshold"`
		OutlierMethod    *string  `yaml:"outlier_method"`
	} `yaml:"cleaner"`
	Anomaly *struct {
		Methods   []string `yaml:"methods"`
		MinRows   *int     `yaml:"min_rows"`
		Threshold *float64 `yaml:"threshold"`
	} `yaml:"anomaly"`
	Feature *struct {
		DatetimeFeatures     *bool `yaml:"datetime_features"`
		NumericFeatures      *bool `yaml:"numeric_features"`
		CategoricalFeatures  *bool `yaml:"categorical_features"`
		MaxCategoricalUnique *int  `yaml:"max_categorical_unique"`
	} `yaml:"feature"`
	Insight *struct {
		CorrelationAnalysis *bool `yaml:"correlation_analysis"`
		WriteArtifacts      *bool `yaml:"write_artifacts"`
	} `yaml:"insight"`
	Data *struct {
		ArtifactsPath *string `yaml:"artifacts_path"`
		OutputPath    *string `yaml:"output_path"`
	} `yaml:"data"`
	Database *struct {
		URL *string `yaml:"url"`
	} `yaml:"database"`
}

// Merge applies overrides on top of defaults and returns a new Config.
// Neither input is mutated.
func Merge(defaults Config, overrides *Overrides) Config {
	cfg := defaults
	if overrides == nil {
		return cfg
	}

	if o := overrides.Stages; o != nil {
		setBool(&cfg.Stages.Inspector, o.Inspector)
		setBool(&cfg.Stages.Anomaly, o.Anomaly)
		setBool(&cfg.Stages.Cleaner, o.Cleaner)
		setBool(&cfg.Stages.Feature, o.Feature)
		setBool(&cfg.Stages.Insight, o.Insight)
	}
	if o := overrides.Inspector; o != nil {
		setString(&cfg.Inspector.DatasetName, o.DatasetName)
		setString(&cfg.Inspector.ArtifactsDir, o.ArtifactsDir)
		setString(&cfg.Inspector.OutlierMethod, o.OutlierMethod)
		setInt(&cfg.Inspector.SampleSize, o.SampleSize)
		setBool(&cfg.Inspector.WriteArtifacts, o.WriteArtifacts)
		if th := o.Thresholds; th != nil {
			setFloat(&cfg.Inspector.Thresholds.MissingDrop, th.MissingDrop)
			setFloat(&cfg.Inspector.Thresholds.MissingHigh, th.MissingHigh)
			setFloat(&cfg.Inspector.Thresholds.MissingMedium, th.MissingMedium)
			setFloat(&cfg.Inspector.Thresholds.CardinalityLowRatio, th.CardinalityLowRatio)
			setFloat(&cfg.Inspector.Thresholds.CardinalityHighRatio, th.CardinalityHighRatio)
		}
		if m := o.Modules; m != nil {
			setBool(&cfg.Inspector.Modules.Patterns, m.Patterns)
			setBool(&cfg.Inspector.Modules.Consistency, m.Consistency)
			setBool(&cfg.Inspector.Modules.Skewness, m.Skewness)
		}
	}
	if o := overrides.Cleaner; o != nil {
		setFloat(&cfg.Cleaner.MissingThreshold, o.MissingThreshold)
		setString(&cfg.Cleaner.OutlierMethod, o.OutlierMethod)
	}
	if o := overrides.Anomaly; o != nil {
		if len(o.Methods) > 0 {
			cfg.Anomaly.Methods = append([]string(nil), o.Methods...)
		}
		setInt(&cfg.Anomaly.MinRows, o.MinRows)
		setFloat(&cfg.Anomaly.Threshold, o.Threshold)
	}
	if o := overrides.Feature; o != nil {
		setBool(&cfg.Feature.DatetimeFeatures, o.DatetimeFeatures)
		setBool(&cfg.Feature.NumericFeatures, o.NumericFeatures)
		setBool(&cfg.Feature.CategoricalFeatures, o.CategoricalFeatures)
		setInt(&cfg.Feature.MaxCategoricalUnique, o.MaxCategoricalUnique)
	}
	if o := overrides.Insight; o != nil {
		setBool(&cfg.Insight.CorrelationAnalysis, o.CorrelationAnalysis)
		setBool(&cfg.Insight.WriteArtifacts, o.WriteArtifacts)
	}
	if o := overrides.Data; o != nil {
		setString(&cfg.Data.ArtifactsPath, o.ArtifactsPath)
		setString(&cfg.Data.OutputPath, o.OutputPath)
	}
	if o := overrides.Database; o != nil {
		setString(&cfg.Database.URL, o.URL)
	}

	return cfg
}

// Load reads overrides from a YAML file, merges them onto defaults, and
// validates the result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	defaults := Default()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}

	var overrides Overrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config file")
	}

	cfg := Merge(defaults, &overrides)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects option values outside the recognized sets
func Validate(cfg Config) error {
	switch cfg.Inspector.OutlierMethod {
	case OutlierCountRow, OutlierCountCell:
	default:
		return errors.ConfigInvalid("inspector.outlier_method must be 'row' or 'cell'")
	}
	switch cfg.Cleaner.OutlierMethod {
	case OutlierHandleClip, OutlierHandleRemove:
	default:
		return errors.ConfigInvalid("cleaner.outlier_method must be 'clip' or 'remove'")
	}
	if cfg.Inspector.SampleSize <= 0 {
		return errors.ConfigInvalid("inspector.sample_size must be positive")
	}
	if cfg.Cleaner.MissingThreshold <= 0 || cfg.Cleaner.MissingThreshold > 1 {
		return errors.ConfigInvalid("cleaner.missing_threshold must be in (0, 1]")
	}
	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

