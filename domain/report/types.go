package report

import (
	"gosift/domain/core"
)

// OverallQuality grades a whole table; every table gets exactly one grade
type OverallQuality string

const (
	QualityExcellent OverallQuality = "excellent"
	QualityGood      OverallQuality = "good"
	QualityFair      OverallQuality = "fair"
	QualityPoor      OverallQuality = "poor"
)

// RunStatus is the terminal state of a pipeline run
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Cardinality classifies a column's distinct-value profile
type Cardinality string

const (
	CardinalityConstant Cardinality = "constant"
	CardinalityLow      Cardinality = "low"
	CardinalityMedium   Cardinality = "medium"
	CardinalityHigh     Cardinality = "high"
	CardinalityUnique   Cardinality = "unique"
)

// ActionKind is the closed set of remediation instructions the Inspector
// can propose and the Cleaner can execute.
type ActionKind string

const (
	ActionDropColumn      ActionKind = "drop_column"
	ActionImpute          ActionKind = "impute"
	ActionCastNumeric     ActionKind = "cast_numeric"
	ActionParseDatetime   ActionKind = "parse_datetime"
	ActionTrimWhitespace  ActionKind = "trim_whitespace"
	ActionStandardizeCase ActionKind = "standardize_case"
	ActionFlagID          ActionKind = "flag_id"
)

// ImputeStrategy selects how an impute action fills missing values
type ImputeStrategy string

const (
	ImputeSimple   ImputeStrategy = "simple"
	ImputeAdvanced ImputeStrategy = "advanced"
)

// CaseMode selects the target casing for standardize_case actions
type CaseMode string

const (
	CaseLower CaseMode = "lower"
	CaseUpper CaseMode = "upper"
)

// ProposedAction is a machine-executable remediation instruction
type ProposedAction struct {
	Column   string         `json:"column"`
	Action   ActionKind     `json:"action"`
	Strategy ImputeStrategy `json:"strategy,omitempty"`
	Mode     CaseMode       `json:"mode,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// NumericSummary holds descriptive statistics for numeric columns
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// TextSummary holds descriptive statistics for text/categorical columns
type TextSummary struct {
	MostCommon     string  `json:"most_common"`
	MostCommonFreq int     `json:"most_common_freq"`
	AvgLength      float64 `json:"avg_length"`
	MinLength      int     `json:"min_length"`
	MaxLength      int     `json:"max_length"`
}

// OutlierDetail records the Tukey fence computed for one numeric column.
// The Cleaner reuses these bounds verbatim so both stages agree on what
// an outlier is.
type OutlierDetail struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
}

// PatternProfile summarizes the structural shape of a text column's values
type PatternProfile struct {
	TopPatterns      map[string]int `json:"top_patterns"`
	UniquePatterns   int            `json:"num_unique_patterns"`
	ConsistencyPct   float64        `json:"pattern_consistency_pct"`
	ContainsEmail    bool           `json:"contains_email"`
	ContainsURL      bool           `json:"contains_url"`
	ContainsPhone    bool           `json:"contains_phone"`
	ContainsCurrency bool           `json:"contains_currency"`
	IsDateLike       bool           `json:"is_date_like"`
}

// ColumnStats is the per-column record computed fresh on every analysis
type ColumnStats struct {
	Dtype        string          `json:"dtype"`
	NonNullCount int             `json:"non_null_count"`
	NullCount    int             `json:"null_count"`
	UniqueCount  int             `json:"unique_count"`
	MissingPct   float64         `json:"missing_pct"`
	Numeric      *NumericSummary `json:"numeric,omitempty"`
	Text         *TextSummary    `json:"text,omitempty"`
	Cardinality  Cardinality     `json:"cardinality,omitempty"`
	Skewness     *float64        `json:"skewness,omitempty"`
	Patterns     *PatternProfile `json:"patterns,omitempty"`
	QualityScore float64         `json:"quality_score"`
	Outliers     *OutlierDetail  `json:"outliers,omitempty"`
}

// QualityReport is the Inspector's immutable output and the sole channel
// of intelligence handed to the Cleaner.
type QualityReport struct {
	OverallQuality      OverallQuality            `json:"overall_quality"`
	MissingValues       map[string]float64        `json:"missing_values"`
	DataTypes           map[string]string         `json:"data_types"`
	DuplicateCount      int                       `json:"duplicate_count"`
	OutlierCount        int                       `json:"outlier_count"`
	ColumnStats         map[string]ColumnStats    `json:"column_stats"`
	Recommendations     []string                  `json:"recommendations"`
	Timestamp           core.Timestamp            `json:"timestamp"`
	CardinalityAnalysis map[string]Cardinality    `json:"cardinality_analysis"`
	SkewnessAnalysis    map[string]float64        `json:"skewness_analysis"`
	PatternAnalysis     map[string]PatternProfile `json:"pattern_analysis"`
	ConsistencyIssues   map[string][]string       `json:"consistency_issues"`
	ColumnQualityScores map[string]float64        `json:"column_quality_scores"`
	OutlierDetails      map[string]OutlierDetail  `json:"outlier_details"`
	ProposedActions     []ProposedAction          `json:"proposed_actions"`
}

// CleaningReport is the Cleaner's immutable output
type CleaningReport struct {
	OriginalShape        [2]int            `json:"original_shape"`
	CleanedShape         [2]int            `json:"cleaned_shape"`
	ActionsTaken         []string          `json:"actions_taken"`
	ColumnsDropped       []string          `json:"columns_dropped"`
	RowsRemoved          int               `json:"rows_removed"`
	MissingValuesHandled map[string]string `json:"missing_values_handled"`
	Timestamp            core.Timestamp    `json:"timestamp"`
}

// AnomalyReport is the output of the anomaly detection stage
type AnomalyReport struct {
	Method            string             `json:"method"`
	AnomalyCount      int                `json:"anomaly_count"`
	AnomalyPercentage float64            `json:"anomaly_percentage"`
	AnomalyIndices    []int              `json:"anomaly_indices"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Recommendations   []string           `json:"recommendations"`
	Timestamp         core.Timestamp     `json:"timestamp"`
}

// FeatureReport is the output of the feature engineering stage
type FeatureReport struct {
	OriginalFeatures       int               `json:"original_features"`
	NewFeatures            int               `json:"new_features"`
	TotalFeatures          int               `json:"total_features"`
	FeaturesCreated        map[string]string `json:"features_created"`
	TransformationsApplied []string          `json:"transformations_applied"`
	Recommendations        []string          `json:"recommendations"`
	Timestamp              core.Timestamp    `json:"timestamp"`
}

// CorrelationPair records the Pearson correlation between two numeric columns
type CorrelationPair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Correlation float64 `json:"correlation"`
}

// InsightReport is the output of the insight stage
type InsightReport struct {
	SummaryStatistics map[string]NumericSummary `json:"summary_statistics"`
	Correlations      []CorrelationPair         `json:"correlations"`
	KeyInsights       []string                  `json:"key_insights"`
	Recommendations   []string                  `json:"recommendations"`
	ArtifactsWritten  []string                  `json:"artifacts_written"`
	Timestamp         core.Timestamp            `json:"timestamp"`
}

// PipelineResult bundles every stage's output for one pipeline run
type PipelineResult struct {
	RunID          core.RunID      `json:"run_id"`
	Status         RunStatus       `json:"status"`
	InputFile      string          `json:"input_file"`
	OutputFile     string          `json:"output_file,omitempty"`
	QualityReport  *QualityReport  `json:"quality_report,omitempty"`
	AnomalyReport  *AnomalyReport  `json:"anomaly_report,omitempty"`
	CleaningReport *CleaningReport `json:"cleaning_report,omitempty"`
	FeatureReport  *FeatureReport  `json:"feature_report,omitempty"`
	InsightReport  *InsightReport  `json:"insight_report,omitempty"`
	ExecutionTime  float64         `json:"execution_time"`
	Errors         []string        `json:"errors"`
}
