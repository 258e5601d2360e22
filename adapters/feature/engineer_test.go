package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosift/domain/table"
	"gosift/internal/config"
	"gosift/internal/testkit"
)

func testEngineer(t *testing.T) *Engineer {
	t.Helper()
	return New(config.Default().Feature, nil)
}

func TestTransformExpandsDatetime(t *testing.T) {
	e := testEngineer(t)
	tbl := table.New(table.Column{Name: "signup", Kind: table.KindDatetime, Values: []table.Value{
		table.NewTimestampValue(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		table.NewTimestampValue(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)),
		table.NewMissingValue(),
	}})

	out, fr, err := e.Transform(tbl)
	require.NoError(t, err)

	for _, name := range []string{"signup_year", "signup_month", "signup_day", "signup_dayofweek"} {
		require.True(t, out.HasColumn(name), "missing %s", name)
		assert.Equal(t, table.KindNumeric, out.Column(name).Kind)
	}
	assert.Equal(t, 2024.0, out.Column("signup_year").Values[0].AsFloat64())
	assert.Equal(t, 3.0, out.Column("signup_month").Values[0].AsFloat64())
	assert.Equal(t, 15.0, out.Column("signup_day").Values[0].AsFloat64())
	assert.True(t, out.Column("signup_year").Values[2].IsMissing)

	assert.Equal(t, 1, fr.OriginalFeatures)
	assert.Equal(t, 4, fr.NewFeatures)
	assert.Equal(t, 5, fr.TotalFeatures)
}

// TestSampleSkewness pins the adjusted Fisher-Pearson coefficient,
// n/((n-1)(n-2)) * sum(((x-mean)/s)^3) with s the sample deviation, so
// the value tracks what pandas-style profilers report.
func TestSampleSkewness(t *testing.T) {
	assert.InDelta(t, 2.2324, sampleSkewness([]float64{1, 2, 3, 4, 100}), 1e-4)
	assert.Equal(t, 0.0, sampleSkewness([]float64{5, 5, 5}), "zero spread has no skew")
}

func TestTransformLogTransformsSkewed(t *testing.T) {
	e := testEngineer(t)
	tbl := table.New(table.Column{Name: "revenue", Kind: table.KindNumeric, Values: testkit.SkewedColumn(50)})

	out, fr, err := e.Transform(tbl)
	require.NoError(t, err)

	require.True(t, out.HasColumn("revenue_log1p"))
	assert.Contains(t, fr.FeaturesCreated, "revenue_log1p")
	// log1p(1) for the first value
	assert.InDelta(t, 0.6931, out.Column("revenue_log1p").Values[0].AsFloat64(), 0.001)
}

// TestTransformSkipsSymmetricNumeric: near-symmetric columns get no log companion
func TestTransformSkipsSymmetricNumeric(t *testing.T) {
	e := testEngineer(t)
	vals := make([]table.Value, 50)
	for i := range vals {
		vals[i] = table.NewNumericValue(float64(i))
	}
	tbl := table.New(table.Column{Name: "v", Kind: table.KindNumeric, Values: vals})

	out, _, err := e.Transform(tbl)
	require.NoError(t, err)
	assert.False(t, out.HasColumn("v_log1p"))
}

// TestTransformSkipsNegativeNumeric: log1p needs non-negative input
func TestTransformSkipsNegativeNumeric(t *testing.T) {
	e := testEngineer(t)
	vals := make([]table.Value, 50)
	for i := range vals {
		vals[i] = table.NewNumericValue(float64(i - 25))
	}
	vals[49] = table.NewNumericValue(100000)
	tbl := table.New(table.Column{Name: "v", Kind: table.KindNumeric, Values: vals})

	out, _, err := e.Transform(tbl)
	require.NoError(t, err)
	assert.False(t, out.HasColumn("v_log1p"))
}

func TestTransformFrequencyEncodes(t *testing.T) {
	e := testEngineer(t)
	tbl := table.New(table.Column{Name: "color", Kind: table.KindCategorical, Values: []table.Value{
		table.NewStringValue("red"),
		table.NewStringValue("red"),
		table.NewStringValue("blue"),
		table.NewMissingValue(),
	}})

	out, fr, err := e.Transform(tbl)
	require.NoError(t, err)

	col := out.Column("color_freq")
	require.NotNil(t, col)
	assert.Equal(t, 2.0, col.Values[0].AsFloat64())
	assert.Equal(t, 2.0, col.Values[1].AsFloat64())
	assert.Equal(t, 1.0, col.Values[2].AsFloat64())
	assert.True(t, col.Values[3].IsMissing)
	assert.Contains(t, fr.FeaturesCreated, "color_freq")
}

// TestTransformRespectsCategoricalBound: too many distinct values, no encoding
func TestTransformRespectsCategoricalBound(t *testing.T) {
	cfg := config.Default().Feature
	cfg.MaxCategoricalUnique = 2
	e := New(cfg, nil)

	tbl := table.New(table.Column{Name: "c", Kind: table.KindCategorical, Values: []table.Value{
		table.NewStringValue("a"),
		table.NewStringValue("b"),
		table.NewStringValue("c"),
	}})

	out, _, err := e.Transform(tbl)
	require.NoError(t, err)
	assert.False(t, out.HasColumn("c_freq"))
}

// TestTransformDoesNotMutateInput guards the transformer contract
func TestTransformDoesNotMutateInput(t *testing.T) {
	e := testEngineer(t)
	tbl := table.New(table.Column{Name: "color", Kind: table.KindCategorical, Values: []table.Value{
		table.NewStringValue("red"),
		table.NewStringValue("blue"),
		table.NewStringValue("red"),
	}})
	before := tbl.Clone()

	_, _, err := e.Transform(tbl)
	require.NoError(t, err)
	assert.Equal(t, before, tbl)
}

func TestTransformDisabledStagesDoNothing(t *testing.T) {
	cfg := config.FeatureConfig{} // every toggle off
	e := New(cfg, nil)

	out, fr, err := e.Transform(testkit.MessyTable())
	require.NoError(t, err)

	assert.Equal(t, out.NumCols(), fr.OriginalFeatures)
	assert.Zero(t, fr.NewFeatures)
}
