package profiling

import (
	"math"
	"testing"

	"csvquery/adapters/excel"
	"csvquery/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	table, err := excel.Load([]byte(csv))
	require.NoError(t, err)
	return table
}

func TestSummarizeScenario(t *testing.T) {
	table := loadTable(t, "name,age\nA,30\nB,\nC,40")

	report := Summarize(table, DefaultOptions())

	assert.Equal(t, 3, report.RowCount)
	assert.Equal(t, 2, report.ColumnCount)
	assert.Equal(t, []string{"name", "age"}, report.ColumnNames)
	assert.Equal(t, []MissingCount{{Column: "name", Missing: 0}, {Column: "age", Missing: 1}}, report.Missing)
	assert.Equal(t, []MissingCount{{Column: "age", Missing: 1}}, report.MissingView())

	age, ok := report.StatsFor("age")
	require.True(t, ok)
	require.NotNil(t, age.Numeric)
	assert.Nil(t, age.Categorical)
	assert.Equal(t, 2, age.Count())
	assert.InDelta(t, 35.0, *age.Numeric.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(50), *age.Numeric.StdDev, 1e-9)
	assert.Equal(t, 30.0, *age.Numeric.Min)
	assert.Equal(t, 40.0, *age.Numeric.Max)
	assert.InDelta(t, 32.5, *age.Numeric.Q25, 1e-9)
	assert.InDelta(t, 35.0, *age.Numeric.Median, 1e-9)
	assert.InDelta(t, 37.5, *age.Numeric.Q75, 1e-9)

	name, ok := report.StatsFor("name")
	require.True(t, ok)
	require.NotNil(t, name.Categorical)
	assert.Nil(t, name.Numeric)
	assert.Equal(t, 3, name.Categorical.Count)
	assert.Equal(t, 3, name.Categorical.Unique)
	assert.Equal(t, "A", name.Categorical.Top)
	assert.Equal(t, 1, name.Categorical.Freq)
}

func TestSummarizeMatchesTableShape(t *testing.T) {
	inputs := []string{
		"a\n",
		"a,b,c\n1,2,3\n",
		"x,y\n1,foo\n2,bar\n3,\n4,foo\n",
	}
	for _, in := range inputs {
		table := loadTable(t, in)
		report := Summarize(table, DefaultOptions())

		assert.Equal(t, table.RowCount(), report.RowCount)
		assert.Equal(t, table.ColumnNames(), report.ColumnNames)
		assert.Len(t, report.Stats, table.ColumnCount())
		assert.Len(t, report.Missing, table.ColumnCount())
		assert.Len(t, report.Types, table.ColumnCount())
	}
}

func TestMissingValuesAreExcludedNotZeroed(t *testing.T) {
	table := loadTable(t, "v\n10\nNA\n\"\"\n20\nnull\n")
	report := Summarize(table, DefaultOptions())

	v, _ := report.StatsFor("v")
	require.NotNil(t, v.Numeric)
	assert.Equal(t, 2, v.Numeric.Count)
	assert.InDelta(t, 15.0, *v.Numeric.Mean, 1e-9)
	assert.InDelta(t, 10.0, *v.Numeric.Min, 1e-9)
	assert.Equal(t, 3, report.Missing[0].Missing)
}

func TestCategoricalTopPrefersFirstOnTie(t *testing.T) {
	table := loadTable(t, "c\nb\na\na\nb\nc\n")
	report := Summarize(table, DefaultOptions())

	c, _ := report.StatsFor("c")
	require.NotNil(t, c.Categorical)
	assert.Equal(t, "b", c.Categorical.Top)
	assert.Equal(t, 2, c.Categorical.Freq)
	assert.Equal(t, 3, c.Categorical.Unique)
}

func TestBooleanAndTemporalUseFrequencyStats(t *testing.T) {
	table := loadTable(t, "flag,day\ntrue,2024-01-01\nfalse,2024-01-01\ntrue,2024-01-02\n")
	report := Summarize(table, DefaultOptions())

	for _, col := range []string{"flag", "day"} {
		s, ok := report.StatsFor(col)
		require.True(t, ok)
		assert.Nil(t, s.Numeric, col)
		require.NotNil(t, s.Categorical, col)
	}
	assert.Equal(t, []ColumnType{
		{Column: "flag", Type: dataset.TypeBoolean},
		{Column: "day", Type: dataset.TypeTemporal},
	}, report.Types)
}

func TestUndefinedStatisticsAreNil(t *testing.T) {
	table := loadTable(t, "single,empty\n5,\n")
	report := Summarize(table, DefaultOptions())

	single, _ := report.StatsFor("single")
	require.NotNil(t, single.Numeric)
	assert.Equal(t, 5.0, *single.Numeric.Mean)
	assert.Nil(t, single.Numeric.StdDev)
	assert.Nil(t, single.Numeric.Skewness)
	assert.Equal(t, 5.0, *single.Numeric.Median)

	empty, _ := report.StatsFor("empty")
	require.NotNil(t, empty.Numeric)
	assert.Equal(t, 0, empty.Numeric.Count)
	assert.Nil(t, empty.Numeric.Mean)
	assert.Nil(t, empty.Numeric.Q25)
}

func TestPreviewRows(t *testing.T) {
	table := loadTable(t, "n\n1\n2\n3\n4\n5\n6\n7\n")

	report := Summarize(table, DefaultOptions())
	assert.Len(t, report.Preview, 5)
	assert.Equal(t, []string{"1"}, report.Preview[0])

	report = Summarize(table, Options{PreviewRows: 50})
	assert.Len(t, report.Preview, 7)
}

func TestSections(t *testing.T) {
	sections, err := ParseSections([]string{"Shape", " missing ", "shape", ""})
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionShape, SectionMissing}, sections)

	_, err = ParseSections([]string{"histogram"})
	assert.Error(t, err)

	table := loadTable(t, "a\n1\n")
	report := Summarize(table, Options{Sections: sections})
	assert.True(t, report.Has(SectionShape))
	assert.False(t, report.Has(SectionStatistics))
	// Hidden sections are still computed.
	assert.Len(t, report.Stats, 1)

	widened := report.WithSections(AllSections())
	assert.True(t, widened.Has(SectionStatistics))
	assert.False(t, report.Has(SectionStatistics))
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantile(sorted, 0.75), 1e-9)
	assert.Equal(t, 4.0, quantile(sorted, 1))
}

func TestShapeStatistics(t *testing.T) {
	summary := NewDistributionAnalyzer().AnalyzeDistribution([]float64{1, 2, 3, 4, 100})
	require.NotNil(t, summary.Skewness)
	require.NotNil(t, summary.Kurtosis)
	assert.Greater(t, *summary.Skewness, 0.0)

	flat := NewDistributionAnalyzer().AnalyzeDistribution([]float64{2, 2, 2, 2})
	require.NotNil(t, flat.StdDev)
	assert.Equal(t, 0.0, *flat.StdDev)
	assert.Nil(t, flat.Skewness)
}
