package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// NumericSummary holds descriptive statistics for one numeric column.
// Fields that are undefined for the data (no values, or a spread measure
// over fewer than two values) are nil.
type NumericSummary struct {
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean,omitempty"`
	StdDev   *float64 `json:"std,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Q25      *float64 `json:"p25,omitempty"`
	Median   *float64 `json:"p50,omitempty"`
	Q75      *float64 `json:"p75,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Skewness *float64 `json:"skewness,omitempty"`
	Kurtosis *float64 `json:"kurtosis,omitempty"`
}

// DistributionAnalyzer handles numeric distribution summaries
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution summarizes data, which must already exclude missing values
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) NumericSummary {
	summary := NumericSummary{Count: len(data)}
	if len(data) == 0 {
		return summary
	}

	if mean, err := stats.Mean(data); err == nil {
		summary.Mean = finite(mean)
	}
	if min, err := stats.Min(data); err == nil {
		summary.Min = finite(min)
	}
	if max, err := stats.Max(data); err == nil {
		summary.Max = finite(max)
	}
	if len(data) > 1 {
		if sd, err := stats.StandardDeviationSample(data); err == nil {
			summary.StdDev = finite(sd)
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	summary.Q25 = finite(quantile(sorted, 0.25))
	summary.Median = finite(quantile(sorted, 0.50))
	summary.Q75 = finite(quantile(sorted, 0.75))

	if len(data) > 2 {
		summary.Skewness = finite(stat.Skew(data, nil))
	}
	if len(data) > 3 {
		summary.Kurtosis = finite(stat.ExKurtosis(data, nil))
	}

	return summary
}

// quantile interpolates linearly between the closest ranks of sorted data,
// the method pandas describe() uses.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// finite returns nil for NaN and infinities so they never reach a report as numbers
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
