package profiling

// CategoricalSummary holds count, distinct values and the most frequent value
// of a non-numeric column
type CategoricalSummary struct {
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top,omitempty"`
	Freq   int    `json:"freq,omitempty"`
}

// summarizeFrequencies counts present values. Ties for the most frequent
// value go to the one seen first.
func summarizeFrequencies(values []string) CategoricalSummary {
	summary := CategoricalSummary{Count: len(values)}
	if len(values) == 0 {
		return summary
	}

	counts := make(map[string]int, len(values))
	order := make([]string, 0)
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	summary.Unique = len(order)
	for _, v := range order {
		if counts[v] > summary.Freq {
			summary.Top = v
			summary.Freq = counts[v]
		}
	}
	return summary
}
