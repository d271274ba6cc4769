package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"csvquery/domain/dataset"
)

// TypeCoercer decides what a raw cell means: missing, number, boolean,
// timestamp or plain text, and which type a whole column should get.
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]bool
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold"`   // share of present values that must parse as numbers
	BooleanThreshold   float64  `json:"boolean_threshold"`   // share of present values that must parse as booleans
	TimestampThreshold float64  `json:"timestamp_threshold"` // share of present values that must parse as timestamps
	MissingTokens      []string `json:"missing_tokens"`
	TimestampLayouts   []string `json:"timestamp_layouts"`
}

// DefaultMissingTokens mirrors the NA markers pandas.read_csv recognizes by default.
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultTimestampLayouts lists the layouts tried, in order, when detecting temporal columns.
var DefaultTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"01/02/2006 15:04",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// DefaultCoercionConfig requires every present value to agree on a type
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1.0,
		BooleanThreshold:   1.0,
		TimestampThreshold: 1.0,
		MissingTokens:      DefaultMissingTokens,
		TimestampLayouts:   DefaultTimestampLayouts,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]bool, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[tok] = true
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell holds a missing value. Whitespace-only
// cells count as missing.
func (c *TypeCoercer) IsMissing(raw string) bool {
	if c.missing[raw] {
		return true
	}
	return strings.TrimSpace(raw) == ""
}

// ParseNumeric parses a cell as a finite number
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseBoolean parses a cell as a boolean
func (c *TypeCoercer) ParseBoolean(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// ParseTimestamp parses a cell with the first matching configured layout
func (c *TypeCoercer) ParseTimestamp(raw string) (time.Time, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return time.Time{}, false
	}
	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	ValidCount      int                `json:"valid_count"`
	NumericCount    int                `json:"numeric_count"`
	BooleanCount    int                `json:"boolean_count"`
	TimestampCount  int                `json:"timestamp_count"`
	RecommendedType dataset.ColumnType `json:"recommended_type"`
}

// AnalyzeTypeDistribution counts how many present values parse as each type
// and picks the column type. Missing values do not vote.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		if c.IsMissing(val) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseBoolean(val); ok {
			analysis.BooleanCount++
		}
		if _, ok := c.ParseTimestamp(val); ok {
			analysis.TimestampCount++
		}
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.ColumnType {
	// An all-missing column is numeric, as pandas infers float64 for it.
	if analysis.ValidCount == 0 {
		return dataset.TypeNumeric
	}

	valid := float64(analysis.ValidCount)
	if float64(analysis.NumericCount)/valid >= c.config.NumericThreshold {
		return dataset.TypeNumeric
	}
	if float64(analysis.BooleanCount)/valid >= c.config.BooleanThreshold {
		return dataset.TypeBoolean
	}
	if float64(analysis.TimestampCount)/valid >= c.config.TimestampThreshold {
		return dataset.TypeTemporal
	}
	return dataset.TypeText
}

// BuildColumn classifies raw cells and assembles a typed column. In a numeric
// column produced with a threshold below 1, cells that fail to parse become missing.
func (c *TypeCoercer) BuildColumn(name string, raw []string) (*dataset.Column, error) {
	analysis := c.AnalyzeTypeDistribution(raw)

	missing := make([]bool, len(raw))
	var numbers []float64
	if analysis.RecommendedType.IsNumeric() {
		numbers = make([]float64, len(raw))
	}

	for i, val := range raw {
		if c.IsMissing(val) {
			missing[i] = true
			continue
		}
		if numbers != nil {
			n, ok := c.ParseNumeric(val)
			if !ok {
				missing[i] = true
				continue
			}
			numbers[i] = n
		}
	}

	return dataset.NewColumn(name, analysis.RecommendedType, raw, missing, numbers)
}
