package profiling

import (
	"fmt"
	"strings"

	"csvquery/domain/dataset"
)

// Section names one block of the rendered overview
type Section string

const (
	SectionShape      Section = "shape"
	SectionColumns    Section = "columns"
	SectionPreview    Section = "preview"
	SectionStatistics Section = "statistics"
	SectionMissing    Section = "missing"
	SectionTypes      Section = "types"
)

// AllSections returns every section in display order
func AllSections() []Section {
	return []Section{SectionShape, SectionColumns, SectionPreview, SectionStatistics, SectionMissing, SectionTypes}
}

// ParseSections converts names into sections, rejecting unknown names
func ParseSections(names []string) ([]Section, error) {
	known := make(map[Section]bool)
	for _, s := range AllSections() {
		known[s] = true
	}

	var sections []Section
	seen := make(map[Section]bool)
	for _, name := range names {
		s := Section(strings.ToLower(strings.TrimSpace(name)))
		if s == "" {
			continue
		}
		if !known[s] {
			return nil, fmt.Errorf("unknown overview section %q", name)
		}
		if !seen[s] {
			seen[s] = true
			sections = append(sections, s)
		}
	}
	return sections, nil
}

// Options configures which sections a report renders and how many rows it previews
type Options struct {
	Sections    []Section
	PreviewRows int
}

// DefaultOptions renders every section with a five-row preview
func DefaultOptions() Options {
	return Options{
		Sections:    AllSections(),
		PreviewRows: 5,
	}
}

// ColumnStats is one row of the descriptive statistics table. Numeric columns
// carry Numeric, all other columns carry Categorical.
type ColumnStats struct {
	Column      string              `json:"column"`
	Type        dataset.ColumnType  `json:"type"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
}

// Count returns the number of non-missing values
func (cs ColumnStats) Count() int {
	if cs.Numeric != nil {
		return cs.Numeric.Count
	}
	if cs.Categorical != nil {
		return cs.Categorical.Count
	}
	return 0
}

// MissingCount is the number of missing cells in a column
type MissingCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// ColumnType is the inferred type label of a column
type ColumnType struct {
	Column string             `json:"column"`
	Type   dataset.ColumnType `json:"type"`
}

// OverviewReport summarizes a table. Every field is always computed;
// Sections only controls what gets rendered.
type OverviewReport struct {
	RowCount    int            `json:"row_count"`
	ColumnCount int            `json:"column_count"`
	ColumnNames []string       `json:"column_names"`
	Preview     [][]string     `json:"preview"`
	Stats       []ColumnStats  `json:"statistics"`
	Missing     []MissingCount `json:"missing"`
	Types       []ColumnType   `json:"types"`
	Sections    []Section      `json:"sections"`
}

// Summarize computes the overview of table
func Summarize(table *dataset.Table, opts Options) OverviewReport {
	analyzer := NewDistributionAnalyzer()
	columns := table.Columns()

	report := OverviewReport{
		RowCount:    table.RowCount(),
		ColumnCount: table.ColumnCount(),
		ColumnNames: table.ColumnNames(),
		Stats:       make([]ColumnStats, 0, len(columns)),
		Missing:     make([]MissingCount, 0, len(columns)),
		Types:       make([]ColumnType, 0, len(columns)),
		Sections:    append([]Section(nil), opts.Sections...),
	}

	previewRows := opts.PreviewRows
	if previewRows < 0 {
		previewRows = 0
	}
	if previewRows > table.RowCount() {
		previewRows = table.RowCount()
	}
	report.Preview = make([][]string, previewRows)
	for i := 0; i < previewRows; i++ {
		report.Preview[i] = table.Row(i)
	}

	for _, col := range columns {
		stats := ColumnStats{Column: col.Name(), Type: col.Type()}
		if col.Type().IsNumeric() {
			summary := analyzer.AnalyzeDistribution(col.Numbers())
			stats.Numeric = &summary
		} else {
			summary := summarizeFrequencies(col.Present())
			stats.Categorical = &summary
		}
		report.Stats = append(report.Stats, stats)
		report.Missing = append(report.Missing, MissingCount{Column: col.Name(), Missing: col.MissingCount()})
		report.Types = append(report.Types, ColumnType{Column: col.Name(), Type: col.Type()})
	}

	return report
}

// WithSections returns a copy of the report that renders only sections
func (r OverviewReport) WithSections(sections []Section) OverviewReport {
	r.Sections = append([]Section(nil), sections...)
	return r
}

// Has reports whether the section should be rendered
func (r OverviewReport) Has(section Section) bool {
	for _, s := range r.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// MissingView returns only the columns that have missing values
func (r OverviewReport) MissingView() []MissingCount {
	var out []MissingCount
	for _, m := range r.Missing {
		if m.Missing > 0 {
			out = append(out, m)
		}
	}
	return out
}

// StatsFor returns the statistics of the named column
func (r OverviewReport) StatsFor(column string) (ColumnStats, bool) {
	for _, s := range r.Stats {
		if s.Column == column {
			return s, true
		}
	}
	return ColumnStats{}, false
}
