package llm

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"csvquery/domain/dataset"
	"csvquery/internal/profiling"
)

const systemPrompt = `You are a careful data analyst. You answer questions about a single table that the user uploaded.

Rules:
- Use only the table data and statistics provided in the message. Do not invent rows, columns or values.
- When the table was truncated, say so if it could affect the answer, and prefer the full-table statistics for aggregates.
- When the question cannot be answered from the table, say that plainly.
- Keep answers concise. Markdown tables and lists are allowed.`

// Limits bounds how much of the table is sent with each question
type Limits struct {
	MaxRows      int
	MaxColumns   int
	MaxCellChars int
}

// DefaultLimits returns the default truncation limits
func DefaultLimits() Limits {
	return Limits{
		MaxRows:      500,
		MaxColumns:   50,
		MaxCellChars: 200,
	}
}

// columnForPrompt describes one column in the prompt
type columnForPrompt struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Missing int    `json:"missing"`
}

// PromptData is the structured context sent alongside the question
type PromptData struct {
	Rows       int                     `json:"rows"`
	Columns    []columnForPrompt       `json:"columns"`
	Statistics []profiling.ColumnStats `json:"statistics,omitempty"`
}

// truncation records what BuildUserPrompt cut
type truncation struct {
	rows    bool
	columns bool
	cells   int
}

func (t truncation) any() bool {
	return t.rows || t.columns || t.cells > 0
}

// BuildUserPrompt renders the question together with the table context
func BuildUserPrompt(question string, table *dataset.Table, overview *profiling.OverviewReport, limits Limits) (string, error) {
	if table == nil {
		return "", fmt.Errorf("no table to describe")
	}

	var cut truncation
	columns := table.Columns()
	if limits.MaxColumns > 0 && len(columns) > limits.MaxColumns {
		columns = columns[:limits.MaxColumns]
		cut.columns = true
	}

	// Columns past the cap are left out of every part of the prompt.
	data := PromptData{Rows: table.RowCount()}
	for _, col := range columns {
		data.Columns = append(data.Columns, columnForPrompt{
			Name:    col.Name(),
			Type:    string(col.Type()),
			Missing: col.MissingCount(),
		})
		if overview != nil {
			if stats, ok := overview.StatsFor(col.Name()); ok {
				data.Statistics = append(data.Statistics, stats)
			}
		}
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt data: %w", err)
	}

	rows, err := renderRows(table, columns, limits, &cut)
	if err != nil {
		return "", fmt.Errorf("failed to render table rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", question)
	fmt.Fprintf(&b, "Table shape: %d rows x %d columns\n\n", table.RowCount(), table.ColumnCount())
	fmt.Fprintf(&b, "Columns and full-table statistics (computed over every row, missing values excluded):\n%s\n\n", jsonData)

	if cut.any() {
		b.WriteString("NOTE: the table below is truncated.")
		if cut.rows {
			fmt.Fprintf(&b, " Only the first %d of %d rows are included.", limits.MaxRows, table.RowCount())
		}
		if cut.columns {
			fmt.Fprintf(&b, " Only the first %d of %d columns are included; the remaining columns are left out of this message entirely.",
				limits.MaxColumns, table.ColumnCount())
		}
		if cut.cells > 0 {
			fmt.Fprintf(&b, " %d cell values longer than %d characters were shortened.", cut.cells, limits.MaxCellChars)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Table data (CSV, empty cells are missing values):\n%s", rows)
	return b.String(), nil
}

// renderRows writes the header and the first rows of columns as CSV within limits
func renderRows(table *dataset.Table, columns []*dataset.Column, limits Limits, cut *truncation) (string, error) {
	rowCount := table.RowCount()
	if limits.MaxRows > 0 && rowCount > limits.MaxRows {
		rowCount = limits.MaxRows
		cut.rows = true
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for j, col := range columns {
		header[j] = col.Name()
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	record := make([]string, len(columns))
	for i := 0; i < rowCount; i++ {
		for j, col := range columns {
			value := ""
			if !col.IsMissing(i) {
				value = col.Raw(i)
			}
			if limits.MaxCellChars > 0 {
				if r := []rune(value); len(r) > limits.MaxCellChars {
					value = string(r[:limits.MaxCellChars]) + "..."
					cut.cells++
				}
			}
			record[j] = value
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
