package excel

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"csvquery/adapters/datareadiness/coercer"
	"csvquery/domain/dataset"
	"csvquery/internal/errors"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedExtensions lists the upload extensions LoadFile accepts
var SupportedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

// DataReader turns uploaded CSV and Excel bytes into typed tables
type DataReader struct {
	coercer *coercer.TypeCoercer
}

// NewDataReader creates a reader. A nil coercer uses the default coercion rules.
func NewDataReader(c *coercer.TypeCoercer) *DataReader {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &DataReader{coercer: c}
}

// Load parses comma-separated text with a header row using the default rules
func Load(data []byte) (*dataset.Table, error) {
	return NewDataReader(nil).Load(data)
}

// LoadFile dispatches on the file extension
func (r *DataReader) LoadFile(filename string, data []byte) (*dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return r.Load(data)
	case ".tsv":
		return r.LoadDelimited(data, '\t')
	case ".txt":
		return r.LoadDelimited(data, detectDelimiter(data))
	case ".xlsx":
		return r.LoadExcel(data)
	default:
		return nil, errors.ParseError(
			fmt.Sprintf("unsupported file type %q (expected one of %s)", ext, strings.Join(SupportedExtensions, ", ")), nil)
	}
}

// Load parses comma-separated text with a header row
func (r *DataReader) Load(data []byte) (*dataset.Table, error) {
	return r.LoadDelimited(data, ',')
}

// LoadDelimited parses text with a header row, splitting fields on comma
func (r *DataReader) LoadDelimited(data []byte, comma rune) (*dataset.Table, error) {
	start := time.Now()
	rows, err := readCSVRows(data, comma)
	if err != nil {
		log.Printf("[DataReader] CSV parse failed: %v", err)
		return nil, err
	}

	table, err := r.buildTable(rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] %q-delimited text processed in %.2fms (%d columns, %d rows)",
		comma, float64(time.Since(start).Nanoseconds())/1e6, table.ColumnCount(), table.RowCount())
	return table, nil
}

// LoadExcel reads the first worksheet of an .xlsx workbook
func (r *DataReader) LoadExcel(data []byte) (*dataset.Table, error) {
	start := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseError("failed to open Excel workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("Excel workbook has no worksheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read worksheet %q", sheets[0]), err)
	}

	// Blank spreadsheet rows come back empty; treat them like blank CSV lines.
	var kept [][]string
	var lines []int
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		kept = append(kept, row)
		lines = append(lines, i+1)
	}
	if len(kept) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("worksheet %q is empty", sheets[0]), nil)
	}

	// GetRows drops trailing empty cells, so a blank last header cell must be
	// restored for the data below it.
	width := 0
	for _, row := range kept {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(kept[0]) < width {
		kept[0] = append(kept[0], "")
	}

	table, err := r.buildTable(parsedRows{records: kept, lines: lines})
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] Excel sheet %q processed in %.2fms (%d columns, %d rows)",
		sheets[0], float64(time.Since(start).Nanoseconds())/1e6, table.ColumnCount(), table.RowCount())
	return table, nil
}

// parsedRows holds raw records and the source line of each one
type parsedRows struct {
	records [][]string
	lines   []int
}

// readCSVRows splits delimited text into records, header first
func readCSVRows(data []byte, comma rune) (parsedRows, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return parsedRows{}, errors.ParseError("file is empty: no header row to parse", nil)
	}
	if !utf8.Valid(data) {
		return parsedRows{}, errors.ParseError("file is not valid UTF-8 text", nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	var out parsedRows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if stderrors.As(err, &csvErr) {
				return parsedRows{}, errors.ParseError(fmt.Sprintf("malformed row at line %d", csvErr.StartLine), csvErr.Err)
			}
			return parsedRows{}, errors.ParseError("failed to read delimited text", err)
		}
		line, _ := reader.FieldPos(0)
		out.records = append(out.records, record)
		out.lines = append(out.lines, line)
	}

	if len(out.records) == 0 {
		return parsedRows{}, errors.ParseError("file is empty: no header row to parse", nil)
	}
	return out, nil
}

// detectDelimiter picks the most frequent of comma, semicolon and tab on the
// header line, ignoring quoted spans. Ties go to comma.
func detectDelimiter(data []byte) rune {
	data = bytes.TrimPrefix(data, utf8BOM)
	counts := map[byte]int{}
	quoted := false
	for _, b := range data {
		if b == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		if b == '\n' {
			break
		}
		counts[b]++
	}

	best := byte(',')
	for _, candidate := range []byte{';', '\t'} {
		if counts[candidate] > counts[best] {
			best = candidate
		}
	}
	return rune(best)
}

// buildTable converts raw records into a typed table, header first
func (r *DataReader) buildTable(rows parsedRows) (*dataset.Table, error) {
	headers := normalizeHeaders(rows.records[0])
	data := rows.records[1:]

	cells := make([][]string, len(headers))
	for j := range cells {
		cells[j] = make([]string, len(data))
	}

	for i, record := range data {
		if len(record) > len(headers) {
			return nil, errors.ParseError(fmt.Sprintf("malformed row at line %d: expected %d fields, saw %d",
				rows.lines[i+1], len(headers), len(record)), nil)
		}
		// Short rows are padded with missing values.
		for j := range record {
			cells[j][i] = record[j]
		}
	}

	columns := make([]*dataset.Column, len(headers))
	for j, name := range headers {
		col, err := r.coercer.BuildColumn(name, cells[j])
		if err != nil {
			return nil, errors.ParseError("failed to build column", err)
		}
		columns[j] = col
	}

	table, err := dataset.NewTable(columns)
	if err != nil {
		return nil, errors.ParseError("failed to assemble table", err)
	}
	return table, nil
}

// normalizeHeaders names blank headers "Unnamed: <index>" and suffixes
// repeated names with ".1", ".2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if seen[name] {
			base := name
			for n := 1; seen[name]; n++ {
				name = base + "." + strconv.Itoa(n)
			}
		}
		seen[name] = true
		headers[i] = name
	}
	return headers
}
