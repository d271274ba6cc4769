package dataset

import (
	"fmt"
)

// ColumnType is the element type inferred for a column
type ColumnType string

const (
	TypeNumeric  ColumnType = "numeric"
	TypeText     ColumnType = "text"
	TypeBoolean  ColumnType = "boolean"
	TypeTemporal ColumnType = "temporal"
)

// IsNumeric reports whether numeric statistics apply to the type
func (t ColumnType) IsNumeric() bool {
	return t == TypeNumeric
}

// Column is one named, typed column of a Table. Values are kept as the raw
// cell text; numeric columns also carry the parsed value of every present cell.
type Column struct {
	name    string
	typ     ColumnType
	raw     []string
	missing []bool
	numbers []float64
}

// NewColumn builds a column. numbers is only read for numeric columns and
// must be aligned with raw; entries at missing positions are ignored.
func NewColumn(name string, typ ColumnType, raw []string, missing []bool, numbers []float64) (*Column, error) {
	if len(missing) != len(raw) {
		return nil, fmt.Errorf("column %q: %d values but %d missing flags", name, len(raw), len(missing))
	}
	if typ.IsNumeric() && len(numbers) != len(raw) {
		return nil, fmt.Errorf("column %q: %d values but %d parsed numbers", name, len(raw), len(numbers))
	}
	col := &Column{
		name:    name,
		typ:     typ,
		raw:     append([]string(nil), raw...),
		missing: append([]bool(nil), missing...),
	}
	if typ.IsNumeric() {
		col.numbers = append([]float64(nil), numbers...)
	}
	return col, nil
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Type() ColumnType { return c.typ }
func (c *Column) Len() int         { return len(c.raw) }

// Raw returns the cell text at row i
func (c *Column) Raw(i int) string {
	return c.raw[i]
}

// IsMissing reports whether row i holds a missing value
func (c *Column) IsMissing(i int) bool {
	return c.missing[i]
}

// Float returns the parsed value at row i for numeric columns
func (c *Column) Float(i int) (float64, bool) {
	if !c.typ.IsNumeric() || c.missing[i] {
		return 0, false
	}
	return c.numbers[i], true
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// Present returns the raw text of every non-missing cell in row order
func (c *Column) Present() []string {
	out := make([]string, 0, len(c.raw)-c.MissingCount())
	for i, v := range c.raw {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Numbers returns the parsed values of every non-missing cell in row order.
// It is empty for non-numeric columns.
func (c *Column) Numbers() []float64 {
	if !c.typ.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, len(c.numbers))
	for i, v := range c.numbers {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Table is an immutable, ordered set of equally long named columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable assembles columns into a table. Column names must be unique and
// all columns must have the same length.
func NewTable(columns []*Column) (*Table, error) {
	t := &Table{
		columns: append([]*Column(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.name)
		}
		t.index[col.name] = i
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.name, col.Len(), t.rows)
		}
	}
	return t, nil
}

func (t *Table) RowCount() int    { return t.rows }
func (t *Table) ColumnCount() int { return len(t.columns) }

// Columns returns the columns in header order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnNames returns the column names in header order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.name
	}
	return names
}

// Row returns the raw cell text of row i in column order
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.raw[i]
	}
	return row
}
