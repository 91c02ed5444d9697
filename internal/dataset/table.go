package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Metadata columns every interim group table must carry.
const (
	MetaCycle = "cycle"
	MetaTime  = "t_in_cycle"
)

// MetaColumns lists the required non-sensor columns in order.
var MetaColumns = []string{MetaCycle, MetaTime}

// Table is an in-memory tabular dataset loaded for one group.
// Values are stored column-major; missing or unparseable cells are NaN.
type Table struct {
	name       string
	columns    []string
	cols       [][]float64
	nonNumeric []int
	rows       int
}

// NewTable creates an empty table with the given column names.
func NewTable(name string, columns []string) *Table {
	t := &Table{
		name:       name,
		columns:    make([]string, len(columns)),
		cols:       make([][]float64, len(columns)),
		nonNumeric: make([]int, len(columns)),
	}
	for i, c := range columns {
		t.columns[i] = strings.TrimSpace(c)
	}
	return t
}

// AppendRow parses one record of cells and appends it. Short records are
// padded with missing values; extra cells are ignored.
func (t *Table) AppendRow(cells []string) {
	for j := range t.columns {
		v := math.NaN()
		if j < len(cells) {
			var numeric bool
			v, numeric = parseCell(cells[j])
			if !numeric {
				t.nonNumeric[j]++
			}
		}
		t.cols[j] = append(t.cols[j], v)
	}
	t.rows++
}

// Name returns the table's name (usually the group it was loaded for).
func (t *Table) Name() string { return t.name }

// NumRows returns the number of records.
func (t *Table) NumRows() int { return t.rows }

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string { return t.columns }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the values of the named column, or nil if absent.
func (t *Table) Column(name string) []float64 {
	for i, c := range t.columns {
		if c == name {
			return t.cols[i]
		}
	}
	return nil
}

// NonNumeric returns how many cells of the named column held tokens that
// were neither numeric nor a recognized missing marker.
func (t *Table) NonNumeric(name string) int {
	for i, c := range t.columns {
		if c == name {
			return t.nonNumeric[i]
		}
	}
	return 0
}

// SensorColumns returns all column names except the metadata columns.
func (t *Table) SensorColumns() []string {
	out := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if c == MetaCycle || c == MetaTime {
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseCell converts a raw cell into a float. Missing markers and
// unparseable tokens both come back as NaN; the bool distinguishes a
// genuinely non-numeric token (false) from a number or missing cell (true).
func parseCell(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "", "na", "n/a", "nan", "null":
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}
