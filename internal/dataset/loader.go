package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zervakisai/hydraulic-maintenance/internal/config"
)

// ErrUnknownGroup marks a requested group name with no configured source.
// It is a configuration error, raised before any data is read.
var ErrUnknownGroup = errors.New("unknown group")

// LoadError reports that a group's interim table could not be read.
type LoadError struct {
	Group string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load group %q from %s: %v", e.Group, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source loads one group's interim table into memory.
type Source interface {
	Load() (*Table, error)
}

// SourcesFromConfig builds the group→source map from the configured group
// registry, choosing a loader strategy by file extension.
func SourcesFromConfig(cfg *config.Global) map[string]Source {
	out := make(map[string]Source, len(cfg.Groups))
	for name := range cfg.Groups {
		path, _ := cfg.GroupPath(name)
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			out[name] = &XLSXSource{Group: name, Path: path}
		} else {
			out[name] = &CSVSource{Group: name, Path: path}
		}
	}
	return out
}

// CSVSource reads a delimited text table. A zero Delimiter is sniffed from
// the file extension (.tsv → tab, otherwise comma).
type CSVSource struct {
	Group     string
	Path      string
	Delimiter rune
}

// Load reads the table and verifies the required metadata columns.
func (s *CSVSource) Load() (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: err}
	}
	defer f.Close()

	delim := s.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(s.Path)
	}
	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Group: s.Group, Path: s.Path, Err: errors.New("empty file")}
		}
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: fmt.Errorf("read header: %w", err)}
	}

	t := NewTable(s.Group, header)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Group: s.Group, Path: s.Path, Err: fmt.Errorf("read row %d: %w", t.NumRows()+1, err)}
		}
		t.AppendRow(rec)
	}
	if err := checkMeta(t); err != nil {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: err}
	}
	return t, nil
}

// XLSXSource reads the group table from an Excel workbook. If Sheet is
// empty the first sheet is used.
type XLSXSource struct {
	Group string
	Path  string
	Sheet string
}

// Load reads the workbook and verifies the required metadata columns.
func (s *XLSXSource) Load() (*Table, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: err}
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, &LoadError{Group: s.Group, Path: s.Path, Err: errors.New("workbook has no sheets")}
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: errors.New("empty sheet")}
	}

	t := NewTable(s.Group, rows[0])
	for _, rec := range rows[1:] {
		t.AppendRow(rec)
	}
	if err := checkMeta(t); err != nil {
		return nil, &LoadError{Group: s.Group, Path: s.Path, Err: err}
	}
	return t, nil
}

// checkMeta rejects tables missing the cycle/t_in_cycle metadata columns,
// which every interim flat table carries by construction.
func checkMeta(t *Table) error {
	var missing []string
	for _, c := range MetaColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	// Default to comma; filename heuristic only, to avoid reading twice.
	return ','
}
