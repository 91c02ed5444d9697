package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/zervakisai/hydraulic-maintenance/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCSVSourceLoad(t *testing.T) {
	rows := strings.Join([]string{
		"cycle,t_in_cycle,PS1,TS1",
		"1,0,1.5,20.1",
		"1,1,,20.2",
		"2,0,bogus,20.3",
	}, "\n")
	path := writeFile(t, t.TempDir(), "high_flat.csv", rows)

	src := &CSVSource{Group: "high", Path: path}
	tb, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tb.Name() != "high" || tb.NumRows() != 3 {
		t.Fatalf("name/rows = %s/%d, want high/3", tb.Name(), tb.NumRows())
	}
	if got := tb.SensorColumns(); len(got) != 2 || got[0] != "PS1" || got[1] != "TS1" {
		t.Fatalf("sensor columns = %v, want [PS1 TS1]", got)
	}
	ps1 := tb.Column("PS1")
	if ps1[0] != 1.5 || !math.IsNaN(ps1[1]) || !math.IsNaN(ps1[2]) {
		t.Fatalf("PS1 = %v, want [1.5 NaN NaN]", ps1)
	}
	if tb.NonNumeric("PS1") != 1 {
		t.Fatalf("non-numeric count = %d, want 1 (empty cell is missing, not non-numeric)", tb.NonNumeric("PS1"))
	}
}

func TestCSVSourceSniffsTSV(t *testing.T) {
	rows := "cycle\tt_in_cycle\tFS1\n1\t0\t7.5\n"
	path := writeFile(t, t.TempDir(), "mid_flat.tsv", rows)
	tb, err := (&CSVSource{Group: "mid", Path: path}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v := tb.Column("FS1"); len(v) != 1 || v[0] != 7.5 {
		t.Fatalf("FS1 = %v, want [7.5]", v)
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := &CSVSource{Group: "low", Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Load()
	var le *LoadError
	if !errors.As(err, &le) || le.Group != "low" {
		t.Fatalf("err = %v, want LoadError for low", err)
	}
}

func TestCSVSourceRejectsMissingMetaColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv", "PS1,TS1\n1.5,20.1\n")
	_, err := (&CSVSource{Group: "high", Path: path}).Load()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want LoadError", err)
	}
	if !strings.Contains(le.Error(), "missing required columns") {
		t.Fatalf("err = %v, want missing-columns detail", le)
	}
}

func TestXLSXSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "low_flat.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]any{
		{"cycle", "t_in_cycle", "TS1"},
		{1, 0, 35.2},
		{1, 1, 35.4},
	}
	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			t.Fatalf("build workbook: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	tb, err := (&XLSXSource{Group: "low", Path: path}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tb.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tb.NumRows())
	}
	ts1 := tb.Column("TS1")
	if len(ts1) != 2 || math.Abs(ts1[0]-35.2) > 1e-9 {
		t.Fatalf("TS1 = %v, want [35.2 35.4]", ts1)
	}
}

func TestSourcesFromConfigPicksStrategyByExtension(t *testing.T) {
	cfg := &config.Global{
		InterimDir: "data/interim",
		Groups: map[string]config.GroupSpec{
			"high": {File: "high_flat.csv"},
			"low":  {File: "low_flat.xlsx"},
		},
	}
	sources := SourcesFromConfig(cfg)
	if _, ok := sources["high"].(*CSVSource); !ok {
		t.Fatalf("high source = %T, want *CSVSource", sources["high"])
	}
	if _, ok := sources["low"].(*XLSXSource); !ok {
		t.Fatalf("low source = %T, want *XLSXSource", sources["low"])
	}
}
