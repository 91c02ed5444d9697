package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zervakisai/hydraulic-maintenance/internal/config"
	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
)

func testConfig(t *testing.T) *config.Global {
	t.Helper()
	tmp := t.TempDir()
	return &config.Global{
		RawDir:     filepath.Join(tmp, "raw"),
		InterimDir: filepath.Join(tmp, "interim"),
		Groups: map[string]config.GroupSpec{
			"mid": {File: "mid_flat.csv", Sensors: []string{"FS1", "FS2"}},
		},
	}
}

func writeRaw(t *testing.T, dir, sensor string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir raw: %v", err)
	}
	path := filepath.Join(dir, sensor+".txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write raw %s: %v", sensor, err)
	}
}

func TestRunFlattensGroup(t *testing.T) {
	cfg := testConfig(t)
	// Two cycles, three samples per cycle.
	writeRaw(t, cfg.RawDir, "FS1", []string{"1.1\t1.2\t1.3", "2.1\t2.2\t2.3"})
	writeRaw(t, cfg.RawDir, "FS2", []string{"7.1\t7.2\t7.3", "8.1\t8.2\t8.3"})

	var out bytes.Buffer
	if err := Run(cfg, []string{"mid"}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	path, _ := cfg.GroupPath("mid")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open flat table: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read flat table: %v", err)
	}
	want := [][]string{
		{"cycle", "t_in_cycle", "FS1", "FS2"},
		{"1", "0", "1.1", "7.1"},
		{"1", "1", "1.2", "7.2"},
		{"1", "2", "1.3", "7.3"},
		{"2", "0", "2.1", "8.1"},
		{"2", "1", "2.2", "8.2"},
		{"2", "2", "2.3", "8.3"},
	}
	if len(records) != len(want) {
		t.Fatalf("rows = %d, want %d", len(records), len(want))
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Fatalf("row %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestRunFlatTableLoadsBack(t *testing.T) {
	cfg := testConfig(t)
	writeRaw(t, cfg.RawDir, "FS1", []string{"1.1\t1.2", "2.1\t2.2"})
	writeRaw(t, cfg.RawDir, "FS2", []string{"7.1\t7.2", "8.1\t8.2"})
	if err := Run(cfg, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	path, _ := cfg.GroupPath("mid")
	tb, err := (&dataset.CSVSource{Group: "mid", Path: path}).Load()
	if err != nil {
		t.Fatalf("load flat table back: %v", err)
	}
	if tb.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", tb.NumRows())
	}
	if got := tb.SensorColumns(); len(got) != 2 {
		t.Fatalf("sensor columns = %v, want FS1/FS2", got)
	}
}

func TestRunRejectsUnknownGroup(t *testing.T) {
	cfg := testConfig(t)
	if err := Run(cfg, []string{"ultra"}, &bytes.Buffer{}); !errors.Is(err, dataset.ErrUnknownGroup) {
		t.Fatalf("err = %v, want ErrUnknownGroup", err)
	}
}

func TestRunRejectsCycleMismatch(t *testing.T) {
	cfg := testConfig(t)
	writeRaw(t, cfg.RawDir, "FS1", []string{"1.1\t1.2", "2.1\t2.2"})
	writeRaw(t, cfg.RawDir, "FS2", []string{"7.1\t7.2"})
	err := Run(cfg, []string{"mid"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "cycles") {
		t.Fatalf("err = %v, want cycle count mismatch", err)
	}
}

func TestRunMissingSensorFile(t *testing.T) {
	cfg := testConfig(t)
	writeRaw(t, cfg.RawDir, "FS1", []string{"1.1\t1.2"})
	err := Run(cfg, []string{"mid"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "FS2") {
		t.Fatalf("err = %v, want missing FS2", err)
	}
}
