// Package ingest flattens the raw per-sensor matrices into long interim
// tables, one per sampling-rate group. A raw file holds one row per
// production cycle and one tab-separated column per sample; the flat
// table holds one row per measurement with cycle/t_in_cycle metadata.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zervakisai/hydraulic-maintenance/internal/config"
	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
	"github.com/zervakisai/hydraulic-maintenance/internal/utils"
)

// Run flattens the requested groups into interim tables. An empty request
// means every configured group, in the canonical order.
func Run(cfg *config.Global, groups []string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if len(groups) == 0 {
		groups = orderedGroups(cfg)
	}
	if err := utils.EnsureDir(cfg.InterimDir); err != nil {
		return fmt.Errorf("ensure interim dir: %w", err)
	}
	for _, g := range groups {
		spec, ok := cfg.Groups[g]
		if !ok {
			return fmt.Errorf("%w: %q (known groups: %v)", dataset.ErrUnknownGroup, g, cfg.GroupNames())
		}
		if len(spec.Sensors) == 0 {
			return fmt.Errorf("group %q has no sensors configured", g)
		}
		fmt.Fprintf(out, "▶ Building flat table for group %q\n", g)
		path, _ := cfg.GroupPath(g)
		rows, err := flattenGroup(cfg.RawDir, spec.Sensors)
		if err != nil {
			return fmt.Errorf("group %q: %w", g, err)
		}
		if err := writeCSV(path, spec.Sensors, rows); err != nil {
			return fmt.Errorf("group %q: %w", g, err)
		}
		fmt.Fprintf(out, "✓ Wrote %s (%d rows)\n", path, len(rows))
	}
	return nil
}

// flattenGroup reads every sensor matrix and interleaves them into long
// records of [cycle, t_in_cycle, sensor values...]. Raw tokens are kept
// verbatim so no float formatting round-trip happens on ingest.
func flattenGroup(rawDir string, sensors []string) ([][]string, error) {
	var matrices [][][]string
	cycles, samples := 0, 0
	for i, s := range sensors {
		m, err := readMatrix(filepath.Join(rawDir, s+".txt"))
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", s, err)
		}
		if i == 0 {
			cycles = len(m)
			if cycles == 0 {
				return nil, fmt.Errorf("sensor %s: empty file", s)
			}
			samples = len(m[0])
		}
		if len(m) != cycles {
			return nil, fmt.Errorf("sensor %s: %d cycles, expected %d", s, len(m), cycles)
		}
		for row, rec := range m {
			if len(rec) != samples {
				return nil, fmt.Errorf("sensor %s: cycle %d has %d samples, expected %d", s, row+1, len(rec), samples)
			}
		}
		matrices = append(matrices, m)
	}

	rows := make([][]string, 0, cycles*samples)
	for c := 0; c < cycles; c++ {
		for t := 0; t < samples; t++ {
			rec := make([]string, 0, 2+len(sensors))
			rec = append(rec, strconv.Itoa(c+1), strconv.Itoa(t))
			for _, m := range matrices {
				rec = append(rec, m[c][t])
			}
			rows = append(rows, rec)
		}
	}
	return rows, nil
}

// readMatrix reads a tab-separated raw sensor file into token rows.
func readMatrix(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	// High-rate sensors carry 6000 samples per line.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out [][]string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, strings.Split(line, "\t"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func writeCSV(path string, sensors []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{dataset.MetaCycle, dataset.MetaTime}, sensors...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range rows {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// orderedGroups returns the configured groups, canonical trio first.
func orderedGroups(cfg *config.Global) []string {
	var out []string
	seen := map[string]bool{}
	for _, g := range config.DefaultGroupOrder {
		if _, ok := cfg.Groups[g]; ok {
			out = append(out, g)
			seen[g] = true
		}
	}
	for _, g := range cfg.GroupNames() {
		if !seen[g] {
			out = append(out, g)
		}
	}
	return out
}
