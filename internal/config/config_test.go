package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Point at an empty config file so no user config leaks in.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxNaNRatio != 0.001 || c.MaxNegViolations != 0 {
		t.Fatalf("threshold defaults = %v/%d, want 0.001/0", c.MaxNaNRatio, c.MaxNegViolations)
	}
	if c.ProfileSample != 50000 {
		t.Fatalf("profile_sample = %d, want 50000", c.ProfileSample)
	}
	if len(c.Groups) != 3 {
		t.Fatalf("groups = %v, want default high/mid/low", c.GroupNames())
	}
	if len(c.NonNegativeSensors) == 0 {
		t.Fatalf("nonnegative_sensors default missing")
	}
	for _, s := range c.NonNegativeSensors {
		if strings.HasPrefix(s, "TS") {
			t.Fatalf("temperature sensor %s must not carry the non-negative rule", s)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	content := strings.Join([]string{
		"interim_dir: /data/interim",
		"max_nan_ratio: 0.05",
		"groups:",
		"  custom:",
		"    file: custom.xlsx",
		"    sensors: [X1]",
	}, "\n")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MaxNaNRatio != 0.05 {
		t.Fatalf("max_nan_ratio = %v, want file override 0.05", c.MaxNaNRatio)
	}
	if _, ok := c.Groups["high"]; ok {
		t.Fatalf("explicit groups must replace the defaults, got %v", c.GroupNames())
	}
	got, ok := c.GroupPath("custom")
	if !ok || got != filepath.Join("/data/interim", "custom.xlsx") {
		t.Fatalf("GroupPath = %q/%v", got, ok)
	}
}

func TestGroupPath(t *testing.T) {
	c := &Global{InterimDir: "data/interim", Groups: map[string]GroupSpec{
		"high": {},
	}}
	// Empty file falls back to the <group>_flat.csv convention.
	got, ok := c.GroupPath("high")
	if !ok || got != filepath.Join("data", "interim", "high_flat.csv") {
		t.Fatalf("GroupPath = %q/%v", got, ok)
	}
	if _, ok := c.GroupPath("ultra"); ok {
		t.Fatalf("unknown group must not resolve")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := &Global{InterimDir: "x", MaxNaNRatio: 0.02, Groups: DefaultGroups()}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.InterimDir != "x" || back.MaxNaNRatio != 0.02 {
		t.Fatalf("round trip lost values: %+v", back)
	}
}
