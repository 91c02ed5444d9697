package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// GroupSpec describes one named partition of the interim dataset.
type GroupSpec struct {
	// File is the interim table for the group, relative to interim_dir.
	File string `mapstructure:"file" yaml:"file"`
	// Sensors are the raw sensor names flattened into the group table.
	Sensors []string `mapstructure:"sensors" yaml:"sensors"`
}

// Global configuration structure.
type Global struct {
	RawDir     string `mapstructure:"raw_dir" yaml:"raw_dir"`
	InterimDir string `mapstructure:"interim_dir" yaml:"interim_dir"`
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir"`

	// Groups maps group name to its data source. The keys are the only
	// group names the engine knows; anything else is a configuration error.
	Groups map[string]GroupSpec `mapstructure:"groups" yaml:"groups"`

	// NonNegativeSensors lists base sensor names where a value below zero
	// is a constraint violation. Matching is by base name before '_'.
	NonNegativeSensors []string `mapstructure:"nonnegative_sensors" yaml:"nonnegative_sensors"`

	// Validation thresholds.
	MaxNaNRatio      float64 `mapstructure:"max_nan_ratio" yaml:"max_nan_ratio"`
	MaxNegViolations int     `mapstructure:"max_neg_violations" yaml:"max_neg_violations"`

	// ProfileSample is the default row cap for profiling reports.
	ProfileSample int `mapstructure:"profile_sample" yaml:"profile_sample"`
}

// DefaultGroupOrder is the order groups are validated in when the caller
// does not request a specific set.
var DefaultGroupOrder = []string{"high", "mid", "low"}

// DefaultGroups returns the sensor-group layout of the hydraulic rig:
// sensors partitioned by sampling rate (100 Hz / 10 Hz / 1 Hz).
func DefaultGroups() map[string]GroupSpec {
	return map[string]GroupSpec{
		"high": {File: "high_flat.csv", Sensors: []string{"PS1", "PS2", "PS3", "PS4", "PS5", "PS6", "EPS1"}},
		"mid":  {File: "mid_flat.csv", Sensors: []string{"FS1", "FS2"}},
		"low":  {File: "low_flat.csv", Sensors: []string{"TS1", "TS2", "TS3", "TS4", "VS1", "CE", "CP", "SE"}},
	}
}

// DefaultNonNegativeSensors lists the pressure/flow/power sensors that can
// never legitimately read below zero. Temperature sensors are excluded.
func DefaultNonNegativeSensors() []string {
	return []string{"PS1", "PS2", "PS3", "PS4", "PS5", "PS6", "EPS1", "FS1", "FS2", "VS1", "CE", "CP", "SE"}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.hydromaint/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".hydromaint")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HYDROMAINT")
	v.AutomaticEnv()

	// Defaults mirror the pipeline's on-disk conventions.
	v.SetDefault("raw_dir", filepath.Join("data", "raw"))
	v.SetDefault("interim_dir", filepath.Join("data", "interim"))
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("nonnegative_sensors", DefaultNonNegativeSensors())
	v.SetDefault("max_nan_ratio", 0.001)
	v.SetDefault("max_neg_violations", 0)
	v.SetDefault("profile_sample", 50000)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".hydromaint")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Groups) == 0 {
		c.Groups = DefaultGroups()
	}
	return &c, nil
}

// GroupNames returns the known group names sorted alphabetically.
func (c *Global) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for n := range c.Groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GroupPath resolves the interim table path for a known group.
func (c *Global) GroupPath(group string) (string, bool) {
	spec, ok := c.Groups[group]
	if !ok {
		return "", false
	}
	file := spec.File
	if file == "" {
		file = group + "_flat.csv"
	}
	return filepath.Join(c.InterimDir, file), true
}
