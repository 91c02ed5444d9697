package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/zervakisai/hydraulic-maintenance/internal/config"
	"github.com/zervakisai/hydraulic-maintenance/internal/quality"
)

var (
	// Global flags
	cfgFile string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "hydromaint",
	Short: "Hydromaint: data-quality gate for the hydraulic maintenance pipeline",
	Long: `Hydromaint ingests raw hydraulic-rig sensor matrices into flat interim
tables and validates their statistical quality (missing values, negative
readings) against configurable thresholds before they feed model training.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode translates a command error into the process exit status:
// 1 when validation ran to completion and the verdict is fail, 2 when the
// run could not complete at all (configuration or data-load errors).
func exitCode(err error) int {
	if errors.Is(err, quality.ErrValidationFailed) {
		return 1
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.hydromaint/config.yaml)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here; commands that need config report it themselves.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}
