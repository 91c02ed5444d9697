package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zervakisai/hydraulic-maintenance/internal/dataset"
	"github.com/zervakisai/hydraulic-maintenance/internal/quality"
)

var (
	valGroups  []string
	valMaxNaN  float64
	valMaxNeg  int
	valProfile bool
	valSample  int
	valSeed    int64
	valPrefix  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate interim group tables against quality thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		// Flags override config, config overrides built-in defaults.
		thr := quality.ThresholdConfig{
			MaxNaNRatio:      cfg.MaxNaNRatio,
			MaxNegViolations: cfg.MaxNegViolations,
		}
		f := cmd.Flags()
		if f.Changed("max-nan-ratio") {
			thr.MaxNaNRatio = valMaxNaN
		}
		if f.Changed("max-neg-violations") {
			thr.MaxNegViolations = valMaxNeg
		}
		sample := cfg.ProfileSample
		if f.Changed("profile-sample") {
			sample = valSample
		}

		runner := &quality.Runner{
			Sources:       dataset.SourcesFromConfig(cfg),
			Thresholds:    thr,
			NonNegative:   cfg.NonNegativeSensors,
			Profile:       valProfile,
			ProfileSample: sample,
			ProfileSeed:   valSeed,
			ReportsDir:    cfg.ReportsDir,
			ReportPrefix:  valPrefix,
		}
		run, err := runner.Run(valGroups)
		if err != nil {
			return err
		}
		if !run.OverallPass {
			return quality.ErrValidationFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringSliceVar(&valGroups, "groups", []string{"high", "mid", "low"}, "group names to validate, in order")
	validateCmd.Flags().Float64Var(&valMaxNaN, "max-nan-ratio", 0.001, "max allowed overall NaN ratio per group")
	validateCmd.Flags().IntVar(&valMaxNeg, "max-neg-violations", 0, "max allowed negative-value violations per group")
	validateCmd.Flags().BoolVar(&valProfile, "profile", false, "also write a profiling report per group")
	validateCmd.Flags().IntVar(&valSample, "profile-sample", 50000, "rows to sample for the profiling report")
	validateCmd.Flags().Int64Var(&valSeed, "profile-seed", 0, "profiling sample seed (0 = derive from clock)")
	validateCmd.Flags().StringVar(&valPrefix, "report-prefix", "validation", "run report file prefix")
}
