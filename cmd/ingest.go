package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zervakisai/hydraulic-maintenance/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [groups...]",
	Short: "Flatten raw sensor matrices into interim group tables",
	Long: `Ingest reads the raw per-sensor matrices (one row per production cycle,
one tab-separated column per sample) and writes one flat table per group
with cycle and t_in_cycle metadata columns. With no arguments, every
configured group is built.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		return ingest.Run(cfg, args, nil)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
