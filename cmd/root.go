package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rfscore",
	Short: "Score CREA-RJ inspection reports",
	Long:  "Extracts indicators from batches of inspection report PDFs, scores each report against the coefficient table, and writes spreadsheet and PDF reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := scorer.ValidateTable(c.Scoring); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
