package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rfscore-cli/internal/config"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the active scoring coefficient table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeTable(cmd.OutOrStdout(), cfg.Scoring)
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

func writeTable(out io.Writer, table config.ScoringTable) error {
	data, err := yaml.Marshal(map[string]config.ScoringTable{"scoring": table})
	if err != nil {
		return eris.Wrap(err, "table: marshal")
	}
	if _, err := out.Write(data); err != nil {
		return eris.Wrap(err, "table: write")
	}
	return nil
}
