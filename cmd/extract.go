package main

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/pdftext"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

var extractFormat string

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract and score a single report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.Context(), cmd.OutOrStdout(), args[0], pdftext.ExecRunner{})
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFormat, "format", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(extractCmd)
}

// extractResult is the printed form of one document.
type extractResult struct {
	Record model.Record      `json:"record" yaml:"record"`
	Score  *scorer.Breakdown `json:"score,omitempty" yaml:"score,omitempty"`
}

func runExtract(ctx context.Context, out io.Writer, path string, runner pdftext.Runner) error {
	if extractFormat != "yaml" && extractFormat != "json" {
		return eris.Errorf("extract: unsupported format %q", extractFormat)
	}

	env, err := initPipeline("", runner)
	if err != nil {
		return err
	}
	defer env.Close()

	tctx, cancel := context.WithTimeout(ctx, cfg.Batch.TaskTimeout())
	defer cancel()

	doc := model.Document{FileID: filepath.Base(path), Path: path}
	outcome := env.Builder.Build(tctx, doc)

	res := extractResult{Record: outcome.Final()}
	if !cfg.Scratch.Keep {
		res.Record.PhotoFiles = nil
	}
	if b, err := scorer.Score(res.Record, cfg.Scoring); err == nil {
		res.Score = &b
	}

	if err := writeExtractResult(out, res); err != nil {
		return err
	}
	if outcome.Err != nil {
		return eris.Wrapf(outcome.Err, "extract: %s", doc.FileID)
	}
	return nil
}

func writeExtractResult(out io.Writer, res extractResult) error {
	if extractFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "extract: encode json")
		}
		return nil
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "extract: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "extract: encode yaml")
	}
	return nil
}
