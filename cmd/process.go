package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/batch"
	"github.com/sells-group/rfscore-cli/internal/metrics"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/pdftext"
	"github.com/sells-group/rfscore-cli/internal/report"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

// stampLayout names the artifacts of one run.
const stampLayout = "20060102_150405"

var (
	processOutDir      string
	processCSV         string
	processMetricsFile string
	processRunID       string
)

var processCmd = &cobra.Command{
	Use:   "process [paths...]",
	Short: "Score a batch of inspection report PDFs",
	Long:  "Processes every PDF given (directories are expanded to their *.pdf files), writes the full spreadsheet and the consolidated PDF report, and prints a summary.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runProcess(ctx, cmd.OutOrStdout(), args, pdftext.ExecRunner{})
	},
}

func init() {
	processCmd.Flags().StringVar(&processOutDir, "out-dir", "", "directory for the spreadsheet and PDF report (default: output.dir)")
	processCmd.Flags().StringVar(&processCSV, "csv", "", "also write all records as CSV to this path")
	processCmd.Flags().StringVar(&processMetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path (default: output.metrics_file)")
	processCmd.Flags().StringVar(&processRunID, "run-id", "", "run id used for the scratch directory (default: random UUID)")
	rootCmd.AddCommand(processCmd)
}

// processOutputs lists the files written by a run.
type processOutputs struct {
	XLSX    string
	PDF     string
	CSV     string
	Metrics string
}

func runProcess(ctx context.Context, out io.Writer, args []string, runner pdftext.Runner) error {
	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return eris.New("process: no PDF files found")
	}

	runID := processRunID
	if runID == "" {
		runID = uuid.NewString()
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}

	env, err := initPipeline(runID, runner)
	if err != nil {
		return err
	}
	defer env.Close()

	coord := batch.New(env.Builder,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithTaskTimeout(cfg.Batch.TaskTimeout()),
		batch.WithMetrics(m),
		batch.WithRunID(runID),
	)

	res, runErr := coord.Run(ctx, docs)
	if res == nil {
		return runErr
	}

	if !cfg.Scratch.Keep {
		dropScratchPhotoPaths(res.Records)
	}
	outputs, err := writeOutputs(res, m, time.Now())
	if err != nil {
		return err
	}

	summary := report.Summarize(res.Records, cfg.Scoring)
	fmt.Fprint(out, report.FormatSummary(res.RunID, summary, res.Duration))
	fmt.Fprintf(out, "\n## Output\n- Spreadsheet: %s\n", outputs.XLSX)
	if outputs.PDF != "" {
		fmt.Fprintf(out, "- Report: %s\n", outputs.PDF)
	}
	if outputs.CSV != "" {
		fmt.Fprintf(out, "- CSV: %s\n", outputs.CSV)
	}
	if outputs.Metrics != "" {
		fmt.Fprintf(out, "- Metrics: %s\n", outputs.Metrics)
	}

	return runErr
}

// dropScratchPhotoPaths clears the extracted photo paths, which point into the
// scratch directory removed when the run ends. PhotoCount is kept.
func dropScratchPhotoPaths(records []model.Record) {
	for i := range records {
		records[i].PhotoFiles = nil
	}
}

// collectDocuments expands directories to their PDF files (extension matched
// case-insensitively, sorted by name) and keeps explicit files as given. A file
// reached through more than one argument is collected once.
func collectDocuments(args []string) ([]model.Document, error) {
	var docs []model.Document
	seen := make(map[string]bool)
	add := func(doc model.Document) error {
		abs, err := filepath.Abs(doc.Path)
		if err != nil {
			return eris.Wrapf(err, "process: resolve %s", doc.Path)
		}
		if seen[abs] {
			zap.L().Debug("skipping duplicate input", zap.String("path", doc.Path))
			return nil
		}
		seen[abs] = true
		docs = append(docs, doc)
		return nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "process: stat %s", arg)
		}
		if !info.IsDir() {
			if err := add(model.Document{FileID: filepath.Base(arg), Path: arg}); err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "process: read dir %s", arg)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			if err := add(model.Document{FileID: name, Path: filepath.Join(arg, name)}); err != nil {
				return nil, err
			}
		}
	}
	return docs, nil
}

// writeOutputs writes the spreadsheet of every record, the PDF report when at
// least one record is valid, and the optional CSV and metrics files.
func writeOutputs(res *batch.Result, m *metrics.BatchMetrics, now time.Time) (processOutputs, error) {
	var outputs processOutputs

	dir := processOutDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return outputs, eris.Wrapf(err, "process: create output dir %s", dir)
	}
	stamp := now.Format(stampLayout)

	outputs.XLSX = filepath.Join(dir, "dados_"+stamp+".xlsx")
	if err := writeFile(outputs.XLSX, func(w io.Writer) error {
		return report.WriteXLSX(w, res.Records, cfg.Scoring)
	}); err != nil {
		return outputs, err
	}

	if res.OK > 0 {
		outputs.PDF = filepath.Join(dir, "relatorio_"+stamp+".pdf")
		opts := report.PDFOptionsFrom(cfg.Report, now)
		if err := writeFile(outputs.PDF, func(w io.Writer) error {
			return report.RenderPDF(w, res.Records, cfg.Scoring, opts)
		}); err != nil {
			return outputs, err
		}
	}

	if processCSV != "" {
		outputs.CSV = processCSV
		if err := writeFile(outputs.CSV, func(w io.Writer) error {
			return report.WriteCSV(w, res.Records, cfg.Scoring)
		}); err != nil {
			return outputs, err
		}
	}

	metricsPath := processMetricsFile
	if metricsPath == "" {
		metricsPath = cfg.Output.MetricsFile
	}
	if metricsPath != "" {
		for _, rec := range res.Valid() {
			m.AddScore(rec.PhotoStatus, scorer.Total(rec, cfg.Scoring))
		}
		if err := m.WriteTextfile(metricsPath); err != nil {
			return outputs, err
		}
		outputs.Metrics = metricsPath
	}

	zap.L().Info("process: outputs written",
		zap.String("xlsx", outputs.XLSX),
		zap.String("pdf", outputs.PDF),
		zap.String("csv", outputs.CSV),
		zap.String("metrics", outputs.Metrics),
	)
	return outputs, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "process: create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "process: close %s", path)
	}
	return nil
}
