package main

import (
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/pdftext"
	"github.com/sells-group/rfscore-cli/internal/photo"
	"github.com/sells-group/rfscore-cli/internal/record"
	"github.com/sells-group/rfscore-cli/internal/scratch"
)

// pipelineEnv holds the scratch workspace and the record builder shared by
// the process and extract commands.
type pipelineEnv struct {
	Workspace *scratch.Workspace
	Builder   *record.Builder
}

// Close removes the scratch workspace unless configured to keep it.
func (pe *pipelineEnv) Close() {
	if pe.Workspace == nil {
		return
	}
	if err := pe.Workspace.Cleanup(); err != nil {
		zap.L().Warn("cleanup scratch workspace", zap.Error(err))
	}
}

// initPipeline creates the run's scratch workspace and wires the text source,
// photo locator and record builder. Callers should defer env.Close().
func initPipeline(runID string, runner pdftext.Runner) (*pipelineEnv, error) {
	ws, err := scratch.New(cfg.Scratch, runID)
	if err != nil {
		return nil, err
	}

	src := pdftext.New(cfg.Text, cfg.Photos, runner)
	locator := photo.New(cfg.Photos, src)
	builder := record.NewBuilder(src, locator, ws.PhotoDir)

	zap.L().Debug("pipeline initialized",
		zap.String("scratch", ws.Dir()),
		zap.Bool("photos", cfg.Photos.Enabled),
	)

	return &pipelineEnv{Workspace: ws, Builder: builder}, nil
}
