package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/argcegar/internal/cegar"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/report"
)

// verify runs one complete verification and writes its report.
func (a *App) verify(ctx context.Context) (*cegar.Result, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	model, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load programs: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "files", len(model.Files))

	analysis := model.Analysis
	if analysis == nil {
		analysis = config.DefaultAnalysis()
	}
	a.config.Overrides.Apply(analysis)
	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	prog, err := cfa.Build(ctx, model.Program)
	if err != nil {
		return nil, err
	}
	analyzer, err := cegar.New(prog, analysis)
	if err != nil {
		return nil, err
	}
	res, err := analyzer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("verification of %q failed: %w", prog.Name, err)
	}

	if err := report.New(runID, prog.Name, res).Encode(a.outW, a.config.ReportFormat); err != nil {
		return nil, err
	}
	return res, nil
}
