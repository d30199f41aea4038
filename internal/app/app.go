package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/argcegar/internal/cegar"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader

	// ready receives the health server's address once it listens. Tests use
	// it to find the port when HealthcheckPort picks a free one.
	ready chan string
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

// Run verifies the configured programs and returns the last result. The
// health server, when enabled, runs alongside and stops with the analysis.
// In watch mode Run only returns once ctx is done.
func (a *App) Run(ctx context.Context) (*cegar.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.logger.Debug("App.Run method started.", "watch", a.config.Watch)

	g, gctx := errgroup.WithContext(ctx)
	if a.config.HealthcheckPort > 0 || a.ready != nil {
		srv := a.newServer()
		g.Go(func() error { return a.serve(gctx, srv, a.ready) })
	} else {
		a.logger.Debug("Health check server not started: disabled.")
	}

	var result *cegar.Result
	g.Go(func() error {
		defer cancel()
		var err error
		if a.config.Watch {
			result, err = a.watch(gctx)
		} else {
			result, err = a.verify(gctx)
		}
		return err
	})

	err := g.Wait()
	a.logger.Debug("App.Run method finished.")
	return result, err
}
