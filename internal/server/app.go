// Package server wires the fishtank process together: it opens the snapshot
// store, starts the mutation serializer and serves the HTTP API until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/dmitrijs2005/fishtank/internal/server/httpapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	core     *Core
	http     *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	core, err := OpenCore(ctx, c, logger, reg)
	if err != nil {
		return nil, err
	}

	hs, err := httpapi.NewServer(c, logger, httpapi.Deps{
		Fish:     core.Fish,
		Users:    core.Users,
		Reports:  core.Reports,
		Registry: reg,
	})
	if err != nil {
		_ = core.Close(ctx)
		return nil, fmt.Errorf("http init error: %w", err)
	}

	return &App{config: c, logger: logger, core: core, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives or the server fails, then drains the
// serializer and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	app.initSignalHandler(cancelFunc)

	runErr := app.http.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.core.Close(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "store shutdown failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	app.logger.Info(shutdownCtx, "App stopped")
	return runErr
}
