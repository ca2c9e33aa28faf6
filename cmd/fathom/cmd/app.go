package cmd

import (
	"context"
	"log/slog"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/logging"
	"github.com/fathom-search/fathom/internal/provider"
	"github.com/fathom-search/fathom/internal/search"
	"github.com/fathom-search/fathom/internal/summary"
)

// app bundles the wired engine with its teardown.
type app struct {
	cfg    *config.Config
	engine *search.Engine

	cleanups []func()
}

// Close releases providers and the log writer, last added first.
func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// buildApp loads configuration, sets up logging, builds the provider
// set, and wires the engine. writeLogsToStderr should be true only for
// the MCP server, where stdout carries the protocol.
func buildApp(ctx context.Context, writeLogsToStderr bool) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Server.LogLevel
	logCfg.WriteToStderr = writeLogsToStderr
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg}
	a.cleanups = append(a.cleanups, logCleanup)

	providers, closeProviders, err := provider.Build(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cleanups = append(a.cleanups, func() {
		if err := closeProviders(); err != nil {
			slog.Warn("provider shutdown", slog.String("error", err.Error()))
		}
	})

	var opts []search.Option
	if cfg.Summarizer.Enabled {
		s, err := summary.New(cfg.Summarizer)
		if err != nil {
			slog.Warn("summarizer unavailable, continuing without summaries",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, search.WithSummarizer(s))
		}
	}

	a.engine = search.NewEngine(cfg, providers, opts...)
	return a, nil
}
