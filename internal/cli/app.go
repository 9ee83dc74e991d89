package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/agentboard/internal/checklist"
	"github.com/roach88/agentboard/internal/config"
	"github.com/roach88/agentboard/internal/engine"
	"github.com/roach88/agentboard/internal/store"
)

// app bundles what a command needs to run against the database.
type app struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
}

// loadConfig resolves configuration and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Template != "" {
		cfg.Template = opts.Template
	}
	return cfg, nil
}

// openApp loads config and template, opens the store and builds the engine.
// Callers must call close when done.
func openApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	tmpl := checklist.DefaultTemplate()
	if cfg.Template != "" {
		tmpl, err = checklist.LoadTemplate(cfg.Template)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load checklist template", err)
		}
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &app{
		cfg:   cfg,
		store: st,
		engine: engine.New(st,
			engine.WithTemplate(tmpl),
			engine.WithStallThreshold(cfg.StallThresholdDays),
		),
		out: newFormatter(cmd, opts),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withApp opens the app, runs fn and closes the app.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(commandContext(cmd), a)
}
