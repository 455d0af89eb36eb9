// Package commands implements the snowduck subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/snowduck-labs/snowduck/internal/config"
	"github.com/snowduck-labs/snowduck/internal/engine"
	"github.com/snowduck-labs/snowduck/internal/project"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded configuration in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the CLI logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetConfig retrieves the configuration from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Target = cfg.ActiveTarget()
	return cfg
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// CommandContext bundles the dependencies every command needs: the
// loaded configuration, an engine with the project registered in its
// catalog, and the load result for reporting.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Engine *engine.Engine
	Loaded *project.Result
}

// NewCommandContext loads the project and creates an engine. The
// returned cleanup must be called, typically via defer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	vars, err := resolveVars(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	eng, err := createEngine(cfg, vars, logger)
	if err != nil {
		return nil, nil, err
	}

	loaded, err := project.NewLoader(cfg, logger).Load(eng.Catalog())
	if err != nil {
		_ = eng.Close()
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	for _, le := range loaded.Errors {
		logger.Warn("skipped project file", "path", le.Path, "error", le.Message)
	}

	cleanup := func() {
		_ = eng.Close()
	}
	return &CommandContext{Cfg: cfg, Logger: logger, Engine: eng, Loaded: loaded}, cleanup, nil
}

// resolveVars merges the --vars YAML flag over the project vars.
func resolveVars(cmd *cobra.Command, cfg *config.Config) (map[string]any, error) {
	vars := make(map[string]any, len(cfg.Vars))
	for k, v := range cfg.Vars {
		vars[k] = v
	}

	raw, err := cmd.Flags().GetString("vars")
	if err != nil || raw == "" {
		return vars, nil
	}

	var overrides map[string]any
	if err := yaml.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("invalid --vars value: %w", err)
	}
	for k, v := range overrides {
		vars[k] = v
	}
	return vars, nil
}

func createEngine(cfg *config.Config, vars map[string]any, logger *slog.Logger) (*engine.Engine, error) {
	if dir := filepath.Dir(cfg.StatePath); cfg.StatePath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	target := cfg.Target.ToTarget(cfg.Environment)
	adapterCfg := cfg.Target.AdapterConfig()

	return engine.New(engine.Config{
		Target:        &target,
		AdapterConfig: &adapterCfg,
		StatePath:     cfg.StatePath,
		Vars:          vars,
		Logger:        logger,
	})
}
