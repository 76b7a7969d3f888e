package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/ctxlog"
	"github.com/vk/critgridgo/internal/registry"
	"github.com/vk/critgridgo/internal/solver"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	runner    solver.Runner
	status    *status
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all case configuration into the format-agnostic model first.
	model, converter, err := loader.Load(ctx, appConfig.CasePath)
	if err != nil {
		// A failure to load the case is a fatal startup error.
		panic(fmt.Errorf("failed to load case configuration: %w", err))
	}
	logger.Debug("Case configuration loaded and translated into unified model.")

	// Create and populate the registry with builder modules.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All builder modules registered.", "count", len(modules))

	// Validate the case against the registry's builder definitions.
	if err := reg.ValidateCase(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Case validation passed.")

	if appConfig.SolverPath != "" {
		model.Solver.Executable = appConfig.SolverPath
	}

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
		runner:    solver.NewOpenMC(model.Solver),
		status:    newStatus(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded case model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// UseRunner replaces the solver runner. Tests inject a stub solver here.
func (a *App) UseRunner(r solver.Runner) {
	a.runner = r
}
