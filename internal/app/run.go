package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/vk/critgridgo/internal/ctxlog"
	"github.com/vk/critgridgo/internal/deck"
	"github.com/vk/critgridgo/internal/registry"
	"github.com/vk/critgridgo/internal/report"
	"github.com/vk/critgridgo/internal/search"
	"github.com/vk/critgridgo/internal/sweep"
	"github.com/vk/critgridgo/modules/upload"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.StatusPort > 0 {
		a.startStatusServer(appConfig.StatusPort)
	}

	mb := a.model.Model
	builder, _ := a.registry.Builder(mb.BuilderType)

	input := builder.NewInput()
	if err := a.converter.DecodeBody(ctx, input, mb.Arguments, builder.Inputs, nil); err != nil {
		return fmt.Errorf("failed to decode arguments for model '%s': %w", mb.Name, err)
	}
	a.logger.Debug("Builder arguments decoded.", "builder", mb.BuilderType, "model", mb.Name)

	if err := os.MkdirAll(appConfig.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", appConfig.OutDir, err)
	}

	if appConfig.ValidateOnly {
		return a.validateOnly(ctx, appConfig, builder, input)
	}

	workRoot := a.model.Solver.WorkDir
	if workRoot == "" {
		workRoot = filepath.Join(appConfig.OutDir, "runs")
	}
	eval := a.newEvaluator(builder, input, workRoot)

	summary := &report.Summary{
		Model:     mb.Name,
		Builder:   mb.BuilderType,
		Parameter: a.parameterName(builder),
	}
	var plotPoints []report.XY
	target := 1.0
	var runErr error

	if cfg := a.model.Search; cfg != nil {
		target = cfg.Target
		a.status.setPhase("searching")
		a.logger.Info("🔎 Criticality search starting.",
			"parameter", cfg.Parameter, "method", cfg.Method, "target", cfg.Target)

		outcome, err := search.Run(ctx, eval, search.Options{
			Method:        cfg.Method,
			Bracket:       cfg.Bracket,
			Guess:         cfg.Guess,
			Target:        cfg.Target,
			Tolerance:     cfg.Tolerance,
			MaxIterations: cfg.MaxIter,
			OnIteration: func(it search.Iteration) {
				fmt.Fprintln(a.outW, report.IterationLine(it))
			},
		})
		if err != nil && !errors.Is(err, search.ErrMaxIterations) {
			return fmt.Errorf("criticality search failed: %w", err)
		}
		runErr = err

		summary.Search = &report.SearchSummary{
			Method:            cfg.Method,
			Target:            cfg.Target,
			CriticalValue:     outcome.Root,
			Keff:              outcome.Keff,
			StdDev:            outcome.StdDev,
			Converged:         outcome.Converged,
			StatisticsLimited: outcome.StatisticsLimited,
			Evaluations:       len(outcome.Iterations),
		}
		for _, it := range outcome.Iterations {
			plotPoints = append(plotPoints, report.XY{X: it.Guess, Y: it.Keff, Err: it.StdDev})
		}
		if err := report.WriteIterations(appConfig.OutDir, cfg.Parameter, outcome.Iterations); err != nil {
			return err
		}
		if outcome.Converged {
			fmt.Fprintf(a.outW, "Critical %s = %.6g (keff %.5f +/- %.5f)\n",
				cfg.Parameter, outcome.Root, outcome.Keff, outcome.StdDev)
			a.logger.Info("🏁 Criticality search finished.",
				"root", outcome.Root, "evaluations", len(outcome.Iterations))
		} else {
			a.logger.Error("Criticality search did not converge.", "best", outcome.Root, "error", err)
		}
	}

	if cfg := a.model.Sweep; cfg != nil {
		a.status.setPhase("sweeping")
		values := cfg.Values
		if len(values) == 0 {
			values = sweep.Grid(*cfg.From, *cfg.To, cfg.Points)
		}
		workers := cfg.Workers
		if workers <= 0 {
			workers = appConfig.Workers
		}
		a.logger.Info("🚀 Parameter sweep starting.", "points", len(values), "workers", workers)

		points, err := sweep.Run(ctx, eval, values, workers)
		if err != nil {
			return fmt.Errorf("parameter sweep failed: %w", err)
		}
		summary.Sweep = points
		for _, pt := range points {
			plotPoints = append(plotPoints, report.XY{X: pt.Value, Y: pt.Keff, Err: pt.StdDev})
		}
		a.logger.Info("🏁 Parameter sweep finished.", "points", len(points))
	}

	a.status.setPhase("reporting")
	if err := report.WriteSummary(appConfig.OutDir, summary); err != nil {
		return err
	}
	if len(plotPoints) > 0 {
		plot := report.Plot{
			Title:  fmt.Sprintf("keff vs %s (%s)", summary.Parameter, mb.Name),
			XLabel: summary.Parameter,
			YLabel: "keff",
			Target: target,
			Points: plotPoints,
		}
		if err := report.WriteScatter(appConfig.OutDir, plot); err != nil {
			return err
		}
	}
	a.logger.Info("Report written.", "dir", appConfig.OutDir)

	if pub := a.model.Publish; pub != nil {
		files := pub.Files
		if len(files) == 0 {
			files = a.defaultArtifacts(appConfig.OutDir)
		}
		if err := upload.Bundle(ctx, pub.URL, appConfig.OutDir, files); err != nil {
			return fmt.Errorf("failed to publish report bundle: %w", err)
		}
	}

	a.status.setPhase("done")
	a.logger.Debug("App.Run method finished.")
	return runErr
}

// validateOnly builds and schema-validates the decks at a representative
// parameter value without invoking the solver.
func (a *App) validateOnly(ctx context.Context, appConfig *Config, builder *registry.RegisteredBuilder, input any) error {
	param, err := a.representativeParameter()
	if err != nil {
		return err
	}

	c, err := builder.Fn(ctx, input, param)
	if err != nil {
		return fmt.Errorf("builder '%s' failed at %s=%g: %w",
			a.model.Model.BuilderType, a.parameterName(builder), param, err)
	}
	dir := filepath.Join(appConfig.OutDir, "deck")
	if err := c.Write(ctx, dir, a.runSettings()); err != nil {
		return err
	}
	a.logger.Info("Decks validated and written.", "dir", dir, "parameter", param)
	fmt.Fprintf(a.outW, "Valid decks written to %s (at %s = %g)\n", dir, a.parameterName(builder), param)
	return nil
}

// representativeParameter picks the parameter value used for validate-only
// deck generation: the search guess, the bracket midpoint, or the first
// sweep value.
func (a *App) representativeParameter() (float64, error) {
	if s := a.model.Search; s != nil {
		if s.Guess != nil {
			return *s.Guess, nil
		}
		if s.Bracket != nil {
			return s.Bracket[0] + (s.Bracket[1]-s.Bracket[0])/2, nil
		}
	}
	if s := a.model.Sweep; s != nil {
		if len(s.Values) > 0 {
			return s.Values[0], nil
		}
		if s.From != nil {
			return *s.From, nil
		}
	}
	return 0, fmt.Errorf("validate mode needs a search or sweep block to supply a parameter value")
}

// newEvaluator returns the EvalFunc shared by search and sweep: build the
// case at the guess, write and validate the decks in a fresh run directory,
// execute the solver, and surface keff.
func (a *App) newEvaluator(builder *registry.RegisteredBuilder, input any, workRoot string) search.EvalFunc {
	var counter atomic.Int64
	return func(ctx context.Context, guess float64) (search.Observation, error) {
		n := counter.Add(1)
		logger := ctxlog.FromContext(ctx).With("evaluation", n, "guess", guess)

		c, err := builder.Fn(ctx, input, guess)
		if err != nil {
			return search.Observation{}, fmt.Errorf("builder '%s' failed at %g: %w",
				a.model.Model.BuilderType, guess, err)
		}

		dir := filepath.Join(workRoot, fmt.Sprintf("eval-%03d", n))
		if err := c.Write(ctx, dir, a.runSettings()); err != nil {
			return search.Observation{}, err
		}
		if err := a.writeRunMetadata(dir, n, guess); err != nil {
			return search.Observation{}, err
		}

		a.status.evaluating(n, guess)
		logger.Debug("Evaluation dispatched to solver.", "dir", dir)

		result, err := a.runner.Run(ctx, dir)
		if err != nil {
			return search.Observation{}, err
		}
		a.status.observed(n, guess, result.Keff, result.StdDev)
		return search.Observation{Keff: result.Keff, StdDev: result.StdDev}, nil
	}
}

func (a *App) runSettings() deck.RunSettings {
	s := a.model.Settings
	return deck.RunSettings{
		Particles:           s.Particles,
		Batches:             s.Batches,
		Inactive:            s.Inactive,
		GenerationsPerBatch: s.GenerationsPerBatch,
		Seed:                s.Seed,
	}
}

// parameterName prefers the case's search block label over the builder's
// generic parameter description.
func (a *App) parameterName(builder *registry.RegisteredBuilder) string {
	if a.model.Search != nil && a.model.Search.Parameter != "" {
		return a.model.Search.Parameter
	}
	return builder.Parameter
}

func (a *App) defaultArtifacts(outDir string) []string {
	files := []string{report.SummaryFile}
	for _, name := range []string{report.IterationsFile, report.PlotFile} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err == nil {
			files = append(files, name)
		}
	}
	return files
}

// runMetadata is dropped next to each generated deck so a run directory is
// self-describing.
type runMetadata struct {
	Model      string  `json:"model"`
	Builder    string  `json:"builder"`
	Evaluation int64   `json:"evaluation"`
	Parameter  float64 `json:"parameter"`
}

func (a *App) writeRunMetadata(dir string, n int64, guess float64) error {
	meta := runMetadata{
		Model:      a.model.Model.Name,
		Builder:    a.model.Model.BuilderType,
		Evaluation: n,
		Parameter:  guess,
	}
	body, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	path := filepath.Join(dir, "critgridgo.json")
	if err := os.WriteFile(path, append(body, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	return nil
}
