// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/ctxlog"
	"github.com/vk/critgridgo/internal/schema"
)

// Defaults applied when the corresponding case blocks or attributes are
// omitted. The run settings mirror a conventional eigenvalue deck.
const (
	defaultParticles  = 1000
	defaultBatches    = 100
	defaultInactive   = 10
	defaultExecutable = "openmc"
	defaultMethod     = "bisect"
	defaultTarget     = 1.0
	defaultTolerance  = 1e-2
	defaultMaxIter    = 50
)

// translate converts the merged case file schema into the agnostic model and
// enforces the singleton constraints the per-file schema cannot express.
func (l *Loader) translate(ctx context.Context, cf *schema.CaseFile) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{}

	switch len(cf.Models) {
	case 0:
		return nil, fmt.Errorf("case defines no model block")
	case 1:
		model.Model = translateModel(cf.Models[0])
	default:
		return nil, fmt.Errorf("case defines %d model blocks, expected exactly one", len(cf.Models))
	}

	settings, err := translateSettings(cf.Settings)
	if err != nil {
		return nil, err
	}
	model.Settings = settings

	solver, err := translateSolver(cf.Solvers)
	if err != nil {
		return nil, err
	}
	model.Solver = solver

	if len(cf.Searches) > 1 {
		return nil, fmt.Errorf("case defines %d search blocks, expected at most one", len(cf.Searches))
	}
	if len(cf.Searches) == 1 {
		search, err := translateSearch(cf.Searches[0])
		if err != nil {
			return nil, err
		}
		model.Search = search
	}

	if len(cf.Sweeps) > 1 {
		return nil, fmt.Errorf("case defines %d sweep blocks, expected at most one", len(cf.Sweeps))
	}
	if len(cf.Sweeps) == 1 {
		sweep, err := translateSweep(cf.Sweeps[0])
		if err != nil {
			return nil, err
		}
		model.Sweep = sweep
	}

	if len(cf.Publish) > 1 {
		return nil, fmt.Errorf("case defines %d publish blocks, expected at most one", len(cf.Publish))
	}
	if len(cf.Publish) == 1 {
		model.Publish = &config.Publish{URL: cf.Publish[0].URL, Files: cf.Publish[0].Files}
	}

	if model.Search == nil && model.Sweep == nil {
		logger.Warn("Case defines neither a search nor a sweep block; only deck validation is possible.")
	}

	return model, nil
}

// translateModel converts the HCL-specific model schema into the agnostic model.
func translateModel(m *schema.Model) *config.ModelBlock {
	return &config.ModelBlock{
		BuilderType: m.BuilderType,
		Name:        m.Name,
		Arguments:   extractBodyAttributes(m.Arguments),
	}
}

func translateSettings(blocks []*schema.Settings) (*config.Settings, error) {
	if len(blocks) > 1 {
		return nil, fmt.Errorf("case defines %d settings blocks, expected at most one", len(blocks))
	}
	settings := &config.Settings{
		Particles: defaultParticles,
		Batches:   defaultBatches,
		Inactive:  defaultInactive,
	}
	if len(blocks) == 0 {
		return settings, nil
	}
	s := blocks[0]
	settings.Particles = s.Particles
	settings.Batches = s.Batches
	if s.Inactive > 0 {
		settings.Inactive = s.Inactive
	}
	settings.GenerationsPerBatch = s.GenerationsPerBatch
	settings.Seed = s.Seed

	if settings.Particles <= 0 {
		return nil, fmt.Errorf("settings: particles must be positive, got %d", settings.Particles)
	}
	if settings.Batches <= settings.Inactive {
		return nil, fmt.Errorf("settings: batches (%d) must exceed inactive batches (%d)", settings.Batches, settings.Inactive)
	}
	return settings, nil
}

func translateSolver(blocks []*schema.Solver) (*config.Solver, error) {
	if len(blocks) > 1 {
		return nil, fmt.Errorf("case defines %d solver blocks, expected at most one", len(blocks))
	}
	solver := &config.Solver{Executable: defaultExecutable}
	if len(blocks) == 0 {
		return solver, nil
	}
	s := blocks[0]
	if s.Executable != "" {
		solver.Executable = s.Executable
	}
	solver.CrossSections = s.CrossSections
	solver.WorkDir = s.WorkDir
	solver.ExtraArgs = s.ExtraArgs
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return nil, fmt.Errorf("solver: invalid timeout '%s': %w", s.Timeout, err)
		}
		solver.Timeout = d
	}
	return solver, nil
}

func translateSearch(s *schema.Search) (*config.Search, error) {
	search := &config.Search{
		Parameter: s.Parameter,
		Method:    defaultMethod,
		Target:    defaultTarget,
		Tolerance: defaultTolerance,
		MaxIter:   defaultMaxIter,
	}
	if s.Method != "" {
		search.Method = s.Method
	}
	if s.Target != nil {
		search.Target = *s.Target
	}
	if s.Tolerance != nil {
		search.Tolerance = *s.Tolerance
	}
	if s.MaxIter != nil {
		search.MaxIter = *s.MaxIter
	}
	search.Guess = s.Guess

	if len(s.Bracket) > 0 {
		if len(s.Bracket) != 2 {
			return nil, fmt.Errorf("search '%s': bracket must contain exactly two values, got %d", s.Parameter, len(s.Bracket))
		}
		if s.Bracket[0] >= s.Bracket[1] {
			return nil, fmt.Errorf("search '%s': bracket lower bound %g must be below upper bound %g", s.Parameter, s.Bracket[0], s.Bracket[1])
		}
		search.Bracket = &[2]float64{s.Bracket[0], s.Bracket[1]}
	}
	if search.Bracket == nil && search.Guess == nil {
		return nil, fmt.Errorf("search '%s': either a bracket or an initial guess is required", s.Parameter)
	}
	if search.Tolerance <= 0 {
		return nil, fmt.Errorf("search '%s': tolerance must be positive, got %g", s.Parameter, search.Tolerance)
	}
	if search.MaxIter <= 0 {
		return nil, fmt.Errorf("search '%s': max_iterations must be positive, got %d", s.Parameter, search.MaxIter)
	}
	return search, nil
}

func translateSweep(s *schema.Sweep) (*config.Sweep, error) {
	sweep := &config.Sweep{
		From:   s.From,
		To:     s.To,
		Values: s.Values,
	}
	if s.Points != nil {
		sweep.Points = *s.Points
	}
	if s.Workers != nil {
		sweep.Workers = *s.Workers
	}

	hasRange := s.From != nil || s.To != nil || s.Points != nil
	hasValues := len(s.Values) > 0
	switch {
	case hasRange && hasValues:
		return nil, fmt.Errorf("sweep: from/to/points and values are mutually exclusive")
	case hasValues:
		// explicit grid, nothing further to check
	case hasRange:
		if s.From == nil || s.To == nil {
			return nil, fmt.Errorf("sweep: from and to are both required for a range sweep")
		}
		if sweep.Points < 2 {
			return nil, fmt.Errorf("sweep: points must be at least 2, got %d", sweep.Points)
		}
		if *s.From >= *s.To {
			return nil, fmt.Errorf("sweep: from %g must be below to %g", *s.From, *s.To)
		}
	default:
		return nil, fmt.Errorf("sweep: either values or from/to/points is required")
	}
	if sweep.Workers < 0 {
		return nil, fmt.Errorf("sweep: workers must not be negative, got %d", sweep.Workers)
	}
	return sweep, nil
}

// extractBodyAttributes flattens an arguments block into a map of named
// expressions. A nil block yields an empty map.
func extractBodyAttributes(args *schema.ModelArgs) map[string]hcl.Expression {
	out := make(map[string]hcl.Expression)
	if args == nil || args.Body == nil {
		return out
	}
	attrs, _ := args.Body.JustAttributes()
	for name, attr := range attrs {
		out[name] = attr.Expr
	}
	return out
}
