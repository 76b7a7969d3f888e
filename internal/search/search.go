// Package search drives the effective multiplication factor keff(p) to a
// target value by root-finding over a model parameter p. Every evaluation is
// one full solver run, so methods are chosen for low evaluation counts and
// the iteration history is kept for reporting.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/critgridgo/internal/ctxlog"
)

// Method names accepted in case configuration.
const (
	MethodBisect   = "bisect"
	MethodFalsePos = "falsepos"
	MethodRidder   = "ridder"
	MethodSecant   = "secant"
)

var (
	// ErrBracket reports that keff at the bracket endpoints lies on the same
	// side of the target, so no bracketed method can proceed.
	ErrBracket = errors.New("search interval does not bracket the target")
	// ErrMaxIterations reports that the iteration budget ran out. The
	// returned outcome still carries the best estimate.
	ErrMaxIterations = errors.New("maximum iterations reached without convergence")
)

// Observation is one solver evaluation at a parameter guess.
type Observation struct {
	Keff   float64
	StdDev float64
}

// EvalFunc evaluates keff at a parameter guess.
type EvalFunc func(ctx context.Context, guess float64) (Observation, error)

// Iteration records a single evaluation in the search history.
type Iteration struct {
	N      int
	Guess  float64
	Keff   float64
	StdDev float64
}

// Options configures a search run.
type Options struct {
	Method    string
	Bracket   *[2]float64
	Guess     *float64
	Target    float64
	Tolerance float64
	// MaxIterations bounds the method's refinement steps; the initial
	// bracket endpoint evaluations are not counted against it.
	MaxIterations int
	// OnIteration, when set, is invoked after every evaluation. Used by the
	// CLI to print the iteration log as the search progresses.
	OnIteration func(Iteration)
}

// Outcome is the result of a search run.
type Outcome struct {
	Root      float64
	Keff      float64
	StdDev    float64
	Converged bool
	// StatisticsLimited is set when the residual at the root is within two
	// standard deviations of zero: tightening the answer further needs more
	// particles, not more iterations.
	StatisticsLimited bool
	Iterations        []Iteration
}

// Run executes the configured search. On ErrMaxIterations the outcome is
// still returned with the best estimate and Converged false.
func Run(ctx context.Context, eval EvalFunc, opts Options) (*Outcome, error) {
	if opts.Tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %g", opts.Tolerance)
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %d", opts.MaxIterations)
	}

	t := &tracker{eval: eval, opts: opts}

	switch opts.Method {
	case MethodBisect, MethodFalsePos, MethodRidder:
		if opts.Bracket == nil {
			return nil, fmt.Errorf("method '%s' requires a bracket", opts.Method)
		}
		switch opts.Method {
		case MethodBisect:
			return t.bisect(ctx, opts.Bracket[0], opts.Bracket[1])
		case MethodFalsePos:
			return t.falsePosition(ctx, opts.Bracket[0], opts.Bracket[1])
		default:
			return t.ridder(ctx, opts.Bracket[0], opts.Bracket[1])
		}
	case MethodSecant:
		if opts.Guess == nil {
			return nil, fmt.Errorf("method '%s' requires an initial guess", opts.Method)
		}
		return t.secant(ctx, *opts.Guess)
	default:
		return nil, fmt.Errorf("unknown search method '%s' (valid: %s, %s, %s, %s)",
			opts.Method, MethodBisect, MethodFalsePos, MethodRidder, MethodSecant)
	}
}

// tracker wraps the evaluator with history keeping, logging, and context
// cancellation checks. f is the residual keff(p) - target.
type tracker struct {
	eval       EvalFunc
	opts       Options
	iterations []Iteration
	last       Observation
}

func (t *tracker) f(ctx context.Context, guess float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	obs, err := t.eval(ctx, guess)
	if err != nil {
		return 0, fmt.Errorf("evaluation at %g failed: %w", guess, err)
	}

	it := Iteration{N: len(t.iterations) + 1, Guess: guess, Keff: obs.Keff, StdDev: obs.StdDev}
	t.iterations = append(t.iterations, it)
	t.last = obs
	if t.opts.OnIteration != nil {
		t.opts.OnIteration(it)
	}
	ctxlog.FromContext(ctx).Info("Search iteration complete.",
		"iteration", it.N, "guess", guess, "keff", obs.Keff, "stddev", obs.StdDev)

	return obs.Keff - t.opts.Target, nil
}

// converged builds the outcome for a root estimate, using the most recent
// observation for the reported keff.
func (t *tracker) converged(ctx context.Context, root float64) (*Outcome, error) {
	out := &Outcome{
		Root:       root,
		Keff:       t.last.Keff,
		StdDev:     t.last.StdDev,
		Converged:  true,
		Iterations: t.iterations,
	}
	if math.Abs(t.last.Keff-t.opts.Target) < 2*t.last.StdDev {
		out.StatisticsLimited = true
		ctxlog.FromContext(ctx).Warn("Search result is statistics-limited.",
			"residual", t.last.Keff-t.opts.Target, "stddev", t.last.StdDev)
	}
	return out, nil
}

// exhausted builds the unconverged outcome wrapped in ErrMaxIterations.
func (t *tracker) exhausted(best float64) (*Outcome, error) {
	out := &Outcome{
		Root:       best,
		Keff:       t.last.Keff,
		StdDev:     t.last.StdDev,
		Iterations: t.iterations,
	}
	return out, fmt.Errorf("%w after %d evaluations, best estimate %g", ErrMaxIterations, len(t.iterations), best)
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}
