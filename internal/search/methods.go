package search

import (
	"context"
	"fmt"
	"math"
)

// bracketEndpoints evaluates the residual at both bracket ends and verifies
// they straddle the target.
func (t *tracker) bracketEndpoints(ctx context.Context, lo, hi float64) (flo, fhi float64, err error) {
	flo, err = t.f(ctx, lo)
	if err != nil {
		return 0, 0, err
	}
	fhi, err = t.f(ctx, hi)
	if err != nil {
		return 0, 0, err
	}
	if flo != 0 && fhi != 0 && sameSign(flo, fhi) {
		return 0, 0, fmt.Errorf("%w: keff(%g)=%.5f and keff(%g)=%.5f are on the same side of %g",
			ErrBracket, lo, flo+t.opts.Target, hi, fhi+t.opts.Target, t.opts.Target)
	}
	return flo, fhi, nil
}

// bisect halves the bracket until its half-width falls below the tolerance.
func (t *tracker) bisect(ctx context.Context, lo, hi float64) (*Outcome, error) {
	flo, fhi, err := t.bracketEndpoints(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	if flo == 0 {
		return t.converged(ctx, lo)
	}
	if fhi == 0 {
		return t.converged(ctx, hi)
	}

	for i := 0; i < t.opts.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fm, err := t.f(ctx, mid)
		if err != nil {
			return nil, err
		}
		if fm == 0 {
			return t.converged(ctx, mid)
		}
		if sameSign(fm, flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
		if (hi-lo)/2 < t.opts.Tolerance {
			return t.converged(ctx, mid)
		}
	}
	return t.exhausted(lo + (hi-lo)/2)
}

// falsePosition interpolates the root linearly between the bracket ends,
// keeping the bracket valid. Converges when successive estimates are closer
// than the tolerance.
func (t *tracker) falsePosition(ctx context.Context, lo, hi float64) (*Outcome, error) {
	flo, fhi, err := t.bracketEndpoints(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	if flo == 0 {
		return t.converged(ctx, lo)
	}
	if fhi == 0 {
		return t.converged(ctx, hi)
	}

	prev := math.NaN()
	for i := 0; i < t.opts.MaxIterations; i++ {
		x := hi - fhi*(hi-lo)/(fhi-flo)
		fx, err := t.f(ctx, x)
		if err != nil {
			return nil, err
		}
		if fx == 0 || (!math.IsNaN(prev) && math.Abs(x-prev) < t.opts.Tolerance) {
			return t.converged(ctx, x)
		}
		if sameSign(fx, flo) {
			lo, flo = x, fx
		} else {
			hi, fhi = x, fx
		}
		prev = x
	}
	return t.exhausted(prev)
}

// ridder refines the bracket with an exponential correction to the midpoint
// estimate. Roughly quadratic convergence at two evaluations per step.
func (t *tracker) ridder(ctx context.Context, lo, hi float64) (*Outcome, error) {
	flo, fhi, err := t.bracketEndpoints(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	if flo == 0 {
		return t.converged(ctx, lo)
	}
	if fhi == 0 {
		return t.converged(ctx, hi)
	}

	prev := math.NaN()
	for i := 0; i < t.opts.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fm, err := t.f(ctx, mid)
		if err != nil {
			return nil, err
		}
		s := math.Sqrt(fm*fm - flo*fhi)
		if s == 0 {
			return t.converged(ctx, mid)
		}
		step := (mid - lo) * fm / s
		if flo < fhi {
			step = -step
		}
		x := mid + step
		fx, err := t.f(ctx, x)
		if err != nil {
			return nil, err
		}
		if fx == 0 || (!math.IsNaN(prev) && math.Abs(x-prev) < t.opts.Tolerance) {
			return t.converged(ctx, x)
		}

		switch {
		case !sameSign(fm, fx):
			lo, flo = mid, fm
			hi, fhi = x, fx
		case !sameSign(flo, fx):
			hi, fhi = x, fx
		default:
			lo, flo = x, fx
		}
		if hi-lo < t.opts.Tolerance {
			return t.converged(ctx, x)
		}
		prev = x
	}
	return t.exhausted(prev)
}

// secant iterates from an initial guess without a bracket. The second seed
// is offset five percent from the guess (or by the tolerance for a zero
// guess).
func (t *tracker) secant(ctx context.Context, guess float64) (*Outcome, error) {
	x0 := guess
	x1 := guess + math.Max(math.Abs(guess)*0.05, t.opts.Tolerance)

	f0, err := t.f(ctx, x0)
	if err != nil {
		return nil, err
	}
	if f0 == 0 {
		return t.converged(ctx, x0)
	}
	f1, err := t.f(ctx, x1)
	if err != nil {
		return nil, err
	}

	for i := 0; i < t.opts.MaxIterations; i++ {
		if f1 == f0 {
			return nil, fmt.Errorf("secant stalled: keff is flat between %g and %g", x0, x1)
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if math.Abs(x2-x1) < t.opts.Tolerance {
			if _, err := t.f(ctx, x2); err != nil {
				return nil, err
			}
			return t.converged(ctx, x2)
		}
		f2, err := t.f(ctx, x2)
		if err != nil {
			return nil, err
		}
		if f2 == 0 {
			return t.converged(ctx, x2)
		}
		x0, f0 = x1, f1
		x1, f1 = x2, f2
	}
	return t.exhausted(x1)
}
