// Package solver runs the external transport solver over a prepared deck
// directory and extracts the eigenvalue from its output.
package solver

import (
	"context"
	"time"
)

// Result is a single eigenvalue run outcome.
type Result struct {
	// Keff is the combined k-effective estimate and StdDev its one-sigma
	// uncertainty.
	Keff   float64
	StdDev float64
	// Warnings are solver-emitted warning lines, verbatim.
	Warnings []string
	Duration time.Duration
}

// Runner executes the solver against the input decks already present in
// caseDir.
type Runner interface {
	Run(ctx context.Context, caseDir string) (Result, error)
}
