// Package report writes the run artifacts: a machine-readable summary, a
// human-readable iteration table, and a keff-versus-parameter scatter plot.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/critgridgo/internal/search"
	"github.com/vk/critgridgo/internal/sweep"
)

// Artifact file names inside the output directory.
const (
	SummaryFile    = "summary.json"
	IterationsFile = "iterations.txt"
	PlotFile       = "keff.svg"
)

// Summary is the machine-readable run record.
type Summary struct {
	Model     string         `json:"model"`
	Builder   string         `json:"builder"`
	Parameter string         `json:"parameter"`
	Search    *SearchSummary `json:"search,omitempty"`
	Sweep     []sweep.Point  `json:"sweep,omitempty"`
}

// SearchSummary records the converged (or best) search result.
type SearchSummary struct {
	Method            string  `json:"method"`
	Target            float64 `json:"target"`
	CriticalValue     float64 `json:"critical_value"`
	Keff              float64 `json:"keff"`
	StdDev            float64 `json:"stddev"`
	Converged         bool    `json:"converged"`
	StatisticsLimited bool    `json:"statistics_limited,omitempty"`
	Evaluations       int     `json:"evaluations"`
}

// WriteSummary writes summary.json into dir.
func WriteSummary(dir string, s *Summary) error {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	body = append(body, '\n')
	path := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", SummaryFile, err)
	}
	return nil
}

// IterationLine formats one search evaluation in the classic iteration log
// style.
func IterationLine(it search.Iteration) string {
	return fmt.Sprintf("Iteration: %d; Guess of %.2e produced a keff of %.5f +/- %.5f",
		it.N, it.Guess, it.Keff, it.StdDev)
}
