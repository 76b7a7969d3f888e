package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/critgridgo/internal/report"
	"github.com/vk/critgridgo/internal/solver"
)

// linearRunner is a stub solver. It reads the run metadata the evaluator
// drops into each run directory and returns a keff that falls linearly with
// the parameter: keff = 1.1 - 5e-5 * value, critical at 2000.
type linearRunner struct {
	stddev float64
}

func (r *linearRunner) Run(ctx context.Context, caseDir string) (solver.Result, error) {
	body, err := os.ReadFile(filepath.Join(caseDir, "critgridgo.json"))
	if err != nil {
		return solver.Result{}, err
	}
	var meta runMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return solver.Result{}, err
	}
	stddev := r.stddev
	if stddev == 0 {
		stddev = 0.0001
	}
	return solver.Result{Keff: 1.1 - 5e-5*meta.Parameter, StdDev: stddev}, nil
}

// failingRunner always reports a solver crash.
type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, caseDir string) (solver.Result, error) {
	return solver.Result{}, fmt.Errorf("solver exited with code 1")
}

const searchCase = `
model "pin_cell" "pwr" {
  arguments {
    enrichment = 2.4
  }
}

settings {
  particles = 1000
  batches   = 100
  inactive  = 10
}

search "boron_ppm" {
  method    = "bisect"
  bracket   = [1000, 3000]
  tolerance = 1.0
}
`

func TestRun_SearchFindsCriticalBoron(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testApp, appConfig, out := SetupCaseTest(t, map[string]string{"case.hcl": searchCase})
	testApp.UseRunner(&linearRunner{})

	// --- Act ---
	err := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Iteration: 1;")
	require.Contains(t, out.String(), "Critical boron_ppm = ")

	body, readErr := os.ReadFile(filepath.Join(appConfig.OutDir, report.SummaryFile))
	require.NoError(t, readErr)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Equal(t, "pwr", summary.Model)
	require.Equal(t, "pin_cell", summary.Builder)
	require.NotNil(t, summary.Search)
	require.True(t, summary.Search.Converged)
	require.InDelta(t, 2000, summary.Search.CriticalValue, 2)
	require.InDelta(t, 1.0, summary.Search.Keff, 1e-3)

	for _, artifact := range []string{report.IterationsFile, report.PlotFile} {
		_, statErr := os.Stat(filepath.Join(appConfig.OutDir, artifact))
		require.NoError(t, statErr, "artifact %s must be written", artifact)
	}
}

func TestRun_SearchWritesDecksPerEvaluation(t *testing.T) {
	t.Parallel()

	testApp, appConfig, _ := SetupCaseTest(t, map[string]string{"case.hcl": searchCase})
	testApp.UseRunner(&linearRunner{})

	require.NoError(t, testApp.Run(context.Background(), appConfig))

	firstRun := filepath.Join(appConfig.OutDir, "runs", "eval-001")
	for _, file := range []string{"materials.xml", "geometry.xml", "settings.xml", "critgridgo.json"} {
		_, err := os.Stat(filepath.Join(firstRun, file))
		require.NoError(t, err, "run dir must contain %s", file)
	}
}

func TestRun_SweepEvaluatesGrid(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testApp, appConfig, _ := SetupCaseTest(t, map[string]string{"case.hcl": `
model "pin_cell" "pwr" {
  arguments {}
}

sweep {
  values  = [1000, 2000, 3000]
  workers = 2
}
`})
	testApp.UseRunner(&linearRunner{})

	// --- Act ---
	err := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, err)
	body, readErr := os.ReadFile(filepath.Join(appConfig.OutDir, report.SummaryFile))
	require.NoError(t, readErr)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Nil(t, summary.Search)
	require.Len(t, summary.Sweep, 3)
	require.Equal(t, 1000.0, summary.Sweep[0].Value)
	require.InDelta(t, 1.05, summary.Sweep[0].Keff, 1e-9)
	require.InDelta(t, 0.95, summary.Sweep[2].Keff, 1e-9)

	_, statErr := os.Stat(filepath.Join(appConfig.OutDir, report.PlotFile))
	require.NoError(t, statErr)
}

func TestRun_SolverFailureSurfaces(t *testing.T) {
	t.Parallel()

	testApp, appConfig, _ := SetupCaseTest(t, map[string]string{"case.hcl": `
model "pin_cell" "pwr" {
  arguments {}
}

sweep {
  values = [1500]
}
`})
	testApp.UseRunner(failingRunner{})

	err := testApp.Run(context.Background(), appConfig)

	require.Error(t, err)
	require.Contains(t, err.Error(), "parameter sweep failed")
	require.Contains(t, err.Error(), "solver exited with code 1")
}

func TestRun_ValidateOnlyWritesDeckWithoutSolver(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testApp, appConfig, out := SetupCaseTest(t, map[string]string{"case.hcl": searchCase})
	testApp.UseRunner(failingRunner{}) // must never be invoked
	appConfig.ValidateOnly = true

	// --- Act ---
	err := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Valid decks written to ")
	deckDir := filepath.Join(appConfig.OutDir, "deck")
	for _, file := range []string{"materials.xml", "geometry.xml", "settings.xml"} {
		_, statErr := os.Stat(filepath.Join(deckDir, file))
		require.NoError(t, statErr)
	}
}

func TestRun_UnknownArgumentFailsDecoding(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		SetupCaseTest(t, map[string]string{"case.hcl": `
model "pin_cell" "pwr" {
  arguments {
    enrichmnt = 2.4
  }
}

search "boron_ppm" {
  bracket = [1000, 3000]
}
`})
	}, "a typoed argument must fail case validation at startup")
}

func TestNewApp_PanicsOnUnknownBuilder(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		SetupCaseTest(t, map[string]string{"case.hcl": `
model "slab" "x" {
  arguments {}
}

search "thickness" {
  bracket = [1, 10]
}
`})
	})
}

func TestNewApp_PanicsOnMalformedCase(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		SetupCaseTest(t, map[string]string{"case.hcl": `model "pin_cell" {`})
	})
}
