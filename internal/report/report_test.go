package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/critgridgo/internal/search"
	"github.com/vk/critgridgo/internal/sweep"
)

func TestWriteSummary_SearchRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	summary := &Summary{
		Model:     "pwr",
		Builder:   "pin_cell",
		Parameter: "boron_ppm",
		Search: &SearchSummary{
			Method:        "bisect",
			Target:        1.0,
			CriticalValue: 1948.3,
			Keff:          1.00021,
			StdDev:        0.00101,
			Converged:     true,
			Evaluations:   12,
		},
	}

	// --- Act ---
	err := WriteSummary(dir, summary)

	// --- Assert ---
	require.NoError(t, err)
	body, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Empty(t, cmp.Diff(summary, &decoded))
	require.Contains(t, string(body), `"critical_value": 1948.3`)
	require.NotContains(t, string(body), `"sweep"`, "omitted sections stay out of the file")
	require.NotContains(t, string(body), `"statistics_limited"`)
}

func TestWriteSummary_SweepRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	summary := &Summary{
		Model:     "pwr",
		Builder:   "pin_cell",
		Parameter: "boron_ppm",
		Sweep: []sweep.Point{
			{Value: 1000, Keff: 1.02, StdDev: 0.001},
			{Value: 2000, Keff: 0.99, StdDev: 0.001},
		},
	}

	require.NoError(t, WriteSummary(dir, summary))
	body, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	require.NotContains(t, string(body), `"search"`)

	var decoded Summary
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.Sweep, 2)
}

func TestIterationLine_Format(t *testing.T) {
	t.Parallel()

	line := IterationLine(search.Iteration{N: 3, Guess: 1750, Keff: 1.00452, StdDev: 0.00132})

	require.Equal(t, "Iteration: 3; Guess of 1.75e+03 produced a keff of 1.00452 +/- 0.00132", line)
}

func TestWriteIterationTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	iterations := []search.Iteration{
		{N: 1, Guess: 1000, Keff: 1.02612, StdDev: 0.00104},
		{N: 2, Guess: 2500, Keff: 0.97542, StdDev: 0.00098},
	}

	err := WriteIterationTable(&buf, "boron_ppm", iterations)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "ITER")
	require.Contains(t, lines[0], "boron_ppm")
	require.Contains(t, lines[1], "1.02612")
	require.Contains(t, lines[2], "2500")
}

func TestWriteIterations_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := WriteIterations(dir, "radius", []search.Iteration{{N: 1, Guess: 8.7, Keff: 1.0, StdDev: 0.001}})

	require.NoError(t, err)
	body, readErr := os.ReadFile(filepath.Join(dir, IterationsFile))
	require.NoError(t, readErr)
	require.Contains(t, string(body), "radius")
}

func TestRenderSVG_ScatterWithTarget(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	plot := Plot{
		Title:  "keff vs boron_ppm",
		XLabel: "boron_ppm",
		YLabel: "keff",
		Target: 1.0,
		Points: []XY{
			{X: 1000, Y: 1.026, Err: 0.001},
			{X: 1750, Y: 1.004, Err: 0.001},
			{X: 2500, Y: 0.975, Err: 0.001},
		},
	}

	// --- Act ---
	svg := string(RenderSVG(plot))

	// --- Assert ---
	require.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`))
	require.True(t, strings.HasSuffix(svg, "</svg>\n"))
	require.Equal(t, 3, strings.Count(svg, "<circle"))
	require.Contains(t, svg, `stroke-dasharray="6 4"`, "target reference line must be drawn")
	require.Contains(t, svg, "keff vs boron_ppm")
	require.Equal(t, 3, strings.Count(svg, `stroke="steelblue"`), "one error bar per point")
}

func TestRenderSVG_EscapesLabels(t *testing.T) {
	t.Parallel()

	svg := string(RenderSVG(Plot{Title: `keff < 1 & "safe"`, Points: []XY{{X: 1, Y: 1}}}))

	require.Contains(t, svg, "keff &lt; 1 &amp; &quot;safe&quot;")
	require.NotContains(t, svg, `keff < 1`)
}

func TestRenderSVG_TargetOutsideDataStillVisible(t *testing.T) {
	t.Parallel()

	// All points sit well above the target; bounds must stretch to include it.
	plot := Plot{
		Target: 1.0,
		Points: []XY{{X: 1, Y: 1.4}, {X: 2, Y: 1.5}},
	}

	svg := string(RenderSVG(plot))

	require.Contains(t, svg, `stroke="crimson"`)
}

func TestRenderSVG_SinglePointDoesNotCollapse(t *testing.T) {
	t.Parallel()

	svg := string(RenderSVG(Plot{Points: []XY{{X: 2000, Y: 1.0}}}))

	require.Equal(t, 1, strings.Count(svg, "<circle"))
	require.NotContains(t, svg, "NaN")
	require.NotContains(t, svg, "Inf")
}
