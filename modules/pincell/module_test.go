package pincell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/critgridgo/internal/deck"
	"github.com/vk/critgridgo/internal/registry"
)

func defaultInput() *Input {
	return &Input{
		Enrichment:      2.4,
		FuelDensity:     10.29769,
		FuelRadius:      0.39218,
		CladInnerRadius: 0.40005,
		CladOuterRadius: 0.4572,
		Pitch:           1.25984,
		WaterDensity:    0.740582,
	}
}

func nuclideMap(m *deck.Material) map[string]float64 {
	out := make(map[string]float64, len(m.Nuclides))
	for _, n := range m.Nuclides {
		out[n.Name] = n.AO
	}
	return out
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := registry.New()
	(&Module{}).Register(r)

	builder, ok := r.Builder("pin_cell")
	require.True(t, ok)
	require.NotNil(t, builder.Fn)
	require.Contains(t, builder.Inputs, "enrichment")
	require.Contains(t, builder.Inputs, "pitch")
	for name, def := range builder.Inputs {
		require.True(t, def.Optional, "input %q must be optional", name)
		require.NotNil(t, def.Default, "input %q must carry a default", name)
	}
}

func TestBuild_CaseValidates(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), defaultInput(), 1500)

	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Len(t, c.Materials, 3)
	require.Len(t, c.Surfaces, 7)
	require.Len(t, c.Cells, 4)
	require.NotNil(t, c.SourceBox)
}

func TestBuild_FuelComposition(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := defaultInput()

	// --- Act ---
	c, err := build(context.Background(), in, 0)

	// --- Assert ---
	require.NoError(t, err)
	fuel := c.Materials[0]
	require.Equal(t, "uo2", fuel.Name)
	require.True(t, fuel.Depletable)
	nuclides := nuclideMap(fuel)
	// 2.4 w/o enrichment is slightly above 2.4 a/o because U-235 is lighter.
	require.InDelta(t, 0.0243, nuclides["U235"], 2e-4)
	require.InDelta(t, 1-nuclides["U235"], nuclides["U238"], 1e-12)
	require.Equal(t, 2.0, nuclides["O16"])
}

func TestBuild_ModeratorWithoutBoron(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), defaultInput(), 0)

	require.NoError(t, err)
	water := c.Materials[2]
	nuclides := nuclideMap(water)
	require.NotContains(t, nuclides, "B10")
	require.NotContains(t, nuclides, "B11")
	// Two hydrogen atoms per oxygen.
	require.InDelta(t, 2.0, (nuclides["H1"]+nuclides["H2"])/(nuclides["O16"]+nuclides["O17"]+nuclides["O18"]), 1e-9)
	require.Equal(t, []string{"c_H_in_H2O"}, water.SAlphaBeta)
}

func TestBuild_ModeratorBoronScalesWithConcentration(t *testing.T) {
	t.Parallel()

	low, err := build(context.Background(), defaultInput(), 500)
	require.NoError(t, err)
	high, err := build(context.Background(), defaultInput(), 2000)
	require.NoError(t, err)

	lowB := nuclideMap(low.Materials[2])
	highB := nuclideMap(high.Materials[2])
	require.Greater(t, lowB["B10"], 0.0)
	require.Greater(t, highB["B10"], lowB["B10"])
	require.Greater(t, highB["B11"], highB["B10"], "B11 is the more abundant isotope")

	var sum float64
	for _, ao := range highB {
		sum += ao
	}
	require.InDelta(t, 1.0, sum, 1e-9, "atom fractions must be normalized")
}

func TestBuild_GapCellIsVoid(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), defaultInput(), 1000)

	require.NoError(t, err)
	require.Equal(t, "gap", c.Cells[1].Name)
	require.Nil(t, c.Cells[1].Material)
}

func TestBuild_ReflectiveUnitCell(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), defaultInput(), 1000)

	require.NoError(t, err)
	var reflective int
	for _, s := range c.Surfaces {
		if s.Boundary == "reflective" {
			reflective++
		}
	}
	require.Equal(t, 4, reflective, "the four pitch planes bound the unit cell")
}

func TestBuild_NegativeBoron(t *testing.T) {
	t.Parallel()

	_, err := build(context.Background(), defaultInput(), -10)

	require.Error(t, err)
	require.Contains(t, err.Error(), "boron concentration must not be negative")
}

func TestBuild_RadiusOrdering(t *testing.T) {
	t.Parallel()

	in := defaultInput()
	in.CladInnerRadius = in.FuelRadius - 0.01

	_, err := build(context.Background(), in, 1000)

	require.Error(t, err)
	require.Contains(t, err.Error(), "fuel < clad inner < clad outer")
}

func TestBuild_PitchTooTight(t *testing.T) {
	t.Parallel()

	in := defaultInput()
	in.Pitch = 0.9

	_, err := build(context.Background(), in, 1000)

	require.Error(t, err)
	require.Contains(t, err.Error(), "leaves no moderator")
}

func TestBuild_WrongInputType(t *testing.T) {
	t.Parallel()

	_, err := build(context.Background(), struct{}{}, 1000)

	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected input type")
}

func TestAtomFractionU235(t *testing.T) {
	t.Parallel()

	// Natural uranium: 0.711 w/o corresponds to roughly 0.72 a/o.
	require.InDelta(t, 0.0072, atomFractionU235(0.00711), 5e-5)
	// Lighter isotope means atom fraction exceeds weight fraction.
	require.Greater(t, atomFractionU235(0.024), 0.024)
}
