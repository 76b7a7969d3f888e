package sphere

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/critgridgo/internal/registry"
)

func godivaInput() *Input {
	return &Input{
		Density: 18.74,
		Composition: map[string]float64{
			"U235": 0.937,
			"U238": 0.052,
			"U234": 0.011,
		},
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := registry.New()
	(&Module{}).Register(r)

	builder, ok := r.Builder("sphere")
	require.True(t, ok)
	for name, def := range builder.Inputs {
		require.False(t, def.Optional, "input %q must be required", name)
		require.Nil(t, def.Default)
	}
}

func TestBuild_CaseValidates(t *testing.T) {
	t.Parallel()

	// --- Arrange / Act ---
	c, err := build(context.Background(), godivaInput(), 8.7)

	// --- Assert ---
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Len(t, c.Materials, 1)
	require.Len(t, c.Surfaces, 1)
	require.Len(t, c.Cells, 1)
	require.Equal(t, "vacuum", c.Surfaces[0].Boundary)
	require.Equal(t, []float64{0, 0, 0, 8.7}, c.Surfaces[0].Coeffs)
}

func TestBuild_CompositionIsSortedByNuclide(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), godivaInput(), 8.7)

	require.NoError(t, err)
	nuclides := c.Materials[0].Nuclides
	require.Len(t, nuclides, 3)
	require.Equal(t, "U234", nuclides[0].Name)
	require.Equal(t, "U235", nuclides[1].Name)
	require.Equal(t, "U238", nuclides[2].Name)
}

func TestBuild_SourceBoxInsideSphere(t *testing.T) {
	t.Parallel()

	c, err := build(context.Background(), godivaInput(), 10)

	require.NoError(t, err)
	require.NotNil(t, c.SourceBox)
	require.Equal(t, [3]float64{-5, -5, -5}, c.SourceBox.Lower)
	require.Equal(t, [3]float64{5, 5, 5}, c.SourceBox.Upper)
}

func TestBuild_NonPositiveRadius(t *testing.T) {
	t.Parallel()

	_, err := build(context.Background(), godivaInput(), 0)

	require.Error(t, err)
	require.Contains(t, err.Error(), "radius must be positive")
}

func TestBuild_EmptyComposition(t *testing.T) {
	t.Parallel()

	_, err := build(context.Background(), &Input{Density: 18.74}, 8.7)

	require.Error(t, err)
	require.Contains(t, err.Error(), "composition is empty")
}

func TestBuild_NonPositiveFraction(t *testing.T) {
	t.Parallel()

	in := godivaInput()
	in.Composition["U238"] = 0

	_, err := build(context.Background(), in, 8.7)

	require.Error(t, err)
	require.Contains(t, err.Error(), "nuclide 'U238' has non-positive fraction")
}
