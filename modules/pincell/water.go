package pincell

import "github.com/vk/critgridgo/internal/deck"

// Molar masses in g/mol and natural isotopic atom abundances used to expand
// borated water into nuclides.
const (
	molarBoron = 10.811
	molarWater = 18.01528

	abundanceB10 = 0.199
	abundanceB11 = 0.801
	abundanceH1  = 0.999885
	abundanceH2  = 0.000115
	abundanceO16 = 0.99757
	abundanceO17 = 0.00038
	abundanceO18 = 0.00205
)

// boratedWaterNuclides expands light water with the given boron
// concentration (ppm by weight) into normalized nuclide atom fractions.
// Zero ppm yields plain water with no boron nuclides.
func boratedWaterNuclides(ppm float64) []deck.Nuclide {
	wBoron := ppm * 1e-6

	// Moles per gram of mixture, element by element.
	molBoron := wBoron / molarBoron
	molWater := (1 - wBoron) / molarWater
	molH := 2 * molWater
	molO := molWater
	total := molBoron + molH + molO

	nuclides := []deck.Nuclide{
		{Name: "H1", AO: molH * abundanceH1 / total},
		{Name: "H2", AO: molH * abundanceH2 / total},
		{Name: "O16", AO: molO * abundanceO16 / total},
		{Name: "O17", AO: molO * abundanceO17 / total},
		{Name: "O18", AO: molO * abundanceO18 / total},
	}
	if wBoron > 0 {
		nuclides = append(nuclides,
			deck.Nuclide{Name: "B10", AO: molBoron * abundanceB10 / total},
			deck.Nuclide{Name: "B11", AO: molBoron * abundanceB11 / total},
		)
	}
	return nuclides
}
