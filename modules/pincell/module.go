// Package pincell builds a parametrized LWR fuel pin cell: UO2 fuel,
// Zircaloy clad, and borated light water moderator inside a reflective unit
// cell at the pin pitch. The search parameter is the boron concentration in
// the moderator, in ppm by weight.
package pincell

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/deck"
	"github.com/vk/critgridgo/internal/registry"
)

// Input defines the arguments of the 'arguments' block. Dimensions are in
// centimeters, densities in g/cm3, enrichment in weight percent U-235.
type Input struct {
	Enrichment      float64 `arg:"enrichment"`
	FuelDensity     float64 `arg:"fuel_density"`
	FuelRadius      float64 `arg:"fuel_radius"`
	CladInnerRadius float64 `arg:"clad_inner_radius"`
	CladOuterRadius float64 `arg:"clad_outer_radius"`
	Pitch           float64 `arg:"pitch"`
	WaterDensity    float64 `arg:"water_density"`
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the pin_cell builder with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuilder("pin_cell", &registry.RegisteredBuilder{
		Description: "LWR fuel pin in borated light water",
		Parameter:   "boron concentration in ppm by weight",
		Inputs:      inputDefinitions(),
		NewInput:    func() any { return new(Input) },
		Fn:          build,
	})
}

// Default dimensions of a 17x17 PWR lattice pin.
func inputDefinitions() map[string]*config.InputDefinition {
	defs := map[string]*config.InputDefinition{}
	number := func(name, description string, def float64) {
		v := cty.NumberFloatVal(def)
		defs[name] = &config.InputDefinition{
			Name:        name,
			Type:        cty.Number,
			Description: description,
			Default:     &v,
			Optional:    true,
		}
	}
	number("enrichment", "U-235 enrichment in weight percent", 2.4)
	number("fuel_density", "UO2 density in g/cm3", 10.29769)
	number("fuel_radius", "fuel pellet outer radius in cm", 0.39218)
	number("clad_inner_radius", "clad inner radius in cm", 0.40005)
	number("clad_outer_radius", "clad outer radius in cm", 0.4572)
	number("pitch", "pin pitch in cm", 1.25984)
	number("water_density", "moderator density in g/cm3", 0.740582)
	return defs
}

// Uranium isotope molar masses in g/mol.
const (
	molarU235 = 235.0439299
	molarU238 = 238.0507882
)

// Natural zirconium isotopic atom fractions.
var zirconium = []deck.Nuclide{
	{Name: "Zr90", AO: 0.5145},
	{Name: "Zr91", AO: 0.1122},
	{Name: "Zr92", AO: 0.1715},
	{Name: "Zr94", AO: 0.1738},
	{Name: "Zr96", AO: 0.0280},
}

func build(ctx context.Context, input any, boronPPM float64) (*deck.Case, error) {
	in, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("pin_cell: unexpected input type %T", input)
	}
	if err := in.validate(boronPPM); err != nil {
		return nil, fmt.Errorf("pin_cell: %w", err)
	}

	c := deck.New()

	fuel := c.AddMaterial("uo2", in.FuelDensity)
	fuel.Depletable = true
	x235 := atomFractionU235(in.Enrichment / 100)
	fuel.AddNuclide("U235", x235).
		AddNuclide("U238", 1-x235).
		AddNuclide("O16", 2)

	clad := c.AddMaterial("zircaloy", 6.55)
	clad.Nuclides = append(clad.Nuclides, zirconium...)

	water := c.AddMaterial("borated water", in.WaterDensity)
	water.Nuclides = append(water.Nuclides, boratedWaterNuclides(boronPPM)...)
	water.AddSAlphaBeta("c_H_in_H2O")

	fuelOR := c.AddSurface("z-cylinder", 0, 0, in.FuelRadius)
	cladIR := c.AddSurface("z-cylinder", 0, 0, in.CladInnerRadius)
	cladOR := c.AddSurface("z-cylinder", 0, 0, in.CladOuterRadius)
	half := in.Pitch / 2
	xMin := c.AddSurface("x-plane", -half).Reflective()
	xMax := c.AddSurface("x-plane", half).Reflective()
	yMin := c.AddSurface("y-plane", -half).Reflective()
	yMax := c.AddSurface("y-plane", half).Reflective()

	c.AddCell("fuel", fuel, fmt.Sprintf("-%d", fuelOR.ID))
	c.AddCell("gap", nil, fmt.Sprintf("%d -%d", fuelOR.ID, cladIR.ID))
	c.AddCell("clad", clad, fmt.Sprintf("%d -%d", cladIR.ID, cladOR.ID))
	c.AddCell("moderator", water, fmt.Sprintf("%d %d -%d %d -%d",
		cladOR.ID, xMin.ID, xMax.ID, yMin.ID, yMax.ID))

	r := in.FuelRadius
	c.SourceBox = &deck.Box{
		Lower: [3]float64{-r, -r, -1},
		Upper: [3]float64{r, r, 1},
	}
	return c, nil
}

func (in *Input) validate(boronPPM float64) error {
	if boronPPM < 0 {
		return fmt.Errorf("boron concentration must not be negative, got %g ppm", boronPPM)
	}
	if in.Enrichment <= 0 || in.Enrichment >= 100 {
		return fmt.Errorf("enrichment must be in (0, 100) weight percent, got %g", in.Enrichment)
	}
	if in.FuelRadius <= 0 {
		return fmt.Errorf("fuel radius must be positive, got %g", in.FuelRadius)
	}
	if in.FuelRadius >= in.CladInnerRadius || in.CladInnerRadius >= in.CladOuterRadius {
		return fmt.Errorf("radii must satisfy fuel < clad inner < clad outer, got %g, %g, %g",
			in.FuelRadius, in.CladInnerRadius, in.CladOuterRadius)
	}
	if in.Pitch/2 <= in.CladOuterRadius {
		return fmt.Errorf("pitch %g leaves no moderator outside clad radius %g", in.Pitch, in.CladOuterRadius)
	}
	if in.FuelDensity <= 0 || in.WaterDensity <= 0 {
		return fmt.Errorf("densities must be positive")
	}
	return nil
}

// atomFractionU235 converts a weight enrichment fraction into the U-235
// atom fraction of the uranium.
func atomFractionU235(weightFraction float64) float64 {
	n235 := weightFraction / molarU235
	n238 := (1 - weightFraction) / molarU238
	return n235 / (n235 + n238)
}
