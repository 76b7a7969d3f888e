// Package sphere builds a bare sphere of a user-specified material with a
// vacuum boundary. The search parameter is the sphere radius in cm, which
// makes this builder a critical-radius search target.
package sphere

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/deck"
	"github.com/vk/critgridgo/internal/registry"
)

// Input defines the arguments of the 'arguments' block.
type Input struct {
	// Density in g/cm3.
	Density float64 `arg:"density"`
	// Composition maps nuclide names to atom fractions.
	Composition map[string]float64 `arg:"composition"`
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sphere builder with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuilder("sphere", &registry.RegisteredBuilder{
		Description: "bare sphere with vacuum boundary",
		Parameter:   "sphere radius in cm",
		Inputs: map[string]*config.InputDefinition{
			"density": {
				Name:        "density",
				Type:        cty.Number,
				Description: "material density in g/cm3",
			},
			"composition": {
				Name:        "composition",
				Type:        cty.Map(cty.Number),
				Description: "nuclide atom fractions",
			},
		},
		NewInput: func() any { return new(Input) },
		Fn:       build,
	})
}

func build(ctx context.Context, input any, radius float64) (*deck.Case, error) {
	in, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("sphere: unexpected input type %T", input)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sphere: radius must be positive, got %g", radius)
	}
	if in.Density <= 0 {
		return nil, fmt.Errorf("sphere: density must be positive, got %g", in.Density)
	}
	if len(in.Composition) == 0 {
		return nil, fmt.Errorf("sphere: composition is empty")
	}

	c := deck.New()

	material := c.AddMaterial("sphere material", in.Density)
	names := make([]string, 0, len(in.Composition))
	for name := range in.Composition {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ao := in.Composition[name]
		if ao <= 0 {
			return nil, fmt.Errorf("sphere: nuclide '%s' has non-positive fraction %g", name, ao)
		}
		material.AddNuclide(name, ao)
	}

	boundary := c.AddSurface("sphere", 0, 0, 0, radius).Vacuum()
	c.AddCell("sphere", material, fmt.Sprintf("-%d", boundary.ID))

	half := radius / 2
	c.SourceBox = &deck.Box{
		Lower: [3]float64{-half, -half, -half},
		Upper: [3]float64{half, half, half},
	}
	return c, nil
}
