// Package deck models the solver's XML input decks: materials, geometry, and
// run settings. Model builders assemble a Case; the app validates it and
// writes the three XML files the solver consumes.
package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Case is a complete parametrized model ready to be written as input decks.
type Case struct {
	Materials []*Material
	Surfaces  []*Surface
	Cells     []*Cell

	// SourceBox bounds the initial fission source distribution. Nil falls
	// back to the solver's default source.
	SourceBox *Box

	nextMaterialID int
	nextSurfaceID  int
	nextCellID     int
}

// Material is a homogeneous material composition.
type Material struct {
	ID           int
	Name         string
	Density      float64
	DensityUnits string
	Depletable   bool
	Nuclides     []Nuclide
	SAlphaBeta   []string
}

// Nuclide is a single nuclide entry. Exactly one of AO (atom fraction) or
// WO (weight fraction) must be set.
type Nuclide struct {
	Name string
	AO   float64
	WO   float64
}

// Surface is a quadric surface. Coeffs follow the solver's convention for
// the surface type (e.g. x0 y0 r for a z-cylinder).
type Surface struct {
	ID       int
	Name     string
	Type     string
	Coeffs   []float64
	Boundary string
}

// Cell fills a region with a material. A nil material is a void cell.
type Cell struct {
	ID       int
	Name     string
	Material *Material
	Region   string
}

// Box is an axis-aligned bounding box.
type Box struct {
	Lower [3]float64
	Upper [3]float64
}

// RunSettings carries the eigenvalue run parameters written to the settings
// deck alongside the geometry and materials.
type RunSettings struct {
	Particles           int
	Batches             int
	Inactive            int
	GenerationsPerBatch int
	Seed                *int64
}

// New creates an empty case.
func New() *Case {
	return &Case{nextMaterialID: 1, nextSurfaceID: 1, nextCellID: 1}
}

// AddMaterial appends a material with an auto-assigned ID and density in
// g/cm3. The returned material is mutated in place by the Add* helpers.
func (c *Case) AddMaterial(name string, density float64) *Material {
	m := &Material{
		ID:           c.nextMaterialID,
		Name:         name,
		Density:      density,
		DensityUnits: "g/cm3",
	}
	c.nextMaterialID++
	c.Materials = append(c.Materials, m)
	return m
}

// AddNuclide appends a nuclide by atom fraction.
func (m *Material) AddNuclide(name string, ao float64) *Material {
	m.Nuclides = append(m.Nuclides, Nuclide{Name: name, AO: ao})
	return m
}

// AddNuclideWeight appends a nuclide by weight fraction.
func (m *Material) AddNuclideWeight(name string, wo float64) *Material {
	m.Nuclides = append(m.Nuclides, Nuclide{Name: name, WO: wo})
	return m
}

// AddSAlphaBeta attaches a thermal scattering table (e.g. c_H_in_H2O).
func (m *Material) AddSAlphaBeta(name string) *Material {
	m.SAlphaBeta = append(m.SAlphaBeta, name)
	return m
}

// AddSurface appends a surface with an auto-assigned ID.
func (c *Case) AddSurface(surfaceType string, coeffs ...float64) *Surface {
	s := &Surface{ID: c.nextSurfaceID, Type: surfaceType, Coeffs: coeffs}
	c.nextSurfaceID++
	c.Surfaces = append(c.Surfaces, s)
	return s
}

// Reflective marks the surface as a reflective boundary.
func (s *Surface) Reflective() *Surface {
	s.Boundary = "reflective"
	return s
}

// Vacuum marks the surface as a vacuum boundary.
func (s *Surface) Vacuum() *Surface {
	s.Boundary = "vacuum"
	return s
}

// AddCell appends a cell with an auto-assigned ID. A nil material makes the
// cell void.
func (c *Case) AddCell(name string, m *Material, region string) *Cell {
	cell := &Cell{ID: c.nextCellID, Name: name, Material: m, Region: region}
	c.nextCellID++
	c.Cells = append(c.Cells, cell)
	return cell
}

// Validate checks the structural integrity of the case: unique positive IDs,
// well-formed materials, and cell regions that only reference existing
// surfaces. Builders may override auto-assigned IDs; collisions are an error
// here rather than a silent renumbering.
func (c *Case) Validate() error {
	if len(c.Materials) == 0 {
		return fmt.Errorf("case has no materials")
	}
	if len(c.Surfaces) == 0 {
		return fmt.Errorf("case has no surfaces")
	}
	if len(c.Cells) == 0 {
		return fmt.Errorf("case has no cells")
	}

	materialIDs := make(map[int]string, len(c.Materials))
	for _, m := range c.Materials {
		if m.ID <= 0 {
			return fmt.Errorf("material '%s' has non-positive id %d", m.Name, m.ID)
		}
		if other, dup := materialIDs[m.ID]; dup {
			return fmt.Errorf("material id %d used by both '%s' and '%s'", m.ID, other, m.Name)
		}
		materialIDs[m.ID] = m.Name
		if err := m.validate(); err != nil {
			return fmt.Errorf("material '%s': %w", m.Name, err)
		}
	}

	surfaceIDs := make(map[int]string, len(c.Surfaces))
	for _, s := range c.Surfaces {
		if s.ID <= 0 {
			return fmt.Errorf("surface '%s' has non-positive id %d", s.Name, s.ID)
		}
		if other, dup := surfaceIDs[s.ID]; dup {
			return fmt.Errorf("surface id %d used by both '%s' and '%s'", s.ID, other, s.Name)
		}
		surfaceIDs[s.ID] = s.Name
		if s.Type == "" {
			return fmt.Errorf("surface id %d has no type", s.ID)
		}
		if len(s.Coeffs) == 0 {
			return fmt.Errorf("surface id %d has no coefficients", s.ID)
		}
	}

	cellIDs := make(map[int]string, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.ID <= 0 {
			return fmt.Errorf("cell '%s' has non-positive id %d", cell.Name, cell.ID)
		}
		if other, dup := cellIDs[cell.ID]; dup {
			return fmt.Errorf("cell id %d used by both '%s' and '%s'", cell.ID, other, cell.Name)
		}
		cellIDs[cell.ID] = cell.Name
		if cell.Region == "" {
			return fmt.Errorf("cell '%s' has an empty region", cell.Name)
		}
		if cell.Material != nil {
			if _, ok := materialIDs[cell.Material.ID]; !ok {
				return fmt.Errorf("cell '%s' references unknown material id %d", cell.Name, cell.Material.ID)
			}
		}
		refs, err := regionSurfaceIDs(cell.Region)
		if err != nil {
			return fmt.Errorf("cell '%s': %w", cell.Name, err)
		}
		for _, id := range refs {
			if _, ok := surfaceIDs[id]; !ok {
				return fmt.Errorf("cell '%s' region references unknown surface id %d", cell.Name, id)
			}
		}
	}

	if c.SourceBox != nil {
		for axis := 0; axis < 3; axis++ {
			if c.SourceBox.Lower[axis] >= c.SourceBox.Upper[axis] {
				return fmt.Errorf("source box is degenerate on axis %d: [%g, %g]",
					axis, c.SourceBox.Lower[axis], c.SourceBox.Upper[axis])
			}
		}
	}
	return nil
}

func (m *Material) validate() error {
	if m.Density <= 0 {
		return fmt.Errorf("density must be positive, got %g", m.Density)
	}
	if len(m.Nuclides) == 0 {
		return fmt.Errorf("has no nuclides")
	}
	var hasAO, hasWO bool
	for _, n := range m.Nuclides {
		switch {
		case n.AO > 0 && n.WO > 0:
			return fmt.Errorf("nuclide '%s' sets both atom and weight fractions", n.Name)
		case n.AO > 0:
			hasAO = true
		case n.WO > 0:
			hasWO = true
		default:
			return fmt.Errorf("nuclide '%s' has no positive fraction", n.Name)
		}
	}
	if hasAO && hasWO {
		return fmt.Errorf("mixes atom and weight fractions")
	}
	return nil
}

// regionSurfaceIDs extracts the surface IDs referenced by a region
// expression. Regions use the solver's half-space notation: signed surface
// IDs with optional parentheses and union bars.
func regionSurfaceIDs(region string) ([]int, error) {
	cleaned := strings.NewReplacer("(", " ", ")", " ", "|", " ", "~", " ").Replace(region)
	var ids []int
	for _, token := range strings.Fields(cleaned) {
		trimmed := strings.TrimLeft(token, "+-")
		if trimmed == "" {
			continue
		}
		id, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid region token '%s'", token)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("region '%s' references no surfaces", region)
	}
	return ids, nil
}
