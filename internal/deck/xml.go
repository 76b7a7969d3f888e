package deck

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// XML document shapes mirroring the solver's input schema. The marshaled
// attribute order follows struct field order, which the embedded XSDs and
// the solver both accept.

type materialsDoc struct {
	XMLName   xml.Name      `xml:"materials"`
	Materials []materialXML `xml:"material"`
}

type materialXML struct {
	ID         int          `xml:"id,attr"`
	Name       string       `xml:"name,attr,omitempty"`
	Depletable string       `xml:"depletable,attr,omitempty"`
	Density    densityXML   `xml:"density"`
	Nuclides   []nuclideXML `xml:"nuclide"`
	SAB        []sabXML     `xml:"sab"`
}

type densityXML struct {
	Units string `xml:"units,attr"`
	Value string `xml:"value,attr"`
}

type nuclideXML struct {
	Name string `xml:"name,attr"`
	AO   string `xml:"ao,attr,omitempty"`
	WO   string `xml:"wo,attr,omitempty"`
}

type sabXML struct {
	Name string `xml:"name,attr"`
}

type geometryDoc struct {
	XMLName  xml.Name     `xml:"geometry"`
	Cells    []cellXML    `xml:"cell"`
	Surfaces []surfaceXML `xml:"surface"`
}

type cellXML struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Material string `xml:"material,attr"`
	Region   string `xml:"region,attr"`
}

type surfaceXML struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Type     string `xml:"type,attr"`
	Coeffs   string `xml:"coeffs,attr"`
	Boundary string `xml:"boundary,attr,omitempty"`
}

type settingsDoc struct {
	XMLName             xml.Name   `xml:"settings"`
	RunMode             string     `xml:"run_mode"`
	Particles           int        `xml:"particles"`
	Batches             int        `xml:"batches"`
	Inactive            int        `xml:"inactive"`
	GenerationsPerBatch int        `xml:"generations_per_batch,omitempty"`
	Seed                *int64     `xml:"seed,omitempty"`
	Source              *sourceXML `xml:"source,omitempty"`
}

type sourceXML struct {
	Strength string   `xml:"strength,attr"`
	Space    spaceXML `xml:"space"`
}

type spaceXML struct {
	Type       string `xml:"type,attr"`
	Parameters string `xml:"parameters"`
}

// MaterialsXML renders the materials deck.
func (c *Case) MaterialsXML() ([]byte, error) {
	doc := materialsDoc{}
	for _, m := range c.Materials {
		mx := materialXML{
			ID:      m.ID,
			Name:    m.Name,
			Density: densityXML{Units: m.DensityUnits, Value: formatFloat(m.Density)},
		}
		if m.Depletable {
			mx.Depletable = "true"
		}
		for _, n := range m.Nuclides {
			nx := nuclideXML{Name: n.Name}
			if n.AO > 0 {
				nx.AO = formatFloat(n.AO)
			} else {
				nx.WO = formatFloat(n.WO)
			}
			mx.Nuclides = append(mx.Nuclides, nx)
		}
		for _, sab := range m.SAlphaBeta {
			mx.SAB = append(mx.SAB, sabXML{Name: sab})
		}
		doc.Materials = append(doc.Materials, mx)
	}
	return marshalDoc(doc)
}

// GeometryXML renders the geometry deck.
func (c *Case) GeometryXML() ([]byte, error) {
	doc := geometryDoc{}
	for _, cell := range c.Cells {
		material := "void"
		if cell.Material != nil {
			material = strconv.Itoa(cell.Material.ID)
		}
		doc.Cells = append(doc.Cells, cellXML{
			ID:       cell.ID,
			Name:     cell.Name,
			Material: material,
			Region:   cell.Region,
		})
	}
	for _, s := range c.Surfaces {
		doc.Surfaces = append(doc.Surfaces, surfaceXML{
			ID:       s.ID,
			Name:     s.Name,
			Type:     s.Type,
			Coeffs:   formatFloats(s.Coeffs),
			Boundary: s.Boundary,
		})
	}
	return marshalDoc(doc)
}

// SettingsXML renders the settings deck for an eigenvalue run.
func (c *Case) SettingsXML(rs RunSettings) ([]byte, error) {
	doc := settingsDoc{
		RunMode:             "eigenvalue",
		Particles:           rs.Particles,
		Batches:             rs.Batches,
		Inactive:            rs.Inactive,
		GenerationsPerBatch: rs.GenerationsPerBatch,
		Seed:                rs.Seed,
	}
	if c.SourceBox != nil {
		b := c.SourceBox
		doc.Source = &sourceXML{
			Strength: "1.0",
			Space: spaceXML{
				Type: "box",
				Parameters: formatFloats([]float64{
					b.Lower[0], b.Lower[1], b.Lower[2],
					b.Upper[0], b.Upper[1], b.Upper[2],
				}),
			},
		}
	}
	return marshalDoc(doc)
}

func marshalDoc(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}
