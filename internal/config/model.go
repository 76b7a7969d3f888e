package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a loaded case:
// one parametrized model definition plus run settings, solver configuration,
// and the search and/or sweep to perform.
type Model struct {
	Model    *ModelBlock
	Settings *Settings
	Solver   *Solver
	Search   *Search
	Sweep    *Sweep
	Publish  *Publish
}

// ModelBlock is the format-agnostic representation of a `model` block: a
// named instance of a registered builder with its raw argument expressions.
type ModelBlock struct {
	BuilderType string
	Name        string
	Arguments   map[string]hcl.Expression
}

// Settings carries the eigenvalue run settings written into the solver's
// settings deck.
type Settings struct {
	Particles           int
	Batches             int
	Inactive            int
	GenerationsPerBatch int
	Seed                *int64
}

// Solver configures the external transport solver executable.
type Solver struct {
	Executable    string
	CrossSections string
	WorkDir       string
	Timeout       time.Duration
	ExtraArgs     []string
}

// Search describes the bracketed criticality search to run.
type Search struct {
	// Parameter is the human-readable name of the search parameter, used in
	// logs and reports (e.g. "boron_ppm").
	Parameter string
	Method    string
	Bracket   *[2]float64
	Guess     *float64
	Target    float64
	Tolerance float64
	MaxIter   int
}

// Sweep describes a keff evaluation over a parameter grid.
type Sweep struct {
	From    *float64
	To      *float64
	Points  int
	Values  []float64
	Workers int
}

// Publish describes where the report bundle is uploaded after a run.
type Publish struct {
	URL   string
	Files []string
}

// InputDefinition defines a single input argument of a model builder.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}
