// Package schema holds the HCL struct tags for case files. These structs are
// decode targets only; the hcl package translates them into the
// format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// ModelArgs represents the content of the 'arguments' block within a model.
type ModelArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Model represents a `model` block from a user's case file. It is a
// parametrized instance of a registered builder.
type Model struct {
	BuilderType string     `hcl:"builder_type,label"`
	Name        string     `hcl:"instance_name,label"`
	Arguments   *ModelArgs `hcl:"arguments,block"`
}

// Settings represents the `settings` block: eigenvalue run settings.
type Settings struct {
	Particles           int    `hcl:"particles"`
	Batches             int    `hcl:"batches"`
	Inactive            int    `hcl:"inactive,optional"`
	GenerationsPerBatch int    `hcl:"generations_per_batch,optional"`
	Seed                *int64 `hcl:"seed,optional"`
}

// Solver represents the `solver` block: the external solver executable and
// its environment.
type Solver struct {
	Executable    string   `hcl:"executable,optional"`
	CrossSections string   `hcl:"cross_sections,optional"`
	WorkDir       string   `hcl:"work_dir,optional"`
	Timeout       string   `hcl:"timeout,optional"`
	ExtraArgs     []string `hcl:"extra_args,optional"`
}

// Search represents the `search` block. The label names the search parameter.
type Search struct {
	Parameter string    `hcl:"parameter,label"`
	Method    string    `hcl:"method,optional"`
	Bracket   []float64 `hcl:"bracket,optional"`
	Guess     *float64  `hcl:"guess,optional"`
	Target    *float64  `hcl:"target,optional"`
	Tolerance *float64  `hcl:"tolerance,optional"`
	MaxIter   *int      `hcl:"max_iterations,optional"`
}

// Sweep represents the `sweep` block: a keff evaluation over a parameter grid.
type Sweep struct {
	From    *float64  `hcl:"from,optional"`
	To      *float64  `hcl:"to,optional"`
	Points  *int      `hcl:"points,optional"`
	Values  []float64 `hcl:"values,optional"`
	Workers *int      `hcl:"workers,optional"`
}

// Publish represents the `publish` block: report bundle upload target.
type Publish struct {
	URL   string   `hcl:"url"`
	Files []string `hcl:"files,optional"`
}

// CaseFile represents the top-level structure of a single case file. Blocks
// are slices so multiple files can be parsed with the same schema and merged;
// singleton constraints are enforced during translation.
type CaseFile struct {
	Models   []*Model    `hcl:"model,block"`
	Settings []*Settings `hcl:"settings,block"`
	Solvers  []*Solver   `hcl:"solver,block"`
	Searches []*Search   `hcl:"search,block"`
	Sweeps   []*Sweep    `hcl:"sweep,block"`
	Publish  []*Publish  `hcl:"publish,block"`
	Body     hcl.Body    `hcl:",remain"`
}
