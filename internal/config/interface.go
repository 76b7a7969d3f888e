package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific case loader.
type Loader interface {
	// Load reads case configuration from a given path (file or directory),
	// translates it into the format-agnostic model, and returns a matching
	// Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding and type
// conversion implementation. It bridges raw configuration expressions and
// the Go input structs used by model builders.
type Converter interface {
	// DecodeBody evaluates the raw argument expressions of a model block
	// into a builder's input struct, applying defaults and rejecting missing
	// required arguments.
	DecodeBody(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		defs map[string]*InputDefinition,
		evalCtx *hcl.EvalContext,
	) error
}
