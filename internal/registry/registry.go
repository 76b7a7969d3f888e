package registry

import (
	"context"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/deck"
)

// Module is the interface that all builder modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// BuildFunc assembles a case from a decoded input struct and the current
// value of the search parameter.
type BuildFunc func(ctx context.Context, input any, param float64) (*deck.Case, error)

// RegisteredBuilder binds a builder's declared inputs to its Go
// implementation.
type RegisteredBuilder struct {
	Description string
	// Parameter documents what the search parameter means to this builder
	// (e.g. "boron concentration in ppm by weight").
	Parameter string
	Inputs    map[string]*config.InputDefinition
	NewInput  func() any
	Fn        BuildFunc
}

// Registry holds all registered builders for a single application instance.
type Registry struct {
	BuilderRegistry map[string]*RegisteredBuilder
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{BuilderRegistry: make(map[string]*RegisteredBuilder)}
}

// RegisterBuilder adds a builder under its type name. Registering the same
// name twice is a programmer error and panics.
func (r *Registry) RegisterBuilder(name string, b *RegisteredBuilder) {
	if _, dup := r.BuilderRegistry[name]; dup {
		panic("registry: duplicate builder registration: " + name)
	}
	r.BuilderRegistry[name] = b
}

// Builder looks up a registered builder by type name.
func (r *Registry) Builder(name string) (*RegisteredBuilder, bool) {
	b, ok := r.BuilderRegistry[name]
	return b, ok
}
