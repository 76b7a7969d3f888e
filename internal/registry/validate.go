package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/ctxlog"
)

// ValidateCase checks the loaded case against the registry: the model block
// must reference a registered builder, every required input must have an
// argument, and unknown arguments are rejected.
func (r *Registry) ValidateCase(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	if model.Model == nil {
		return fmt.Errorf("case has no model block")
	}
	mb := model.Model

	builder, ok := r.Builder(mb.BuilderType)
	if !ok {
		return fmt.Errorf("model '%s' references unknown builder type '%s' (registered: %v)",
			mb.Name, mb.BuilderType, r.builderNames())
	}

	for name, def := range builder.Inputs {
		if _, provided := mb.Arguments[name]; provided {
			continue
		}
		if def.Default == nil && !def.Optional {
			return fmt.Errorf("model '%s': missing required argument %q for builder '%s'",
				mb.Name, name, mb.BuilderType)
		}
	}
	for name := range mb.Arguments {
		if _, known := builder.Inputs[name]; !known {
			return fmt.Errorf("model '%s': unknown argument %q for builder '%s'",
				mb.Name, name, mb.BuilderType)
		}
	}

	logger.Debug("Case validated against registry.", "builder", mb.BuilderType, "model", mb.Name)
	return nil
}

func (r *Registry) builderNames() []string {
	names := make([]string, 0, len(r.BuilderRegistry))
	for name := range r.BuilderRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
