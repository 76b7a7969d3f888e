package app

import (
	"github.com/vk/critgridgo/internal/registry"
	"github.com/vk/critgridgo/modules/pincell"
	"github.com/vk/critgridgo/modules/sphere"
)

// coreModules is the definitive list of all builder modules that are
// compiled into the critgridgo binary.
var coreModules = []registry.Module{
	&pincell.Module{},
	&sphere.Module{},
}
