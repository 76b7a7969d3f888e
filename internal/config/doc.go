// Package config defines the format-agnostic representation of a simulation
// case, plus the Loader and Converter interfaces that format-specific
// implementations (currently HCL) must satisfy.
package config
