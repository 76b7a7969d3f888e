// Package hcl implements the config.Loader and config.Converter interfaces
// for HCL case files.
package hcl
