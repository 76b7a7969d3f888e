// Package app wires the application together: configuration, logging, the
// builder registry, the case model, and the run lifecycle (deck validation,
// criticality search, parameter sweep, reporting).
package app
