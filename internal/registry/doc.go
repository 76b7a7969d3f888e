// Package registry keeps the named model builders compiled into the binary
// and validates case configuration against their declared inputs.
package registry
