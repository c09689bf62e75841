// Package validator walks the build matrix of a spec and turns the build
// driver's output into a deduplicated set of diagnostics with a verdict.
//
// A Builder validates the active spec and, unless disabled, each of its
// library subspecs. For every platform it acquires a fresh workspace, runs the
// installer phases, builds the four configuration/destination cells, runs the
// spec's test specs, and releases the workspace again. Only configuration
// errors are returned from Build; everything else ends up in Results.
package validator
