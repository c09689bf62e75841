// Package diag holds the diagnostic model of a validation run.
//
// A Diagnostic is created the first time a (severity, attribute, message,
// public-only) tuple is recorded. Later observations of the same tuple, from
// another platform or subspec, only add their Scope to the existing record, so
// a warning emitted by both the iOS and macOS builds is reported once with both
// platform tags.
//
// The Store never performs IO. Rendering lives in internal/report and the
// orchestrator in internal/validator decides what to record.
package diag
