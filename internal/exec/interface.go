// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// RunEnv is Run with extra environment entries ("KEY=value") layered over
	// the current process environment for the child only.
	RunEnv(ctx context.Context, workDir string, env []string, name string, args ...string) (output []byte, err error)

	// LookPath reports where an executable is found in PATH.
	LookPath(name string) (string, error)
}
