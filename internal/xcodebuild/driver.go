package xcodebuild

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	iexec "github.com/ShayCichocki/speclint/internal/exec"
)

// DefaultBinary is the build driver executable.
const DefaultBinary = "xcodebuild"

// InvocationError reports that the driver could not run to completion,
// as distinct from it running and reporting compile errors.
type InvocationError struct {
	Command  string
	Timeout  time.Duration
	TimedOut bool
	Err      error
}

func (e *InvocationError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out after %s", e.Command, e.Timeout)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Driver invokes xcodebuild with a deterministic flag set.
type Driver struct {
	runner       iexec.CommandRunner
	binary       string
	timeout      time.Duration
	destinations DestinationFinder
	logger       zerolog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithBinary overrides the driver executable.
func WithBinary(binary string) Option {
	return func(d *Driver) {
		if binary != "" {
			d.binary = binary
		}
	}
}

// WithTimeout bounds every invocation. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.timeout = timeout }
}

// WithDestinationFinder sets how simulator destinations are resolved.
func WithDestinationFinder(f DestinationFinder) Option {
	return func(d *Driver) { d.destinations = f }
}

// WithLogger sets the logger used for command lines and timings.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New creates a Driver. The default destination finder queries simctl through runner.
func New(runner iexec.CommandRunner, opts ...Option) *Driver {
	d := &Driver{
		runner: runner,
		binary: DefaultBinary,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.destinations == nil {
		d.destinations = NewSimctlFinder(runner, "")
	}
	return d
}

// Binary returns the configured executable name.
func (d *Driver) Binary() string {
	return d.binary
}

// Available reports whether the driver executable can be found.
func (d *Driver) Available() bool {
	_, err := d.runner.LookPath(d.binary)
	return err == nil
}

// Invoke runs one cell and returns the combined output.
// A non-zero exit or timeout yields the captured output and an *InvocationError.
// Any other error means the invocation could not be prepared.
func (d *Driver) Invoke(ctx context.Context, inv Invocation) (string, error) {
	destination := DeviceDestination(inv.Platform.Name)
	if inv.Simulator {
		dest, err := d.destinations.SimulatorDestination(ctx, inv.Platform)
		if err != nil {
			return "", err
		}
		destination = dest
	}

	args := Args(inv, destination)
	command := shellquote.Join(append([]string{d.binary}, args...)...)
	d.logger.Debug().Str("command", command).Msg("invoking build driver")

	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := d.runner.RunEnv(runCtx, inv.Dir, inv.Env, d.binary, args...)
	d.logger.Debug().
		Str("action", string(inv.Action)).
		Str("configuration", string(inv.Configuration)).
		Str("platform", inv.Platform.String()).
		Bool("simulator", inv.Simulator).
		Dur("elapsed", time.Since(start)).
		Msg("build driver finished")

	if err != nil {
		invErr := &InvocationError{Command: command, Timeout: d.timeout, Err: err}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			invErr.TimedOut = true
		}
		return string(out), invErr
	}
	return string(out), nil
}
