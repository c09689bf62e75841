package validator

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/speclint/internal/diag"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// ErrInvalidConfig is the sentinel every ConfigError unwraps to.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError rejects a run before any build cell executes.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// RunConfig is fixed for the duration of one Build.
type RunConfig struct {
	AllowWarnings bool
	FailFast      bool
	// BuildSubspecs validates library subspecs after the active spec.
	BuildSubspecs bool
	// OnlySubspec restricts validation to one subspec. A base name is
	// qualified under the root spec.
	OnlySubspec       string
	UseFrameworks     bool
	UseModularHeaders bool
	SkipTests         bool
	// NoClean keeps the workspace on disk after the run.
	NoClean bool
	Sources []string
	// Platforms limits the run. Empty means every platform the spec supports.
	Platforms []models.PlatformName

	// Private ignores diagnostics that only matter for public specs.
	Private       bool
	SkipURLChecks bool

	CopyArtifacts bool
	// ArtifactsDir receives BuiltPods/. Defaults to the working directory.
	ArtifactsDir string

	Verbose bool
	// Env is passed to the installer and build driver on top of the workspace overrides.
	Env map[string]string
}

// DefaultRunConfig returns a configuration that builds subspecs and runs tests.
func DefaultRunConfig() RunConfig {
	return RunConfig{BuildSubspecs: true}
}

// Validate rejects platform names outside the supported set.
func (c RunConfig) Validate() error {
	for _, p := range c.Platforms {
		if !p.Valid() {
			return configErrorf("invalid platform %q (valid: ios, macos, watchos, tvos)", string(p))
		}
	}
	return nil
}

// Policy returns the verdict policy for this configuration.
func (c RunConfig) Policy() diag.Policy {
	return diag.Policy{AllowWarnings: c.AllowWarnings, IgnorePublicOnly: c.Private}
}
