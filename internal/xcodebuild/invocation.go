// Package xcodebuild drives the external build tool for one matrix cell at a time.
package xcodebuild

import (
	"path/filepath"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// Action is the xcodebuild action to run.
type Action string

const (
	// ActionBuild compiles the scheme.
	ActionBuild Action = "build"
	// ActionTest builds and runs the scheme's tests.
	ActionTest Action = "test"
)

// Configuration is a build configuration.
type Configuration string

const (
	// Release is the optimized configuration.
	Release Configuration = "Release"
	// Debug is the development configuration.
	Debug Configuration = "Debug"
)

// WorkspaceFile is the generated workspace inside a validation directory.
const WorkspaceFile = "App.xcworkspace"

// DerivedDataDir is the derived output directory inside a validation directory.
const DerivedDataDir = "DerivedData"

// Invocation describes one driver run.
type Invocation struct {
	Action        Action
	Scheme        string
	Configuration Configuration
	Platform      models.Platform
	Simulator     bool

	// Dir is the validation directory holding App.xcworkspace.
	Dir string
	// Env is layered over the process environment for this invocation only.
	Env []string
}

// DerivedData returns the derived output path for the invocation.
func (inv Invocation) DerivedData() string {
	return filepath.Join(inv.Dir, DerivedDataDir)
}

// PlatformDir names the build products directory, e.g. "Release-iphonesimulator".
func PlatformDir(cfg Configuration, platform models.PlatformName, simulator bool) string {
	return string(cfg) + "-" + platform.SDK(simulator)
}

// ProductsDir returns where xcodebuild places products for a cell.
// macOS products land in a directory named after the configuration alone.
func ProductsDir(derivedData string, cfg Configuration, platform models.PlatformName, simulator bool) string {
	dir := PlatformDir(cfg, platform, simulator)
	if platform == models.PlatformMacOS {
		dir = string(cfg)
	}
	return filepath.Join(derivedData, "Build", "Products", dir)
}

// Args returns the deterministic argument list for inv.
// destination is the -destination value; empty omits the flag.
func Args(inv Invocation, destination string) []string {
	args := []string{
		"clean", string(inv.Action),
		"-workspace", filepath.Join(inv.Dir, WorkspaceFile),
		"-scheme", inv.Scheme,
		"-configuration", string(inv.Configuration),
		"-derivedDataPath", inv.DerivedData(),
		"-sdk", inv.Platform.Name.SDK(inv.Simulator),
	}
	if destination != "" {
		args = append(args, "-destination", destination)
	}
	return append(args,
		"CODE_SIGN_IDENTITY=",
		"CODE_SIGNING_REQUIRED=NO",
		"CODE_SIGNING_ALLOWED=NO",
		"SKIP_INSTALL=YES",
		"GCC_INSTRUMENT_PROGRAM_FLOW_ARCS=NO",
		"CLANG_ENABLE_CODE_COVERAGE=NO",
		"STRIP_INSTALLED_PRODUCT=NO",
	)
}

// DeviceDestination returns the generic device destination for a platform.
func DeviceDestination(name models.PlatformName) string {
	if name == models.PlatformMacOS {
		return "platform=macOS"
	}
	return "generic/platform=" + name.DisplayName()
}
