package models

import (
	"fmt"
	"strings"
)

// PlatformName identifies one of the Apple platforms a spec can be validated on.
type PlatformName string

const (
	// PlatformIOS is iOS (device and simulator).
	PlatformIOS PlatformName = "ios"
	// PlatformMacOS is macOS. It has no simulator.
	PlatformMacOS PlatformName = "macos"
	// PlatformWatchOS is watchOS (device and simulator).
	PlatformWatchOS PlatformName = "watchos"
	// PlatformTvOS is tvOS (device and simulator).
	PlatformTvOS PlatformName = "tvos"
)

// AllPlatformNames returns every valid platform name in canonical order.
func AllPlatformNames() []PlatformName {
	return []PlatformName{PlatformIOS, PlatformMacOS, PlatformWatchOS, PlatformTvOS}
}

// Valid returns true if the platform name is a known value.
func (n PlatformName) Valid() bool {
	switch n {
	case PlatformIOS, PlatformMacOS, PlatformWatchOS, PlatformTvOS:
		return true
	default:
		return false
	}
}

// ParsePlatformName parses a user supplied platform name.
// Matching is case-insensitive and "osx" is accepted as an alias for macOS.
func ParsePlatformName(s string) (PlatformName, error) {
	name := PlatformName(strings.ToLower(strings.TrimSpace(s)))
	if name == "osx" {
		name = PlatformMacOS
	}
	if !name.Valid() {
		return "", fmt.Errorf("unknown platform %q (valid: ios, macos, watchos, tvos)", s)
	}
	return name, nil
}

// DisplayName returns the human readable platform name.
func (n PlatformName) DisplayName() string {
	switch n {
	case PlatformIOS:
		return "iOS"
	case PlatformMacOS:
		return "macOS"
	case PlatformWatchOS:
		return "watchOS"
	case PlatformTvOS:
		return "tvOS"
	default:
		return string(n)
	}
}

// HasSimulator reports whether builds for this platform also target a simulator.
func (n PlatformName) HasSimulator() bool {
	return n != PlatformMacOS
}

// SDK returns the xcodebuild SDK name for a device or simulator build.
func (n PlatformName) SDK(simulator bool) string {
	switch n {
	case PlatformIOS:
		if simulator {
			return "iphonesimulator"
		}
		return "iphoneos"
	case PlatformMacOS:
		return "macosx"
	case PlatformWatchOS:
		if simulator {
			return "watchsimulator"
		}
		return "watchos"
	case PlatformTvOS:
		if simulator {
			return "appletvsimulator"
		}
		return "appletvos"
	default:
		return ""
	}
}

// Platform is a platform name paired with a deployment target.
type Platform struct {
	Name             PlatformName
	DeploymentTarget string
}

// String renders the platform as e.g. "iOS 12.0".
func (p Platform) String() string {
	if p.DeploymentTarget == "" {
		return p.Name.DisplayName()
	}
	return p.Name.DisplayName() + " " + p.DeploymentTarget
}
