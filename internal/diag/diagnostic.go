package diag

import (
	"slices"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// Diagnostic is a deduplicated validation result.
// One record exists per (Severity, Attribute, Message, PublicOnly); the platforms and
// subspecs that produced it accumulate in first-seen order.
type Diagnostic struct {
	Severity   Severity              `json:"severity"`
	Attribute  string                `json:"attribute"`
	Message    string                `json:"message"`
	PublicOnly bool                  `json:"public_only"`
	Platforms  []models.PlatformName `json:"platforms"`
	Subspecs   []string              `json:"subspecs"`
}

// Scope identifies where a diagnostic was observed.
// An empty Platform or Subspec means the observation is not tied to one.
type Scope struct {
	Platform models.PlatformName
	Subspec  string
}

type key struct {
	sev        Severity
	attribute  string
	message    string
	publicOnly bool
}

func (d *Diagnostic) key() key {
	return key{sev: d.Severity, attribute: d.Attribute, message: d.Message, publicOnly: d.PublicOnly}
}

func (d *Diagnostic) tag(scope Scope) {
	if scope.Platform != "" && !slices.Contains(d.Platforms, scope.Platform) {
		d.Platforms = append(d.Platforms, scope.Platform)
	}
	if scope.Subspec != "" && !slices.Contains(d.Subspecs, scope.Subspec) {
		d.Subspecs = append(d.Subspecs, scope.Subspec)
	}
}

func (d *Diagnostic) clone() Diagnostic {
	out := *d
	out.Platforms = slices.Clone(d.Platforms)
	out.Subspecs = slices.Clone(d.Subspecs)
	return out
}
