// Package installer is the boundary to the dependency installer that prepares
// a validation workspace before the build driver runs.
package installer

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// Phase is one step of the installer lifecycle.
type Phase string

const (
	PhasePrepare     Phase = "prepare"
	PhaseResolve     Phase = "resolve"
	PhaseDownload    Phase = "download"
	PhaseGenerate    Phase = "generate"
	PhaseIntegrate   Phase = "integrate"
	PhasePostInstall Phase = "post_install"
)

// Phases returns the lifecycle in execution order.
func Phases() []Phase {
	return []Phase{
		PhasePrepare,
		PhaseResolve,
		PhaseDownload,
		PhaseGenerate,
		PhaseIntegrate,
		PhasePostInstall,
	}
}

// Session is the state shared by the phases of one installation.
type Session struct {
	Manifest Manifest
	// Spec is the spec being validated (root or subspec).
	Spec *models.Spec
	// Dir is the workspace the installation happens in.
	Dir string
	// Env holds "KEY=value" overrides for child processes.
	Env []string

	// Installation is filled by the post-install phase.
	Installation *Installation
}

// Installer runs installer phases against a session.
type Installer interface {
	RunPhase(ctx context.Context, phase Phase, s *Session) error
}

// PhaseError reports a failed phase together with any output it produced.
type PhaseError struct {
	Phase  Phase
	Output string
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("the `%s` phase failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Install runs every phase in order and stops at the first failure.
func Install(ctx context.Context, inst Installer, s *Session) error {
	for _, phase := range Phases() {
		if err := inst.RunPhase(ctx, phase, s); err != nil {
			return err
		}
	}
	if s.Installation == nil {
		return &PhaseError{Phase: PhasePostInstall, Err: fmt.Errorf("no installation was produced")}
	}
	return nil
}
