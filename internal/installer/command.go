package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	iexec "github.com/ShayCichocki/speclint/internal/exec"
)

// CommandInstaller delegates resolution and project generation to an external
// command. The phase name is appended to the configured argv, so a command of
// ["pod-installer", "--quiet"] runs "pod-installer --quiet resolve".
type CommandInstaller struct {
	runner  iexec.CommandRunner
	command []string
	fs      afero.Fs
	logger  zerolog.Logger
}

// CommandOption configures a CommandInstaller.
type CommandOption func(*CommandInstaller)

// WithFs sets the filesystem manifests and results are read from and written to.
func WithFs(fs afero.Fs) CommandOption {
	return func(c *CommandInstaller) { c.fs = fs }
}

// WithLogger sets the installer logger.
func WithLogger(l zerolog.Logger) CommandOption {
	return func(c *CommandInstaller) { c.logger = l }
}

// NewCommandInstaller creates an installer around command. An empty command
// skips the external phases and synthesizes the installation locally.
func NewCommandInstaller(runner iexec.CommandRunner, command []string, opts ...CommandOption) *CommandInstaller {
	c := &CommandInstaller{
		runner:  runner,
		command: append([]string(nil), command...),
		fs:      afero.NewOsFs(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunPhase implements Installer.
func (c *CommandInstaller) RunPhase(ctx context.Context, phase Phase, s *Session) error {
	switch phase {
	case PhasePrepare:
		if err := c.fs.MkdirAll(s.Dir, 0755); err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}
		if err := WriteManifest(c.fs, filepath.Join(s.Dir, ManifestFile), s.Manifest); err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}
		return nil

	case PhasePostInstall:
		inst, err := readInstallation(c.fs, filepath.Join(s.Dir, ResultFile))
		if errors.Is(err, os.ErrNotExist) {
			inst, err = synthesize(c.fs, s.Spec, s.Manifest.TestSpecs)
		}
		if err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}
		s.Installation = inst
		return nil

	default:
		if len(c.command) == 0 {
			return nil
		}
		args := append(append([]string(nil), c.command[1:]...), string(phase))
		c.logger.Debug().Str("phase", string(phase)).Strs("args", args).Msg("running installer")
		out, err := c.runner.RunEnv(ctx, s.Dir, s.Env, c.command[0], args...)
		if err != nil {
			return &PhaseError{Phase: phase, Output: string(out), Err: err}
		}
		return nil
	}
}
