// Package workspace manages the scratch directory a validation run builds in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DirPrefix is the name prefix of every workspace root.
const DirPrefix = "speclint-"

const (
	// EnvInstallRoot points child processes at the workspace.
	EnvInstallRoot = "SPECLINT_INSTALL_ROOT"
	// EnvVerbose carries the verbosity to child processes.
	EnvVerbose = "SPECLINT_VERBOSE"
)

// Manager owns one workspace root for a single orchestrator invocation.
// Each Acquire hands out the same path, wiped and recreated.
type Manager struct {
	root string
	keep bool

	mu     sync.Mutex
	active *Workspace
}

// NewManager creates a Manager rooted at a unique directory under baseDir.
// baseDir defaults to the OS temp directory. When keep is true, released
// workspaces stay on disk for inspection.
func NewManager(baseDir string, keep bool) (*Manager, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace base directory: %w", err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace base directory: %w", err)
	}
	name := DirPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return &Manager{root: filepath.Join(abs, name), keep: keep}, nil
}

// Path returns the workspace root. It exists only while a workspace is
// acquired, or after release when keep is set.
func (m *Manager) Path() string {
	return m.root
}

// Keep reports whether released workspaces are preserved.
func (m *Manager) Keep() bool {
	return m.keep
}

// Acquire returns a fresh, empty workspace. Only one workspace may be held at a time.
func (m *Manager) Acquire(env Env) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, fmt.Errorf("workspace %s is already in use", m.root)
	}
	if err := os.RemoveAll(m.root); err != nil {
		return nil, fmt.Errorf("clear workspace: %w", err)
	}
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	overrides := env.With(EnvInstallRoot, m.root)
	ws := &Workspace{path: m.root, env: overrides, manager: m}
	m.active = ws
	return ws, nil
}

// Scoped acquires a workspace, runs fn, and releases the workspace on every
// exit path. A panic in fn is re-raised after release.
func (m *Manager) Scoped(env Env, fn func(*Workspace) error) (err error) {
	ws, err := m.Acquire(env)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := ws.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(ws)
}

func (m *Manager) release(ws *Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == ws {
		m.active = nil
	}
	if m.keep {
		return nil
	}
	if err := os.RemoveAll(ws.path); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

// Workspace is an acquired scratch directory.
type Workspace struct {
	path     string
	env      Env
	manager  *Manager
	released bool
}

// Path returns the absolute workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// Env returns the environment overrides scoped to this workspace.
func (w *Workspace) Env() Env {
	return w.env
}

// Release removes the workspace unless the manager keeps it. Calling it twice is a no-op.
func (w *Workspace) Release() error {
	if w.released {
		return nil
	}
	w.released = true
	w.env = nil
	return w.manager.release(w)
}

// Stale lists workspace roots left under baseDir by earlier runs.
func Stale(baseDir string) ([]string, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace base directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), DirPrefix) {
			out = append(out, filepath.Join(baseDir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
