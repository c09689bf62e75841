package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/speclint/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Driver.Binary != "xcodebuild" {
		t.Errorf("expected driver binary 'xcodebuild', got %q", cfg.Driver.Binary)
	}

	if cfg.Driver.Simctl != "xcrun" {
		t.Errorf("expected simctl 'xcrun', got %q", cfg.Driver.Simctl)
	}

	if cfg.Driver.Timeout != 30*time.Minute {
		t.Errorf("expected driver timeout 30m, got %v", cfg.Driver.Timeout)
	}

	if cfg.Output.ArtifactsDir != "." {
		t.Errorf("expected artifacts dir '.', got %q", cfg.Output.ArtifactsDir)
	}

	if cfg.Lint.AllowWarnings || cfg.Lint.FailFast || cfg.Lint.SkipTests {
		t.Error("expected lint toggles to default to false")
	}

	if len(cfg.Installer.Command) != 0 {
		t.Errorf("expected no installer command, got %v", cfg.Installer.Command)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
lint:
  allow_warnings: true
  fail_fast: true
  platforms: [ios, macos]
  sources:
    - https://cdn.example.com/specs
driver:
  binary: /opt/xcode/xcodebuild
  timeout: 45m
installer:
  command: [pod-install, --quiet]
workspace:
  base_dir: /var/tmp/speclint
output:
  copy_artifacts: true
  artifacts_dir: ${SPECLINT_TEST_ARTIFACTS}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("SPECLINT_TEST_ARTIFACTS", "/tmp/artifacts")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if !cfg.Lint.AllowWarnings || !cfg.Lint.FailFast {
		t.Errorf("expected allow_warnings and fail_fast, got %+v", cfg.Lint)
	}

	if len(cfg.Lint.Platforms) != 2 || cfg.Lint.Platforms[1] != "macos" {
		t.Errorf("expected platforms [ios macos], got %v", cfg.Lint.Platforms)
	}

	if cfg.Driver.Binary != "/opt/xcode/xcodebuild" {
		t.Errorf("expected binary override, got %q", cfg.Driver.Binary)
	}

	if cfg.Driver.Simctl != "xcrun" {
		t.Errorf("expected simctl default to survive, got %q", cfg.Driver.Simctl)
	}

	if cfg.Driver.Timeout != 45*time.Minute {
		t.Errorf("expected driver timeout 45m, got %v", cfg.Driver.Timeout)
	}

	if len(cfg.Installer.Command) != 2 || cfg.Installer.Command[0] != "pod-install" {
		t.Errorf("expected installer command, got %v", cfg.Installer.Command)
	}

	if cfg.Workspace.BaseDir != "/var/tmp/speclint" {
		t.Errorf("expected base dir, got %q", cfg.Workspace.BaseDir)
	}

	if cfg.Output.ArtifactsDir != "/tmp/artifacts" {
		t.Errorf("expected expanded artifacts dir, got %q", cfg.Output.ArtifactsDir)
	}
}

func TestLoadFromPathEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("driver:\n  timeout: 10m\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("SPECLINT_DRIVER_TIMEOUT", "5m")
	t.Setenv("SPECLINT_LINT_SKIP_TESTS", "true")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Driver.Timeout != 5*time.Minute {
		t.Errorf("expected env timeout 5m, got %v", cfg.Driver.Timeout)
	}
	if !cfg.Lint.SkipTests {
		t.Error("expected lint.skip_tests from environment")
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	if got := expandPath("prefix-${TEST_VAR}-suffix"); got != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/speclint"); got != filepath.Join(home, "speclint") {
		t.Errorf("expected home expansion, got %q", got)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir := getUserConfigDir()
	expected := "/custom/config/speclint"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ProjectFile)
	if err := os.WriteFile(want, []byte("lint:\n  private: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Chdir(nested)

	got := findProjectConfig()
	// macOS temp dirs resolve through /private.
	gotReal, _ := filepath.EvalSymlinks(got)
	wantReal, _ := filepath.EvalSymlinks(want)
	if gotReal != wantReal {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRunConfig(t *testing.T) {
	cfg := Default()
	cfg.Lint.FailFast = true
	cfg.Lint.Private = true
	cfg.Lint.Platforms = []string{"iOS, osx", "tvos"}
	cfg.Output.CopyArtifacts = true

	rc, err := cfg.RunConfig()
	if err != nil {
		t.Fatalf("RunConfig failed: %v", err)
	}

	if !rc.FailFast || !rc.Private || !rc.CopyArtifacts {
		t.Errorf("expected toggles to carry over, got %+v", rc)
	}
	if !rc.BuildSubspecs {
		t.Error("expected subspecs to be built by default")
	}
	want := []models.PlatformName{models.PlatformIOS, models.PlatformMacOS, models.PlatformTvOS}
	if len(rc.Platforms) != len(want) {
		t.Fatalf("expected %v, got %v", want, rc.Platforms)
	}
	for i := range want {
		if rc.Platforms[i] != want[i] {
			t.Errorf("platform %d: expected %q, got %q", i, want[i], rc.Platforms[i])
		}
	}
}

func TestRunConfigInvalidPlatform(t *testing.T) {
	cfg := Default()
	cfg.Lint.Platforms = []string{"android"}

	if _, err := cfg.RunConfig(); err == nil {
		t.Fatal("expected error for invalid platform")
	}
}
