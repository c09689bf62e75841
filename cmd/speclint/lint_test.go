package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/ShayCichocki/speclint/internal/config"
	"github.com/ShayCichocki/speclint/pkg/models"
)

func parseLintFlags(t *testing.T, args ...string) (*lintOptions, *pflag.FlagSet) {
	t.Helper()
	o := &lintOptions{}
	fs := pflag.NewFlagSet("lint", pflag.ContinueOnError)
	o.bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return o, fs
}

func TestLintRunConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Lint.AllowWarnings = true
	cfg.Lint.Platforms = []string{"ios"}
	cfg.Lint.Sources = []string{"https://cdn.example.com"}

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o *lintOptions, fs *pflag.FlagSet)
	}{
		{
			name: "unset flags keep configured values",
			args: nil,
			check: func(t *testing.T, o *lintOptions, fs *pflag.FlagSet) {
				rc, err := o.runConfig(fs, cfg, false)
				if err != nil {
					t.Fatal(err)
				}
				if !rc.AllowWarnings {
					t.Error("expected allow_warnings from config")
				}
				if !rc.BuildSubspecs {
					t.Error("expected subspecs to be built")
				}
				if len(rc.Platforms) != 1 || rc.Platforms[0] != models.PlatformIOS {
					t.Errorf("platforms = %v", rc.Platforms)
				}
				if len(rc.Sources) != 1 {
					t.Errorf("sources = %v", rc.Sources)
				}
			},
		},
		{
			name: "flags override config",
			args: []string{"--allow-warnings=false", "--platforms", "macos,tvos", "--no-subspecs",
				"--subspec", "Net", "--fail-fast", "--sources", "a,b", "--artifacts-dir", "/out"},
			check: func(t *testing.T, o *lintOptions, fs *pflag.FlagSet) {
				rc, err := o.runConfig(fs, cfg, true)
				if err != nil {
					t.Fatal(err)
				}
				if rc.AllowWarnings {
					t.Error("expected --allow-warnings=false to win")
				}
				if rc.BuildSubspecs {
					t.Error("expected --no-subspecs to disable subspecs")
				}
				if rc.OnlySubspec != "Net" || !rc.FailFast || !rc.Verbose {
					t.Errorf("unexpected config %+v", rc)
				}
				want := []models.PlatformName{models.PlatformMacOS, models.PlatformTvOS}
				if len(rc.Platforms) != 2 || rc.Platforms[0] != want[0] || rc.Platforms[1] != want[1] {
					t.Errorf("platforms = %v, want %v", rc.Platforms, want)
				}
				if len(rc.Sources) != 2 || rc.ArtifactsDir != "/out" {
					t.Errorf("sources = %v, artifacts dir = %q", rc.Sources, rc.ArtifactsDir)
				}
			},
		},
		{
			name: "invalid platform",
			args: []string{"--platforms", "android"},
			check: func(t *testing.T, o *lintOptions, fs *pflag.FlagSet) {
				if _, err := o.runConfig(fs, cfg, false); err == nil {
					t.Error("expected error for invalid platform")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, fs := parseLintFlags(t, tt.args...)
			tt.check(t, o, fs)
		})
	}
}

func TestLintDriverTimeout(t *testing.T) {
	cfg := config.Default()

	o, fs := parseLintFlags(t)
	if got := o.driverTimeout(fs, cfg); got != 30*time.Minute {
		t.Errorf("default timeout = %v, want 30m", got)
	}

	o, fs = parseLintFlags(t, "--timeout", "90s")
	if got := o.driverTimeout(fs, cfg); got != 90*time.Second {
		t.Errorf("flag timeout = %v, want 90s", got)
	}
}

func TestPlatformList(t *testing.T) {
	got := platformList([]models.PlatformName{models.PlatformIOS, models.PlatformWatchOS})
	if got != "iOS,watchOS" {
		t.Errorf("platformList = %q", got)
	}
}
