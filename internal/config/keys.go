package config

import (
	"fmt"
	"os"
	"strings"
)

// KeySource represents where a setting was loaded from.
type KeySource string

const (
	KeySourceEnv     KeySource = "environment"
	KeySourceConfig  KeySource = "config_file"
	KeySourceDefault KeySource = "default"
)

// Setting is one resolved configuration key, as printed by `speclint config`.
type Setting struct {
	Key    string
	Value  string
	Source KeySource
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Settings lists every key of cfg in a stable order.
// A key whose value differs from the default is attributed to the config files
// unless its environment variable is set.
func Settings(cfg *Config) []Setting {
	def := Default()
	pairs := []struct {
		key      string
		val, dfl any
	}{
		{"lint.allow_warnings", cfg.Lint.AllowWarnings, def.Lint.AllowWarnings},
		{"lint.fail_fast", cfg.Lint.FailFast, def.Lint.FailFast},
		{"lint.skip_tests", cfg.Lint.SkipTests, def.Lint.SkipTests},
		{"lint.no_clean", cfg.Lint.NoClean, def.Lint.NoClean},
		{"lint.use_frameworks", cfg.Lint.UseFrameworks, def.Lint.UseFrameworks},
		{"lint.use_modular_headers", cfg.Lint.UseModularHeaders, def.Lint.UseModularHeaders},
		{"lint.private", cfg.Lint.Private, def.Lint.Private},
		{"lint.skip_url_checks", cfg.Lint.SkipURLChecks, def.Lint.SkipURLChecks},
		{"lint.sources", joinList(cfg.Lint.Sources), joinList(def.Lint.Sources)},
		{"lint.platforms", joinList(cfg.Lint.Platforms), joinList(def.Lint.Platforms)},
		{"driver.binary", cfg.Driver.Binary, def.Driver.Binary},
		{"driver.simctl", cfg.Driver.Simctl, def.Driver.Simctl},
		{"driver.timeout", cfg.Driver.Timeout, def.Driver.Timeout},
		{"installer.command", joinList(cfg.Installer.Command), joinList(def.Installer.Command)},
		{"workspace.base_dir", cfg.Workspace.BaseDir, def.Workspace.BaseDir},
		{"output.artifacts_dir", cfg.Output.ArtifactsDir, def.Output.ArtifactsDir},
		{"output.copy_artifacts", cfg.Output.CopyArtifacts, def.Output.CopyArtifacts},
		{"output.history_db", cfg.Output.HistoryDB, def.Output.HistoryDB},
		{"output.log_file", cfg.Output.LogFile, def.Output.LogFile},
	}

	out := make([]Setting, 0, len(pairs))
	for _, p := range pairs {
		val := fmt.Sprint(p.val)
		src := KeySourceDefault
		switch {
		case os.Getenv(EnvVar(p.key)) != "":
			src = KeySourceEnv
		case val != fmt.Sprint(p.dfl):
			src = KeySourceConfig
		}
		out = append(out, Setting{Key: p.key, Value: val, Source: src})
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}
