// Package config handles configuration loading for speclint.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/speclint/internal/validator"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. SPECLINT_DRIVER_TIMEOUT.
const EnvPrefix = "SPECLINT"

// ProjectFile is searched for in the working directory and its parents.
const ProjectFile = ".speclint.yaml"

// Config holds all configuration for speclint.
type Config struct {
	Lint      LintConfig      `mapstructure:"lint"`
	Driver    DriverConfig    `mapstructure:"driver"`
	Installer InstallerConfig `mapstructure:"installer"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Output    OutputConfig    `mapstructure:"output"`
}

// LintConfig holds the defaults for `speclint lint` flags.
type LintConfig struct {
	AllowWarnings     bool     `mapstructure:"allow_warnings"`
	FailFast          bool     `mapstructure:"fail_fast"`
	SkipTests         bool     `mapstructure:"skip_tests"`
	NoClean           bool     `mapstructure:"no_clean"`
	UseFrameworks     bool     `mapstructure:"use_frameworks"`
	UseModularHeaders bool     `mapstructure:"use_modular_headers"`
	Private           bool     `mapstructure:"private"`
	SkipURLChecks     bool     `mapstructure:"skip_url_checks"`
	Sources           []string `mapstructure:"sources"`
	Platforms         []string `mapstructure:"platforms"`
}

// DriverConfig locates the build tool.
type DriverConfig struct {
	Binary  string        `mapstructure:"binary"`
	Simctl  string        `mapstructure:"simctl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InstallerConfig holds the external installer argv. Empty means the
// built-in manifest and accessor synthesis only.
type InstallerConfig struct {
	Command []string `mapstructure:"command"`
}

// WorkspaceConfig holds scratch directory settings.
type WorkspaceConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// OutputConfig holds artifact, history and log destinations.
type OutputConfig struct {
	ArtifactsDir  string `mapstructure:"artifacts_dir"`
	CopyArtifacts bool   `mapstructure:"copy_artifacts"`
	HistoryDB     string `mapstructure:"history_db"`
	LogFile       string `mapstructure:"log_file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (SPECLINT_LINT_FAIL_FAST, ...)
// 2. Project config (.speclint.yaml in current directory or parent)
// 3. User config (~/.config/speclint/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Workspace.BaseDir = expandPath(cfg.Workspace.BaseDir)
	cfg.Output.ArtifactsDir = expandPath(cfg.Output.ArtifactsDir)
	cfg.Output.HistoryDB = expandPath(cfg.Output.HistoryDB)
	cfg.Output.LogFile = expandPath(cfg.Output.LogFile)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("lint.allow_warnings", d.Lint.AllowWarnings)
	v.SetDefault("lint.fail_fast", d.Lint.FailFast)
	v.SetDefault("lint.skip_tests", d.Lint.SkipTests)
	v.SetDefault("lint.no_clean", d.Lint.NoClean)
	v.SetDefault("lint.use_frameworks", d.Lint.UseFrameworks)
	v.SetDefault("lint.use_modular_headers", d.Lint.UseModularHeaders)
	v.SetDefault("lint.private", d.Lint.Private)
	v.SetDefault("lint.skip_url_checks", d.Lint.SkipURLChecks)
	v.SetDefault("lint.sources", []string{})
	v.SetDefault("lint.platforms", []string{})

	v.SetDefault("driver.binary", d.Driver.Binary)
	v.SetDefault("driver.simctl", d.Driver.Simctl)
	v.SetDefault("driver.timeout", d.Driver.Timeout.String())

	v.SetDefault("installer.command", []string{})

	v.SetDefault("workspace.base_dir", d.Workspace.BaseDir)

	v.SetDefault("output.artifacts_dir", d.Output.ArtifactsDir)
	v.SetDefault("output.copy_artifacts", d.Output.CopyArtifacts)
	v.SetDefault("output.history_db", d.Output.HistoryDB)
	v.SetDefault("output.log_file", d.Output.LogFile)
}

// getUserConfigDir returns the XDG config directory for speclint.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "speclint")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "speclint")
	}
	return filepath.Join(home, ".config", "speclint")
}

// findProjectConfig searches for .speclint.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandPath expands ${VAR} references and a leading ~/.
func expandPath(s string) string {
	s = os.ExpandEnv(s)
	if strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, s[2:])
		}
	}
	return s
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Driver: DriverConfig{
			Binary:  "xcodebuild",
			Simctl:  "xcrun",
			Timeout: 30 * time.Minute,
		},
		Output: OutputConfig{
			ArtifactsDir: ".",
		},
	}
}

// RunConfig turns the lint section into a validator configuration.
// Flags are applied by the caller on the returned value.
func (c *Config) RunConfig() (validator.RunConfig, error) {
	rc := validator.DefaultRunConfig()
	rc.AllowWarnings = c.Lint.AllowWarnings
	rc.FailFast = c.Lint.FailFast
	rc.SkipTests = c.Lint.SkipTests
	rc.NoClean = c.Lint.NoClean
	rc.UseFrameworks = c.Lint.UseFrameworks
	rc.UseModularHeaders = c.Lint.UseModularHeaders
	rc.Private = c.Lint.Private
	rc.SkipURLChecks = c.Lint.SkipURLChecks
	rc.Sources = append([]string(nil), c.Lint.Sources...)
	rc.CopyArtifacts = c.Output.CopyArtifacts
	rc.ArtifactsDir = c.Output.ArtifactsDir

	platforms, err := ParsePlatforms(c.Lint.Platforms)
	if err != nil {
		return rc, err
	}
	rc.Platforms = platforms
	return rc, nil
}

// ParsePlatforms parses platform names, accepting comma-separated entries.
func ParsePlatforms(names []string) ([]models.PlatformName, error) {
	var out []models.PlatformName
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			p, err := models.ParsePlatformName(name)
			if err != nil {
				return nil, fmt.Errorf("platforms: %w", err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}
