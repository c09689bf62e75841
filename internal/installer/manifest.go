package installer

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// ManifestFile is the name of the synthesized manifest inside the workspace.
const ManifestFile = "Manifest.yaml"

// Dependency points the installer at the spec under validation.
type Dependency struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Manifest is the ephemeral install manifest. It declares the spec being
// validated as its only dependency.
type Manifest struct {
	Platform          models.PlatformName `yaml:"platform"`
	DeploymentTarget  string              `yaml:"deployment_target,omitempty"`
	UseFrameworks     bool                `yaml:"use_frameworks"`
	UseModularHeaders bool                `yaml:"use_modular_headers"`
	Sources           []string            `yaml:"sources,omitempty"`
	Dependency        Dependency          `yaml:"dependency"`
	TestSpecs         []string            `yaml:"test_specs,omitempty"`
}

// ManifestOptions are the run-wide settings copied into every manifest.
type ManifestOptions struct {
	UseFrameworks     bool
	UseModularHeaders bool
	Sources           []string
	SkipTests         bool
}

// NewManifest synthesizes the manifest for validating spec on platform.
func NewManifest(spec *models.Spec, platform models.Platform, opts ManifestOptions) Manifest {
	m := Manifest{
		Platform:          platform.Name,
		DeploymentTarget:  platform.DeploymentTarget,
		UseFrameworks:     opts.UseFrameworks,
		UseModularHeaders: opts.UseModularHeaders,
		Sources:           append([]string(nil), opts.Sources...),
		Dependency: Dependency{
			Name: spec.FullName(),
			Path: spec.Root().Dir,
		},
	}
	if !opts.SkipTests {
		for _, ts := range spec.TestSpecs() {
			m.TestSpecs = append(m.TestSpecs, ts.FullName())
		}
	}
	return m
}

// WriteManifest encodes m to path on fs.
func WriteManifest(fs afero.Fs, path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes the manifest at path on fs.
func ReadManifest(fs afero.Fs, path string) (Manifest, error) {
	var m Manifest
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
