package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// ResultFile is where an external installer may describe what it generated.
const ResultFile = "install-result.yaml"

// DefaultScheme is the build scheme of a synthesized installation.
const DefaultScheme = "App"

// Target is one native build target produced by the installer.
type Target struct {
	Label string   `yaml:"label"`
	Specs []string `yaml:"specs"`
	// Scheme builds the target.
	Scheme string `yaml:"scheme"`
	// TestSchemes maps a test spec's full name to the scheme that runs it.
	TestSchemes map[string]string `yaml:"test_schemes,omitempty"`
}

// FileAccessor lists the files a spec's patterns resolved to.
type FileAccessor struct {
	SourceFiles []string `yaml:"source_files"`
	Resources   []string `yaml:"resources"`
}

// Installation is the outcome of a successful post-install phase.
type Installation struct {
	Targets   []Target                `yaml:"targets"`
	Accessors map[string]FileAccessor `yaml:"file_accessors"`
}

// BuildScheme returns the scheme of the first target.
func (i *Installation) BuildScheme() string {
	for _, t := range i.Targets {
		if t.Scheme != "" {
			return t.Scheme
		}
	}
	return DefaultScheme
}

// TestScheme returns the scheme that runs testSpec, e.g. "Core-Unit-Tests".
func (i *Installation) TestScheme(testSpec *models.Spec) string {
	name := testSpec.FullName()
	for _, t := range i.Targets {
		if s, ok := t.TestSchemes[name]; ok && s != "" {
			return s
		}
	}
	return TestSchemeName(testSpec)
}

// TestSchemeName is the conventional scheme name for a test spec.
func TestSchemeName(testSpec *models.Spec) string {
	return testSpec.Root().Name + "-Unit-" + testSpec.Name
}

// FileAccessor returns the accessor for the spec with the given full name.
func (i *Installation) FileAccessor(name string) (FileAccessor, bool) {
	fa, ok := i.Accessors[name]
	return fa, ok
}

// readInstallation decodes an install result written by an external installer.
func readInstallation(fs afero.Fs, path string) (*Installation, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var inst Installation
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if inst.Accessors == nil {
		inst.Accessors = make(map[string]FileAccessor)
	}
	return &inst, nil
}

// synthesize builds a single-target installation for spec, resolving every
// spec's patterns relative to the root's directory.
func synthesize(fs afero.Fs, spec *models.Spec, testSpecs []string) (*Installation, error) {
	root := spec.Root()
	target := Target{
		Label:  "Pods-" + DefaultScheme,
		Scheme: DefaultScheme,
	}
	spec.Walk(func(s *models.Spec) {
		if !s.TestOnly {
			target.Specs = append(target.Specs, s.FullName())
		}
	})
	for _, name := range testSpecs {
		if ts := root.SubspecByName(name); ts != nil {
			if target.TestSchemes == nil {
				target.TestSchemes = make(map[string]string)
			}
			target.TestSchemes[name] = TestSchemeName(ts)
		}
	}

	inst := &Installation{
		Targets:   []Target{target},
		Accessors: make(map[string]FileAccessor),
	}

	var walkErr error
	root.Walk(func(s *models.Spec) {
		if walkErr != nil {
			return
		}
		sources, err := expandPatterns(fs, root.Dir, s.SourceFiles)
		if err != nil {
			walkErr = err
			return
		}
		resources, err := expandPatterns(fs, root.Dir, s.Resources)
		if err != nil {
			walkErr = err
			return
		}
		inst.Accessors[s.FullName()] = FileAccessor{SourceFiles: sources, Resources: resources}
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return inst, nil
}

// expandPatterns returns the files under dir matching any of patterns,
// relative to dir, without duplicates.
func expandPatterns(fs afero.Fs, dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if dir == "" {
		dir = "."
	}
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return nil, nil
	}

	var expanded []string
	for _, p := range patterns {
		expanded = append(expanded, expandBraces(filepath.ToSlash(p))...)
	}

	seen := make(map[string]bool)
	var out []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "../") || seen[rel] {
			return nil
		}
		for _, p := range expanded {
			if matchGlob(rel, p) {
				seen[rel] = true
				out = append(out, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve file patterns in %s: %w", dir, err)
	}
	return out, nil
}
