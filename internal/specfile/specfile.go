// Package specfile loads spec descriptors from YAML or JSON files.
package specfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/speclint/pkg/models"
)

// descriptor mirrors the on-disk layout of a spec or subspec.
type descriptor struct {
	Name             string       `yaml:"name"`
	Version          string       `yaml:"version"`
	Homepage         string       `yaml:"homepage"`
	DocumentationURL string       `yaml:"documentation_url"`
	Platforms        platformMap  `yaml:"platforms"`
	SourceFiles      stringList   `yaml:"source_files"`
	Resources        stringList   `yaml:"resources"`
	TestSpec         bool         `yaml:"test_spec"`
	Subspecs         []descriptor `yaml:"subspecs"`
	TestSpecs        []descriptor `yaml:"test_specs"`
}

// platformMap keeps the declaration order of a name → deployment target mapping.
type platformMap []models.Platform

func (p *platformMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: platforms must be a mapping of name to deployment target", node.Line)
	}
	out := make(platformMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name, err := models.ParsePlatformName(key.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
		target := value.Value
		if value.Tag == "!!null" {
			target = ""
		}
		out = append(out, models.Platform{Name: name, DeploymentTarget: target})
	}
	*p = out
	return nil
}

// stringList accepts a single string or a sequence of strings.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
}

// Extensions are the file suffixes Find recognises as spec descriptors.
var Extensions = []string{".spec.yaml", ".spec.yml", ".spec.json"}

// Find returns the single descriptor in dir. Zero or several candidates are errors.
func Find(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		for _, ext := range Extensions {
			if strings.HasSuffix(e.Name(), ext) {
				found = append(found, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(found)
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no spec descriptor (%s) found in %s", strings.Join(Extensions, ", "), dir)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("several spec descriptors found in %s; pass one explicitly", dir)
	}
}

// Load reads the descriptor at path. JSON descriptors are accepted as YAML.
func Load(path string) (*models.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve spec directory: %w", err)
	}
	spec.Dir = abs
	return spec, nil
}

// Parse decodes a descriptor and returns the linked spec tree.
func Parse(data []byte) (*models.Spec, error) {
	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Version == "" {
		return nil, fmt.Errorf("spec %q has no version", d.Name)
	}
	spec, err := d.toSpec("")
	if err != nil {
		return nil, err
	}
	spec.Link()
	return spec, nil
}

func (d descriptor) toSpec(parent string) (*models.Spec, error) {
	if d.Name == "" {
		if parent == "" {
			return nil, fmt.Errorf("spec has no name")
		}
		return nil, fmt.Errorf("subspec of %s has no name", parent)
	}
	full := d.Name
	if parent != "" {
		full = parent + "/" + d.Name
	}

	s := &models.Spec{
		Name:             d.Name,
		Version:          d.Version,
		Homepage:         d.Homepage,
		DocumentationURL: d.DocumentationURL,
		Platforms:        []models.Platform(d.Platforms),
		SourceFiles:      []string(d.SourceFiles),
		Resources:        []string(d.Resources),
		TestOnly:         d.TestSpec,
	}

	seen := make(map[string]bool)
	add := func(children []descriptor, testOnly bool) error {
		for _, child := range children {
			if testOnly {
				child.TestSpec = true
			}
			sub, err := child.toSpec(full)
			if err != nil {
				return err
			}
			if seen[sub.Name] {
				return fmt.Errorf("duplicate subspec %s/%s", full, sub.Name)
			}
			seen[sub.Name] = true
			s.Subspecs = append(s.Subspecs, sub)
		}
		return nil
	}
	if err := add(d.Subspecs, false); err != nil {
		return nil, err
	}
	if err := add(d.TestSpecs, true); err != nil {
		return nil, err
	}
	return s, nil
}
