package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is Hek's optional project file, hek.yaml: a small
// declarative list of extra module search roots and aliases for
// std modules, following the shape (and the yaml.v3 choice) of the
// teacher's funxy.yaml loader in internal/ext/config.go, trimmed down
// to the two things Hek's module system actually needs to configure:
// search roots and aliases.
type Manifest struct {
	// Roots are additional directories searched, in order, after the
	// module loader's base directory, when resolving `mod name;`.
	Roots []string `yaml:"roots,omitempty"`

	// Aliases maps a module name used in source to the directory it
	// should resolve to, bypassing the search path entirely.
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// LoadManifest reads and parses a hek.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// FindManifest walks up from dir looking for hek.yaml, the way the
// teacher's ext.FindConfig walks up looking for funxy.yaml. Returns
// "" with a nil error if none is found; a missing manifest is not an
// error, since module search then just falls back to the importing
// file's own directory.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "hek.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
