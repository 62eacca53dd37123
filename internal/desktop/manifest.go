package desktop

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

type manifestFile struct {
	Windows []Definition `yaml:"windows"`
}

// DefaultManifest returns the built-in portfolio windows.
func DefaultManifest() []Definition {
	defs, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("desktop: embedded manifest: %v", err))
	}
	return defs
}

// LoadManifest reads a manifest file from disk.
func LoadManifest(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest and validates window ids.
func ParseManifest(data []byte) ([]Definition, error) {
	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validateDefinitions(mf.Windows); err != nil {
		return nil, err
	}
	return mf.Windows, nil
}

func validateDefinitions(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: no windows", ErrInvalidManifest)
	}
	seen := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		if def.ID == "" {
			return fmt.Errorf("%w: window %d has no id", ErrInvalidManifest, i)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidManifest, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return nil
}
