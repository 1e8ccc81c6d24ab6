package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScriptSpec declares one scripted system.
type ScriptSpec struct {
	Tag    string   `yaml:"tag"`
	After  []string `yaml:"after"`
	Script string   `yaml:"script"` // resolved against the manifest's directory
}

// Manifest lists the scripted systems to register at startup.
type Manifest struct {
	Systems []ScriptSpec `yaml:"systems"`
}

// LoadManifest reads a system manifest and resolves script paths.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	base := filepath.Dir(path)
	seen := make(map[string]bool, len(m.Systems))
	for i := range m.Systems {
		s := &m.Systems[i]
		if s.Tag == "" {
			return nil, fmt.Errorf("manifest entry %d: missing tag", i)
		}
		if s.Script == "" {
			return nil, fmt.Errorf("manifest entry %s: missing script", s.Tag)
		}
		if seen[s.Tag] {
			return nil, fmt.Errorf("manifest entry %s: tag listed twice", s.Tag)
		}
		seen[s.Tag] = true
		if !filepath.IsAbs(s.Script) {
			s.Script = filepath.Join(base, s.Script)
		}
	}
	return &m, nil
}
