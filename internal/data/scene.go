package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/core/ecs"
)

// EntitySpec is one entity template in a scene file.
type EntitySpec struct {
	Name       string               `yaml:"name"`
	Count      int                  `yaml:"count"` // 0 means 1
	Components map[string]yaml.Node `yaml:"components"`
}

// Scene is the initial entity set of a world.
type Scene struct {
	Entities []EntitySpec `yaml:"entities"`
}

// Spawner creates an entity with components during world setup.
type Spawner interface {
	Spawn(comps ...ecs.Component) (ecs.EntityID, error)
}

// LoadScene reads a scene YAML file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

func ParseScene(raw []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &sc, nil
}

// Count returns the number of entities the scene will spawn.
func (sc *Scene) Count() int {
	n := 0
	for _, e := range sc.Entities {
		n += max(e.Count, 1)
	}
	return n
}

// Build decodes every template and spawns it. Components are decoded in kind
// order so the result does not depend on map iteration.
func (sc *Scene) Build(sp Spawner, kinds *KindRegistry) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, sc.Count())
	for i := range sc.Entities {
		spec := &sc.Entities[i]
		comps, err := spec.decode(kinds)
		if err != nil {
			return nil, fmt.Errorf("entity %d (%s): %w", i, spec.Name, err)
		}
		for n := 0; n < max(spec.Count, 1); n++ {
			id, err := sp.Spawn(comps...)
			if err != nil {
				return nil, fmt.Errorf("spawn %s: %w", spec.Name, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (spec *EntitySpec) decode(kinds *KindRegistry) ([]ecs.Component, error) {
	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	comps := make([]ecs.Component, 0, len(names))
	for _, name := range names {
		node := spec.Components[name]
		c, err := kinds.Decode(ecs.Kind(name), &node)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}
