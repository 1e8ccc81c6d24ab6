package data

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/core/ecs"
)

type decodeFunc func(node *yaml.Node) (ecs.Component, error)

// KindRegistry maps kind tags to concrete component types so components can
// be built from YAML nodes or generic maps (scene files, Lua tables) and
// flattened back into maps.
type KindRegistry struct {
	decoders map[ecs.Kind]decodeFunc
}

func NewKindRegistry() *KindRegistry {
	return &KindRegistry{decoders: make(map[ecs.Kind]decodeFunc, 16)}
}

// Register makes T decodable under the kind tag its zero value reports.
func Register[T ecs.Component](r *KindRegistry) ecs.Kind {
	var zero T
	kind := zero.Kind()
	r.decoders[kind] = func(node *yaml.Node) (ecs.Component, error) {
		var v T
		if node == nil {
			return v, nil
		}
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return v, nil
	}
	return kind
}

func (r *KindRegistry) Known(kind ecs.Kind) bool {
	_, ok := r.decoders[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *KindRegistry) Kinds() []ecs.Kind {
	kinds := make([]ecs.Kind, 0, len(r.decoders))
	for k := range r.decoders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Decode builds a component of kind from a YAML node. A nil node yields the
// zero value.
func (r *KindRegistry) Decode(kind ecs.Kind, node *yaml.Node) (ecs.Component, error) {
	dec, ok := r.decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown component kind %q", kind)
	}
	return dec(node)
}

// DecodeValue builds a component of kind from a generic value such as
// map[string]any.
func (r *KindRegistry) DecodeValue(kind ecs.Kind, v any) (ecs.Component, error) {
	if v == nil {
		return r.Decode(kind, nil)
	}
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("encode %s fields: %w", kind, err)
	}
	return r.Decode(kind, &node)
}

// Encode flattens a component into a field map keyed by its yaml names.
func (r *KindRegistry) Encode(c ecs.Component) (map[string]any, error) {
	var node yaml.Node
	if err := node.Encode(c); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Kind(), err)
	}
	fields := map[string]any{}
	if err := node.Decode(&fields); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", c.Kind(), err)
	}
	return fields, nil
}

// ToGeneric converts any YAML-encodable value into plain maps, slices and
// scalars.
func ToGeneric(v any) (any, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	var out any
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
