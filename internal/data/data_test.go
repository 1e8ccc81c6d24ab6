package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/core/ecs"
)

type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (point) Kind() ecs.Kind { return "Point" }

type link struct {
	Target ecs.EntityID `yaml:"target"`
	Active bool         `yaml:"active"`
}

func (link) Kind() ecs.Kind { return "Link" }

type flag struct{}

func (flag) Kind() ecs.Kind { return "Flag" }

func testKinds() *KindRegistry {
	r := NewKindRegistry()
	Register[point](r)
	Register[link](r)
	Register[flag](r)
	return r
}

type fakeSpawner struct {
	next    ecs.EntityID
	spawned map[ecs.EntityID][]ecs.Component
}

func (f *fakeSpawner) Spawn(comps ...ecs.Component) (ecs.EntityID, error) {
	f.next++
	if f.spawned == nil {
		f.spawned = map[ecs.EntityID][]ecs.Component{}
	}
	f.spawned[f.next] = comps
	return f.next, nil
}

func TestKindRegistry_RoundTrip(t *testing.T) {
	r := testKinds()
	assert.Equal(t, []ecs.Kind{"Flag", "Link", "Point"}, r.Kinds())

	fields, err := r.Encode(link{Target: 7, Active: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"target": 7, "active": true}, fields)

	c, err := r.DecodeValue("Link", map[string]any{"target": 9.0, "active": false})
	require.NoError(t, err)
	assert.Equal(t, link{Target: 9}, c)

	c, err = r.DecodeValue("Flag", nil)
	require.NoError(t, err)
	assert.Equal(t, flag{}, c)

	_, err = r.DecodeValue("Nope", map[string]any{})
	assert.ErrorContains(t, err, `unknown component kind "Nope"`)
}

func TestKindRegistry_DecodeRejectsBadFields(t *testing.T) {
	r := testKinds()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("x: [1, 2]"), &node))
	_, err := r.Decode("Point", &node)
	assert.Error(t, err)
}

func TestScene_Build(t *testing.T) {
	sc, err := ParseScene([]byte(`
entities:
  - name: marker
    components:
      Point: {x: 1, y: 2}
      Flag: {}
  - name: linker
    count: 2
    components:
      Link: {target: 1, active: true}
`))
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Count())

	sp := &fakeSpawner{}
	ids, err := sc.Build(sp, testKinds())
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{1, 2, 3}, ids)
	assert.Equal(t, []ecs.Component{flag{}, point{X: 1, Y: 2}}, sp.spawned[1])
	assert.Equal(t, []ecs.Component{link{Target: 1, Active: true}}, sp.spawned[3])
}

func TestScene_UnknownKind(t *testing.T) {
	sc, err := ParseScene([]byte("entities:\n  - name: bad\n    components:\n      Ghost: {}\n"))
	require.NoError(t, err)
	_, err = sc.Build(&fakeSpawner{}, testKinds())
	assert.ErrorContains(t, err, "bad")
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "systems.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
systems:
  - tag: Wrap
    after: [Movement]
    script: wrap.lua
  - tag: Abs
    script: /opt/abs.lua
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Systems, 2)
	assert.Equal(t, filepath.Join(dir, "wrap.lua"), m.Systems[0].Script)
	assert.Equal(t, []string{"Movement"}, m.Systems[0].After)
	assert.Equal(t, "/opt/abs.lua", m.Systems[1].Script)
}

func TestLoadManifest_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing tag":    "systems:\n  - script: a.lua\n",
		"missing script": "systems:\n  - tag: A\n",
		"duplicate":      "systems:\n  - {tag: A, script: a.lua}\n  - {tag: A, script: b.lua}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadManifest(path)
			assert.Error(t, err)
		})
	}
}
