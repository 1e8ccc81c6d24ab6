package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/data"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine builds Lua-backed systems. Each system gets its own VM, so script
// globals are private per-system state that lives across frames.
type Engine struct {
	kinds   *data.KindRegistry
	log     *zap.Logger
	libDir  string
	globals map[string]any
}

type EngineOption func(*Engine)

// WithLibDir loads every .lua file in dir into each VM before the system
// script itself.
func WithLibDir(dir string) EngineOption {
	return func(e *Engine) { e.libDir = dir }
}

// WithGlobal sets a global in every VM. v is converted like event payloads.
func WithGlobal(name string, v any) EngineOption {
	return func(e *Engine) { e.globals[name] = v }
}

func NewEngine(kinds *data.KindRegistry, log *zap.Logger, opts ...EngineOption) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{kinds: kinds, log: log, globals: make(map[string]any)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load compiles one scripted system. The script must define a global
// function execute(ctx).
func (e *Engine) Load(spec data.ScriptSpec) (*LuaSystem, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	names := make([]string, 0, len(e.globals))
	for name := range e.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lv, err := toLua(vm, e.globals[name])
		if err != nil {
			vm.Close()
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
		vm.SetGlobal(name, lv)
	}

	if e.libDir != "" {
		if err := e.loadDir(vm, e.libDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load lib scripts: %w", err)
		}
	}
	if err := vm.DoFile(spec.Script); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load %s: %w", spec.Script, err)
	}
	if fn, ok := vm.GetGlobal("execute").(*lua.LFunction); !ok || fn == nil {
		vm.Close()
		return nil, fmt.Errorf("%s: no execute(ctx) function", spec.Script)
	}
	e.log.Debug("loaded lua system",
		zap.String("tag", spec.Tag),
		zap.String("file", spec.Script),
	)
	return newLuaSystem(spec, vm, e.kinds, e.log), nil
}

// LoadManifest loads every system in m, closing the already loaded ones if
// any script fails.
func (e *Engine) LoadManifest(m *data.Manifest) ([]*LuaSystem, error) {
	out := make([]*LuaSystem, 0, len(m.Systems))
	for _, spec := range m.Systems {
		s, err := e.Load(spec)
		if err != nil {
			for _, loaded := range out {
				loaded.Close()
			}
			return nil, fmt.Errorf("system %s: %w", spec.Tag, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(vm *lua.LState, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}
