package scripting

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
)

// LuaSystem is a system whose execute step is a Lua function. The ctx table
// handed to execute mirrors system.Context:
//
//	ctx.dt, ctx.frame
//	ctx.query(join [, exclude]) / ctx.query_required_one(join [, exclude])
//	ctx.get(id, kind) / ctx.lookup(id, kind) / ctx.has(id, kind)
//	ctx.attach(id, kind, fields) / ctx.detach(id, kind) / ctx.destroy(id)
//	ctx.create_entity()
//	ctx.emit(tag, payload) / ctx.poll(tag)
//	ctx.log(message)
//
// Errors raised by these functions, bad arguments included, abort the frame
// even if the script catches them with pcall.
type LuaSystem struct {
	system.Base
	path  string
	vm    *lua.LState
	kinds *data.KindRegistry
	log   *zap.Logger
	api   map[string]lua.LGFunction

	ctx     *system.Context
	failure error
}

func newLuaSystem(spec data.ScriptSpec, vm *lua.LState, kinds *data.KindRegistry, log *zap.Logger) *LuaSystem {
	s := &LuaSystem{
		Base:  system.NewBase(spec.Tag, spec.After...),
		path:  spec.Script,
		vm:    vm,
		kinds: kinds,
		log:   log.With(zap.String("system", spec.Tag)),
	}
	s.api = map[string]lua.LGFunction{
		"query":              s.luaQuery,
		"query_required_one": s.luaQueryRequiredOne,
		"get":                s.luaGet,
		"lookup":             s.luaLookup,
		"has":                s.luaHas,
		"attach":             s.luaAttach,
		"detach":             s.luaDetach,
		"destroy":            s.luaDestroy,
		"create_entity":      s.luaCreateEntity,
		"emit":               s.luaEmit,
		"poll":               s.luaPoll,
		"log":                s.luaLog,
	}
	return s
}

func (s *LuaSystem) Path() string { return s.path }

func (s *LuaSystem) Execute(ctx *system.Context) error {
	s.ctx = ctx
	s.failure = nil
	defer func() { s.ctx = nil }()

	t := s.vm.NewTable()
	t.RawSetString("dt", lua.LNumber(ctx.DeltaTime))
	t.RawSetString("frame", lua.LNumber(ctx.Frame))
	for name, fn := range s.api {
		t.RawSetString(name, s.vm.NewFunction(fn))
	}

	err := s.vm.CallByParam(lua.P{
		Fn:      s.vm.GetGlobal("execute"),
		NRet:    0,
		Protect: true,
	}, t)
	if s.failure != nil {
		return s.failure
	}
	if err != nil {
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("lua %s: %s", s.path, apiErr.Object.String())
		}
		return fmt.Errorf("lua %s: %w", s.path, err)
	}
	return nil
}

// Close releases the VM.
func (s *LuaSystem) Close() {
	s.vm.Close()
}

// fail records err as the frame failure and unwinds the script.
func (s *LuaSystem) fail(L *lua.LState, err error) int {
	if s.failure == nil {
		s.failure = err
	}
	L.RaiseError("%s", err.Error())
	return 0
}

func (s *LuaSystem) record(L *lua.LState, rec ecs.Record) (*lua.LTable, error) {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(rec.ID))
	for role, c := range rec.Components {
		if role == "id" {
			return nil, fmt.Errorf("join role %q is reserved", role)
		}
		lv, err := s.component(L, c)
		if err != nil {
			return nil, err
		}
		t.RawSetString(role, lv)
	}
	return t, nil
}

func (s *LuaSystem) component(L *lua.LState, c ecs.Component) (lua.LValue, error) {
	fields, err := s.kinds.Encode(c)
	if err != nil {
		return lua.LNil, err
	}
	return toLua(L, fields)
}

func (s *LuaSystem) luaQuery(L *lua.LState) int {
	q, err := queryArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	out := L.NewTable()
	for _, rec := range s.ctx.Query(q) {
		t, err := s.record(L, rec)
		if err != nil {
			return s.fail(L, err)
		}
		out.Append(t)
	}
	L.Push(out)
	return 1
}

func (s *LuaSystem) luaQueryRequiredOne(L *lua.LState) int {
	q, err := queryArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	rec, err := s.ctx.QueryRequiredOne(q)
	if err != nil {
		return s.fail(L, err)
	}
	t, err := s.record(L, rec)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(t)
	return 1
}

func (s *LuaSystem) luaGet(L *lua.LState) int {
	id, kind, err := entityKindArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	c, err := s.ctx.Get(id, kind)
	if err != nil {
		return s.fail(L, err)
	}
	lv, err := s.component(L, c)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(lv)
	return 1
}

func (s *LuaSystem) luaLookup(L *lua.LState) int {
	id, kind, err := entityKindArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	c, ok := s.ctx.Lookup(id, kind)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	lv, err := s.component(L, c)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(lv)
	return 1
}

func (s *LuaSystem) luaHas(L *lua.LState) int {
	id, kind, err := entityKindArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	L.Push(lua.LBool(s.ctx.Has(id, kind)))
	return 1
}

func (s *LuaSystem) luaAttach(L *lua.LState) int {
	id, kind, err := entityKindArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	c, err := s.kinds.DecodeValue(kind, fromLua(L.Get(3)))
	if err != nil {
		return s.fail(L, err)
	}
	s.ctx.Attach(id, c)
	return 0
}

func (s *LuaSystem) luaDetach(L *lua.LState) int {
	id, kind, err := entityKindArgs(L)
	if err != nil {
		return s.fail(L, err)
	}
	s.ctx.Detach(id, kind)
	return 0
}

func (s *LuaSystem) luaDestroy(L *lua.LState) int {
	id, err := entityArg(L, 1)
	if err != nil {
		return s.fail(L, err)
	}
	s.ctx.Destroy(id)
	return 0
}

func (s *LuaSystem) luaCreateEntity(L *lua.LState) int {
	L.Push(lua.LNumber(s.ctx.CreateEntity()))
	return 1
}

func (s *LuaSystem) luaEmit(L *lua.LState) int {
	tag, err := stringArg(L, 1, "event tag")
	if err != nil {
		return s.fail(L, err)
	}
	s.ctx.Emit(tag, fromLua(L.Get(2)))
	return 0
}

func (s *LuaSystem) luaPoll(L *lua.LState) int {
	tag, err := stringArg(L, 1, "event tag")
	if err != nil {
		return s.fail(L, err)
	}
	out := L.NewTable()
	for _, payload := range s.ctx.Poll(tag) {
		lv, err := toLua(L, payload)
		if err != nil {
			return s.fail(L, err)
		}
		out.Append(lv)
	}
	L.Push(out)
	return 1
}

func (s *LuaSystem) luaLog(L *lua.LState) int {
	s.log.Debug(lua.LVAsString(L.Get(1)), zap.Uint64("frame", s.ctx.Frame))
	return 0
}
