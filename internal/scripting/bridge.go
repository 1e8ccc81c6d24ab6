package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/data"
)

// toLua converts plain Go values into Lua values. Structs and other
// YAML-encodable values are flattened through their yaml field names first.
func toLua(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case bool:
		return lua.LBool(x), nil
	case string:
		return lua.LString(x), nil
	case int:
		return lua.LNumber(x), nil
	case int32:
		return lua.LNumber(x), nil
	case int64:
		return lua.LNumber(x), nil
	case uint32:
		return lua.LNumber(x), nil
	case uint64:
		return lua.LNumber(x), nil
	case float32:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case ecs.EntityID:
		return lua.LNumber(x), nil
	case []any:
		t := L.NewTable()
		for _, item := range x {
			lv, err := toLua(L, item)
			if err != nil {
				return lua.LNil, err
			}
			t.Append(lv)
		}
		return t, nil
	case map[string]any:
		t := L.NewTable()
		for k, item := range x {
			lv, err := toLua(L, item)
			if err != nil {
				return lua.LNil, err
			}
			t.RawSetString(k, lv)
		}
		return t, nil
	}

	g, err := data.ToGeneric(v)
	if err != nil {
		return lua.LNil, fmt.Errorf("convert %T: %w", v, err)
	}
	switch g.(type) {
	case nil, bool, string, int, float64, []any, map[string]any:
		return toLua(L, g)
	}
	return lua.LNil, fmt.Errorf("cannot convert %T to a lua value", v)
}

// fromLua converts a Lua value into plain Go values. Tables with only the
// keys 1..n become slices, every other table becomes a map keyed by the
// string form of its keys.
func fromLua(lv lua.LValue) any {
	switch x := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		n := x.Len()
		count := 0
		x.ForEach(func(_, _ lua.LValue) { count++ })
		if n > 0 && count == n {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any, count)
		x.ForEach(func(k, v lua.LValue) {
			out[k.String()] = fromLua(v)
		})
		return out
	default:
		return lv.String()
	}
}

// The argument helpers below return errors instead of raising them, so the
// caller can route them through LuaSystem.fail and pcall cannot hide them.

// entityArg reads an entity id. 0 is a valid argument that names no live
// entity; ids that cannot be an EntityID at all are reported as not found.
func entityArg(L *lua.LState, n int) (ecs.EntityID, error) {
	lv := L.Get(n)
	num, ok := lv.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("argument #%d: entity id expected, got %s", n, lv.Type())
	}
	f := float64(num)
	if f < 0 || f >= math.MaxUint64 || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid entity id %s: %w", lv.String(), ecs.ErrNotFound)
	}
	return ecs.EntityID(f), nil
}

func stringArg(L *lua.LState, n int, what string) (string, error) {
	lv := L.Get(n)
	str, ok := lv.(lua.LString)
	if !ok {
		return "", fmt.Errorf("argument #%d: %s expected, got %s", n, what, lv.Type())
	}
	return string(str), nil
}

func entityKindArgs(L *lua.LState) (ecs.EntityID, ecs.Kind, error) {
	id, err := entityArg(L, 1)
	if err != nil {
		return 0, "", err
	}
	kind, err := stringArg(L, 2, "component kind")
	if err != nil {
		return 0, "", err
	}
	return id, ecs.Kind(kind), nil
}

func joinArg(L *lua.LState, n int) (ecs.Join, error) {
	t, ok := L.Get(n).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("argument #%d: join table expected, got %s", n, L.Get(n).Type())
	}
	join := make(ecs.Join)
	var bad error
	t.ForEach(func(k, v lua.LValue) {
		if bad != nil {
			return
		}
		role, ok := k.(lua.LString)
		if !ok {
			bad = fmt.Errorf("argument #%d: join role %s is not a string", n, k.String())
			return
		}
		kind, ok := v.(lua.LString)
		if !ok {
			bad = fmt.Errorf("argument #%d: kind for role %q is not a string", n, string(role))
			return
		}
		join[string(role)] = ecs.Kind(kind)
	})
	if bad != nil {
		return nil, bad
	}
	return join, nil
}

func kindsArg(L *lua.LState, n int) ([]ecs.Kind, error) {
	switch lv := L.Get(n).(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		kinds := make([]ecs.Kind, 0, lv.Len())
		for i := 1; i <= lv.Len(); i++ {
			kind, ok := lv.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("argument #%d: exclude entry %d is not a string", n, i)
			}
			kinds = append(kinds, ecs.Kind(kind))
		}
		return kinds, nil
	default:
		return nil, fmt.Errorf("argument #%d: exclude list expected, got %s", n, lv.Type())
	}
}

func queryArgs(L *lua.LState) (ecs.Query, error) {
	join, err := joinArg(L, 1)
	if err != nil {
		return ecs.Query{}, err
	}
	exclude, err := kindsArg(L, 2)
	if err != nil {
		return ecs.Query{}, err
	}
	return ecs.Query{Join: join, Exclude: exclude}, nil
}
