package middleware

import (
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// maxLuaDepth bounds conversion of nested payloads.
const maxLuaDepth = 8

// toLua converts a Go value to a Lua value. Structs become tables keyed by
// json tag or field name; unsupported kinds become their string form.
func toLua(L *lua.LState, v any) lua.LValue {
	return toLuaDepth(L, reflect.ValueOf(v), 0)
}

func toLuaDepth(L *lua.LState, rv reflect.Value, depth int) lua.LValue {
	if !rv.IsValid() || depth > maxLuaDepth {
		return lua.LNil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return toLuaDepth(L, rv.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return lua.LString(rv.Bytes())
		}
		t := L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, toLuaDepth(L, rv.Index(i), depth+1))
		}
		return t

	case reflect.Map:
		t := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			key := toLuaDepth(L, iter.Key(), depth+1)
			if key == lua.LNil {
				continue
			}
			t.RawSet(key, toLuaDepth(L, iter.Value(), depth+1))
		}
		return t

	case reflect.Struct:
		t := L.NewTable()
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
				if n, _, _ := strings.Cut(tag, ","); n != "" {
					name = n
				}
			}
			t.RawSetString(name, toLuaDepth(L, rv.Field(i), depth+1))
		}
		return t

	default:
		return lua.LString(rv.Type().String())
	}
}
