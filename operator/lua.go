package operator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/kbukum/liftkit/component"
	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/errors"
)

// Script entry points.
const (
	FuncChooseHook    = "choose_hook"
	FuncChooseBearing = "choose_bearing"
)

// LuaChooser asks a Lua script. The script is read and compiled on first
// use; every call runs in a fresh state with only the base, table, string
// and math libraries.
type LuaChooser struct {
	script  *component.Lazy[*lua.FunctionProto]
	timeout time.Duration
}

var _ Chooser = (*LuaChooser)(nil)

// NewLuaChooser loads the script at path lazily.
func NewLuaChooser(path string, timeout time.Duration) *LuaChooser {
	return &LuaChooser{
		script: component.NewLazy("operator script "+path, func(context.Context) (*lua.FunctionProto, error) {
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return compile(path, string(src))
		}),
		timeout: timeout,
	}
}

// NewLuaChooserFromSource compiles src under name on first use.
func NewLuaChooserFromSource(name, src string, timeout time.Duration) *LuaChooser {
	return &LuaChooser{
		script: component.NewLazy("operator script "+name, func(context.Context) (*lua.FunctionProto, error) {
			return compile(name, src)
		}),
		timeout: timeout,
	}
}

func compile(name, src string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, err
	}
	return lua.Compile(chunk, name)
}

// Health reports whether the script has been compiled.
func (c *LuaChooser) Health() component.Health { return c.script.Health() }

// Reload drops the compiled script so the next call reads it again.
func (c *LuaChooser) Reload() error { return c.script.Reset() }

func (c *LuaChooser) ChooseHook(ctx context.Context, variants []crane.Hook) (int, error) {
	return c.choose(ctx, FuncChooseHook, variants, len(variants))
}

func (c *LuaChooser) ChooseBearing(ctx context.Context, variants []crane.Bearing) (int, error) {
	return c.choose(ctx, FuncChooseBearing, variants, len(variants))
}

func (c *LuaChooser) choose(ctx context.Context, fn string, variants any, n int) (int, error) {
	proto, err := c.script.Get(ctx)
	if err != nil {
		return 0, errors.Internal(err)
	}
	arg, err := toPlain(variants)
	if err != nil {
		return 0, errors.Serialization("encode variants", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	L := newSandbox()
	defer L.Close()
	L.SetContext(ctx)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return 0, scriptError(ctx, fn, err)
	}
	f, ok := L.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return 0, errors.InvalidInput(fn, "script does not define it")
	}
	if err := L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, toLValue(L, arg)); err != nil {
		return 0, scriptError(ctx, fn, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	num, ok := ret.(lua.LNumber)
	if !ok {
		return 0, errors.InvalidInput(fn, fmt.Sprintf("must return a number, got %s", ret.Type()))
	}
	if f := float64(num); f != math.Trunc(f) {
		return 0, errors.InvalidInput(fn, fmt.Sprintf("must return a whole number, got %v", f))
	}
	return checkIndex(fn, int(num)-1, n)
}

func scriptError(ctx context.Context, fn string, err error) error {
	if ctx.Err() != nil {
		return errors.Timeout("lua " + fn)
	}
	return errors.RemoteFailed(fn, err.Error())
}

func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: 4096,
	})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// base opens these; they reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// toPlain turns v into maps, slices and scalars following its json tags.
func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(b, &out)
	return out, err
}

func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case float64:
		return lua.LNumber(x)
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, toLValue(L, v2))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	default:
		return lua.LNil
	}
}
