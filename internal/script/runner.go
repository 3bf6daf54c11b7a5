// Package script runs script-driven moves and items on an embedded Lua
// interpreter. Each id is compiled once; every call gets a fresh sandboxed
// state that sees only copies of the combatants involved.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"golang.org/x/sync/singleflight"

	"github.com/ericogr/monster-arena/internal/dex"
	"github.com/ericogr/monster-arena/internal/engine"
	"github.com/ericogr/monster-arena/internal/game"
	"github.com/ericogr/monster-arena/internal/logging"
)

// Runner implements engine.ScriptRunner.
type Runner struct {
	src     Source
	timeout time.Duration

	mu    sync.Mutex
	cache map[dex.ID]*lua.FunctionProto
	group singleflight.Group
}

// NewRunner returns a Runner reading code from src. A positive timeout
// bounds every call.
func NewRunner(src Source, timeout time.Duration) *Runner {
	return &Runner{src: src, timeout: timeout, cache: map[dex.ID]*lua.FunctionProto{}}
}

// Compile returns the cached compiled chunk of id, compiling it on first use.
// Concurrent first uses of the same id share one compilation.
func (r *Runner) Compile(id dex.ID) (*lua.FunctionProto, error) {
	id = dex.Canonical(id)
	r.mu.Lock()
	proto, ok := r.cache[id]
	r.mu.Unlock()
	if ok {
		return proto, nil
	}
	v, err, _ := r.group.Do(string(id), func() (interface{}, error) {
		code, err := r.src.Script(id)
		if err != nil {
			return nil, err
		}
		chunk, err := parse.Parse(strings.NewReader(code), string(id))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", engine.ErrScriptCompile, id, err)
		}
		proto, err := lua.Compile(chunk, string(id))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", engine.ErrScriptCompile, id, err)
		}
		r.mu.Lock()
		r.cache[id] = proto
		r.mu.Unlock()
		logging.Debug("script compiled", logging.Fields{"id": id})
		return proto, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*lua.FunctionProto), nil
}

// Precompile compiles every id and reports all failures together.
func (r *Runner) Precompile(ids []dex.ID) error {
	var errs []error
	for _, id := range ids {
		if _, err := r.Compile(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run executes the script of call.ID. The chunk sees the globals battle,
// move, user, targets and outcome, and returns a list of outcomes.
func (r *Runner) Run(ctx context.Context, call engine.ScriptCall) ([]game.Outcome, error) {
	proto, err := r.Compile(call.ID)
	if err != nil {
		return nil, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := newSandbox()
	defer L.Close()
	L.SetContext(ctx)
	s := newSession(L, call)
	s.install()

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrScriptRuntime, call.ID, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	outcomes, err := s.collect(ret)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", engine.ErrScriptRuntime, call.ID, err)
	}
	return outcomes, nil
}

// newSandbox opens only the pure libraries and removes every way of
// loading code or reaching the host.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true, CallStackSize: 128, RegistrySize: 1024 * 16})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module", "collectgarbage", "print", "_printregs", "getfenv", "setfenv"} {
		L.SetGlobal(name, lua.LNil)
	}
	if m, ok := L.GetGlobal("math").(*lua.LTable); ok {
		m.RawSetString("random", lua.LNil)
		m.RawSetString("randomseed", lua.LNil)
	}
	// strings share this table as their metatable index, so s:rep is
	// covered too
	if s, ok := L.GetGlobal("string").(*lua.LTable); ok {
		s.RawSetString("rep", L.NewFunction(cappedRep))
	}
	return L
}

// maxRepLen bounds string.rep, which allocates its whole result in one
// call that the context deadline cannot interrupt.
const maxRepLen = 1 << 16

func cappedRep(L *lua.LState) int {
	s := L.CheckString(1)
	n := L.CheckInt(2)
	if n <= 0 || len(s) == 0 {
		L.Push(lua.LString(""))
		return 1
	}
	if n > maxRepLen/len(s) {
		L.RaiseError("string.rep result longer than %d bytes", maxRepLen)
		return 0
	}
	L.Push(lua.LString(strings.Repeat(s, n)))
	return 1
}
