// Package grader executes instructor-authored Lua snippets that decide
// whether a quiz answer is correct, as an override of the default
// exact-match check.
package grader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	lua "github.com/yuin/gopher-lua"

	"github.com/unpuzzle-app/unpuzzle/key"
)

// gradeFn is the global function a grader script must define:
// grade(answer, correct) -> bool.
const gradeFn = "grade"

// defaultTimeout bounds a single grading call. Instructor scripts are
// untrusted input and must not hang the checkpoint prompt.
const defaultTimeout = time.Second

// Enabled reports whether Lua graders may run at all. Off by default; the
// exact-match fallback applies.
func Enabled() bool {
	return viper.GetBool(key.CheckpointsLuaGraders)
}

// Grader is a compiled grading script bound to a sandboxed Lua state.
type Grader struct {
	state   *lua.LState
	timeout time.Duration
}

// New compiles a grader script into a sandboxed state. Only the base,
// string, table and math libraries are opened; no io, os or networking.
func New(source string) (*Grader, error) {
	state := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		state.Push(state.NewFunction(lib.open))
		state.Push(lua.LString(lib.name))
		state.Call(1, 0)
	}

	if err := state.DoString(source); err != nil {
		state.Close()
		return nil, fmt.Errorf("compile grader: %w", err)
	}

	if state.GetGlobal(gradeFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("function %s is required but not defined", gradeFn)
	}

	return &Grader{state: state, timeout: defaultTimeout}, nil
}

// Grade calls the script's grade function with the learner's answer and the
// checkpoint's reference answer. The call is bounded by the grader timeout.
func (g *Grader) Grade(answer, correct string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	g.state.SetContext(ctx)

	err := g.state.CallByParam(lua.P{
		Fn:      g.state.GetGlobal(gradeFn),
		NRet:    1,
		Protect: true,
	}, lua.LString(answer), lua.LString(correct))
	if err != nil {
		return false, fmt.Errorf("run grader: %w", err)
	}

	retval := g.state.Get(-1)
	g.state.Pop(1)

	if retval.Type() != lua.LTBool {
		return false, fmt.Errorf("%s returned %s, expected %s", gradeFn, retval.Type(), lua.LTBool)
	}

	return lua.LVAsBool(retval), nil
}

// Close releases the Lua state.
func (g *Grader) Close() {
	g.state.Close()
}

// ExactMatch is the default answer check used when no grader script is
// attached or Lua graders are disabled.
func ExactMatch(answer, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct))
}
