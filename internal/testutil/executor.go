package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/zclconf/go-cty/cty"
)

// ScriptedExecutor is an executor.Executor whose results are scripted per
// method. Methods without a script return null.
type ScriptedExecutor struct {
	Results map[string]cty.Value
	Errors  map[string]error

	mu          sync.Mutex
	loaded      []string
	sources     [][]byte
	globals     map[string]string
	invocations []Invocation
	closed      bool
}

var _ executor.Executor = (*ScriptedExecutor)(nil)

// NewScriptedExecutor returns an executor with no scripted results.
func NewScriptedExecutor() *ScriptedExecutor {
	return &ScriptedExecutor{
		Results: make(map[string]cty.Value),
		Errors:  make(map[string]error),
		globals: make(map[string]string),
	}
}

// Factory returns a factory that always hands out e.
func (e *ScriptedExecutor) Factory() executor.Factory {
	return executor.FactoryFunc(func(context.Context) (executor.Executor, error) {
		return e, nil
	})
}

func (e *ScriptedExecutor) LoadSource(_ context.Context, src []byte, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.Errors["load"]; err != nil {
		return executor.NewExecutionError("load", label, err)
	}
	e.loaded = append(e.loaded, label)
	e.sources = append(e.sources, append([]byte(nil), src...))
	return nil
}

func (e *ScriptedExecutor) Invoke(_ context.Context, module, method string, args []cty.Value) (cty.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invocations = append(e.invocations, Invocation{Module: module, Method: method, Args: args})
	if err := e.Errors[method]; err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", module+"."+method, err)
	}
	if v, ok := e.Results[method]; ok {
		return v, nil
	}
	return cty.NullVal(cty.DynamicPseudoType), nil
}

func (e *ScriptedExecutor) SetGlobal(_ context.Context, name, jsonValue string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals[name] = jsonValue
	return nil
}

func (e *ScriptedExecutor) SupportsProfiling() bool { return false }
func (e *ScriptedExecutor) StartProfiling(string) error { return executor.ErrProfilingUnsupported }
func (e *ScriptedExecutor) StopProfiling(string, string) error { return executor.ErrProfilingUnsupported }

func (e *ScriptedExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Loaded returns the labels of loaded sources.
func (e *ScriptedExecutor) Loaded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loaded...)
}

// Sources returns the loaded sources.
func (e *ScriptedExecutor) Sources() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]byte(nil), e.sources...)
}

// Global returns the JSON text installed under name.
func (e *ScriptedExecutor) Global(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.globals[name]
	return v, ok
}

// Invocations returns every Invoke call.
func (e *ScriptedExecutor) Invocations() []Invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Invocation(nil), e.invocations...)
}

// Closed reports whether Close was called.
func (e *ScriptedExecutor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
