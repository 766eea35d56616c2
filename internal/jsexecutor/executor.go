package jsexecutor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/zclconf/go-cty/cty"
)

// goja keeps one sampling profiler per process.
var profilerMu sync.Mutex

// Factory creates goja-backed executors.
type Factory struct {
	opts options
}

var _ executor.Factory = (*Factory)(nil)

// NewFactory returns a factory configured by opts.
func NewFactory(opts ...Option) *Factory {
	o := options{bridgeName: DefaultBridgeName}
	for _, opt := range opts {
		opt(&o)
	}
	return &Factory{opts: o}
}

// Create builds a fresh runtime, preloading the bridge runtime if configured.
func (f *Factory) Create(ctx context.Context) (executor.Executor, error) {
	e := &Executor{
		rt:         goja.New(),
		bridgeName: f.opts.bridgeName,
	}
	if f.opts.withRuntime {
		if err := e.LoadSource(ctx, runtimeSource, "runtime.js"); err != nil {
			return nil, fmt.Errorf("failed to preload bridge runtime: %w", err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Created goja executor.", "bridgeName", e.bridgeName, "runtime", f.opts.withRuntime)
	return e, nil
}

// Executor is an executor.Executor backed by a goja.Runtime.
type Executor struct {
	rt         *goja.Runtime
	bridgeName string

	profiling string
	profile   *bytes.Buffer
	closed    bool
}

var _ executor.Executor = (*Executor)(nil)

// Runtime exposes the underlying engine, mainly for tests and host extensions.
func (e *Executor) Runtime() *goja.Runtime {
	return e.rt
}

// LoadSource evaluates src as a classic script.
func (e *Executor) LoadSource(ctx context.Context, src []byte, label string) error {
	if e.closed {
		return executor.NewExecutionError("load", label, errClosed)
	}
	err := e.interruptible(ctx, func() error {
		_, err := e.rt.RunScript(label, string(src))
		return err
	})
	return executor.NewExecutionError("load", label, err)
}

// Invoke calls module.method with args and converts the result back.
func (e *Executor) Invoke(ctx context.Context, module, method string, args []cty.Value) (cty.Value, error) {
	label := module + "." + method
	if e.closed {
		return cty.NilVal, executor.NewExecutionError("invoke", label, errClosed)
	}

	fn, this, err := e.resolve(module, method)
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, err)
	}

	jsArgs := make([]goja.Value, len(args))
	for i, arg := range args {
		v, err := e.toJS(arg)
		if err != nil {
			return cty.NilVal, executor.NewExecutionError("invoke", label, fmt.Errorf("argument %d: %w", i, err))
		}
		jsArgs[i] = v
	}

	var result goja.Value
	err = e.interruptible(ctx, func() error {
		var callErr error
		result, callErr = fn(this, jsArgs...)
		return callErr
	})
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, err)
	}

	out, err := e.fromJS(result)
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, fmt.Errorf("result: %w", err))
	}
	return out, nil
}

// SetGlobal parses jsonValue with the engine's JSON.parse and stores it as name.
func (e *Executor) SetGlobal(ctx context.Context, name, jsonValue string) error {
	if e.closed {
		return executor.NewExecutionError("set global", name, errClosed)
	}
	err := e.interruptible(ctx, func() error {
		jsonObj := e.rt.Get("JSON").ToObject(e.rt)
		parse, ok := goja.AssertFunction(jsonObj.Get("parse"))
		if !ok {
			return errors.New("JSON.parse is not callable")
		}
		v, err := parse(jsonObj, e.rt.ToValue(jsonValue))
		if err != nil {
			return err
		}
		return e.rt.Set(name, v)
	})
	return executor.NewExecutionError("set global", name, err)
}

// SupportsProfiling reports true; goja ships a sampling profiler.
func (e *Executor) SupportsProfiling() bool { return true }

// StartProfiling starts goja's sampling profiler. Only one profile can run
// per process.
func (e *Executor) StartProfiling(label string) error {
	if e.profiling != "" {
		return fmt.Errorf("profile %q is already running", e.profiling)
	}
	if !profilerMu.TryLock() {
		return fmt.Errorf("another executor is profiling")
	}
	buf := &bytes.Buffer{}
	if err := goja.StartProfile(buf); err != nil {
		profilerMu.Unlock()
		return fmt.Errorf("failed to start profile %q: %w", label, err)
	}
	e.profiling = label
	e.profile = buf
	return nil
}

// StopProfiling stops the running profile and writes it to path in pprof format.
func (e *Executor) StopProfiling(label, path string) error {
	if e.profiling == "" {
		return fmt.Errorf("no profile is running")
	}
	if label != e.profiling {
		return fmt.Errorf("profile %q is not running, %q is", label, e.profiling)
	}
	goja.StopProfile()
	profilerMu.Unlock()
	buf := e.profile
	e.profiling, e.profile = "", nil

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write profile %q: %w", label, err)
	}
	return nil
}

// Close stops a running profile and drops the runtime.
func (e *Executor) Close() error {
	if e.closed {
		return nil
	}
	if e.profiling != "" {
		goja.StopProfile()
		profilerMu.Unlock()
		e.profiling, e.profile = "", nil
	}
	e.closed = true
	e.rt = nil
	return nil
}

var errClosed = errors.New("executor is closed")

// resolve finds the callable for module.method. The BatchedBridge module maps
// to the configured bridge global.
func (e *Executor) resolve(module, method string) (goja.Callable, goja.Value, error) {
	name := module
	if module == BridgeModule {
		name = e.bridgeName
	}
	obj := e.rt.Get(name)
	if obj == nil || goja.IsUndefined(obj) || goja.IsNull(obj) {
		return nil, nil, fmt.Errorf("global %q is not defined", name)
	}
	fnVal := obj.ToObject(e.rt).Get(method)
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, nil, fmt.Errorf("%s.%s is not a function", name, method)
	}
	return fn, obj, nil
}

// interruptible runs fn, interrupting the engine if ctx ends first.
func (e *Executor) interruptible(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		e.rt.Interrupt(ctx.Err())
		close(fired)
	})
	err := fn()
	if !stop() {
		<-fired
		e.rt.ClearInterrupt()
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
