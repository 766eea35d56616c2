// Package executor defines the interface for script engines the bridge can
// drive. Two implementations exist: an in-process engine (jsexecutor) and a
// proxy to an engine running in another process (proxyexecutor).
package executor

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Executor runs script source and invokes named functions of the script
// runtime. Implementations are not safe for concurrent use; the bridge calls
// them from the goroutine that owns the engine.
type Executor interface {
	// LoadSource evaluates src. label names the source in diagnostics.
	LoadSource(ctx context.Context, src []byte, label string) error

	// Invoke calls method on the global module object and returns its result,
	// which for the bridge entry points is the flushed queue of calls to the
	// host.
	Invoke(ctx context.Context, module, method string, args []cty.Value) (cty.Value, error)

	// SetGlobal installs the JSON text value under name in the global scope.
	SetGlobal(ctx context.Context, name, jsonValue string) error

	SupportsProfiling() bool
	StartProfiling(label string) error
	StopProfiling(label, path string) error

	// Close releases the engine.
	Close() error
}

// Factory creates executors.
type Factory interface {
	Create(ctx context.Context) (Executor, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context) (Executor, error)

// Create calls f.
func (f FactoryFunc) Create(ctx context.Context) (Executor, error) {
	return f(ctx)
}
