package bridge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/specialistvlad/scriptbridge/internal/native"
	"github.com/specialistvlad/scriptbridge/internal/weakref"
	"github.com/zclconf/go-cty/cty"
)

// Entry points of the script runtime.
const (
	Module              = "BatchedBridge"
	EntryCallFunction   = "callFunctionReturnFlushedQueue"
	EntryInvokeCallback = "invokeCallbackAndReturnFlushedQueue"
	EntryFlushedQueue   = "flushedQueue"
)

// ErrNotReady is returned by operations on a bridge that is not Ready.
var ErrNotReady = errors.New("bridge is not ready")

// State is the lifecycle phase of a Bridge.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTornDown:
		return "torn down"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Bridge owns an executor and routes the calls it reports to a Dispatcher.
// The zero value is Uninitialized and rejects every operation.
type Bridge struct {
	state      State
	exec       executor.Executor
	dispatcher *Dispatcher
}

// New creates the executor and returns a Ready bridge.
func New(ctx context.Context, factory executor.Factory, callback weakref.Handle[Callback], thread weakref.Handle[Poster]) (*Bridge, error) {
	exec, err := factory.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	return &Bridge{
		state:      StateReady,
		exec:       exec,
		dispatcher: NewDispatcher(ctx, callback, thread),
	}, nil
}

// State reports the lifecycle phase.
func (b *Bridge) State() State {
	return b.state
}

// Stats returns the dispatcher counters.
func (b *Bridge) Stats() Stats {
	if b.dispatcher == nil {
		return Stats{}
	}
	return b.dispatcher.Stats()
}

func (b *Bridge) ready() error {
	if b.state != StateReady {
		return fmt.Errorf("%w: %s", ErrNotReady, b.state)
	}
	return nil
}

// LoadScript evaluates src and dispatches whatever calls the script queued
// while loading. label names the source in diagnostics.
func (b *Bridge) LoadScript(ctx context.Context, src []byte, label string) error {
	if err := b.ready(); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Loading script.", "label", label, "bytes", len(src))
	if err := b.exec.LoadSource(ctx, src, label); err != nil {
		return err
	}
	return b.invoke(ctx, EntryFlushedQueue, nil)
}

// LoadScriptFromAssets loads the named file of an asset bundle.
func (b *Bridge) LoadScriptFromAssets(ctx context.Context, assets fs.FS, name string) error {
	if err := b.ready(); err != nil {
		return err
	}
	src, err := fs.ReadFile(assets, name)
	if err != nil {
		return fmt.Errorf("failed to read asset %q: %w", name, err)
	}
	return b.LoadScript(ctx, src, name)
}

// LoadScriptFromNetworkCached loads a script previously downloaded from
// sourceURL into tempFile. An empty tempFile loads an empty script. The
// source URL is the label either way.
func (b *Bridge) LoadScriptFromNetworkCached(ctx context.Context, sourceURL, tempFile string) error {
	if err := b.ready(); err != nil {
		return err
	}
	var src []byte
	if tempFile != "" {
		data, err := os.ReadFile(tempFile)
		if err != nil {
			return fmt.Errorf("failed to read cached script for %s: %w", sourceURL, err)
		}
		src = data
	}
	return b.LoadScript(ctx, src, sourceURL)
}

// CallFunction runs methodID of moduleID in the script with args. args is
// consumed.
func (b *Bridge) CallFunction(ctx context.Context, moduleID, methodID int, args *native.Array) error {
	if err := b.ready(); err != nil {
		return err
	}
	argv, err := consumeArgs(args)
	if err != nil {
		return err
	}
	return b.invoke(ctx, EntryCallFunction, []cty.Value{
		dynamic.Int(int64(moduleID)),
		dynamic.Int(int64(methodID)),
		argv,
	})
}

// InvokeCallback resolves the script callback callbackID with args. args is
// consumed.
func (b *Bridge) InvokeCallback(ctx context.Context, callbackID int, args *native.Array) error {
	if err := b.ready(); err != nil {
		return err
	}
	argv, err := consumeArgs(args)
	if err != nil {
		return err
	}
	return b.invoke(ctx, EntryInvokeCallback, []cty.Value{
		dynamic.Int(int64(callbackID)),
		argv,
	})
}

// SetGlobalVariable installs jsonValue, which must be JSON text, as a global.
func (b *Bridge) SetGlobalVariable(ctx context.Context, name, jsonValue string) error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.exec.SetGlobal(ctx, name, jsonValue)
}

// SupportsProfiling reports whether StartProfiler and StopProfiler can work.
func (b *Bridge) SupportsProfiling() bool {
	if b.state != StateReady {
		return false
	}
	return b.exec.SupportsProfiling()
}

func (b *Bridge) StartProfiler(label string) error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.exec.StartProfiling(label)
}

func (b *Bridge) StopProfiler(label, path string) error {
	if err := b.ready(); err != nil {
		return err
	}
	return b.exec.StopProfiling(label, path)
}

// Destroy tears the bridge down and closes the executor. Batches already
// posted still run; they find the callback through its weak handle.
func (b *Bridge) Destroy() error {
	if b.state != StateReady {
		b.state = StateTornDown
		return nil
	}
	b.state = StateTornDown
	err := b.exec.Close()
	b.exec = nil
	return err
}

func (b *Bridge) invoke(ctx context.Context, method string, args []cty.Value) error {
	result, err := b.exec.Invoke(ctx, Module, method, args)
	if err != nil {
		return err
	}
	batch, err := ParseFlushedQueue(result)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", Module, method, err)
	}
	if len(batch) > 0 {
		b.dispatcher.Dispatch(batch)
	}
	return nil
}

// consumeArgs takes the value out of args. A nil args is an empty list.
func consumeArgs(args *native.Array) (cty.Value, error) {
	if args == nil {
		return dynamic.Array(nil), nil
	}
	v, err := args.Consume()
	if err != nil {
		return cty.NilVal, fmt.Errorf("arguments: %w", err)
	}
	return v, nil
}
