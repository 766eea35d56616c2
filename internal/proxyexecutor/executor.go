package proxyexecutor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/specialistvlad/scriptbridge/internal/wire"
	"github.com/zclconf/go-cty/cty"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrClosed is returned by operations on a closed executor.
var ErrClosed = errors.New("proxy executor is closed")

// Executor forwards every operation to a remote engine.
type Executor struct {
	conn    Conn
	timeout time.Duration
	logger  *slog.Logger
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan *wire.Reply
	closed  bool
}

var _ executor.Executor = (*Executor)(nil)

// New wraps conn, logging through the logger carried by ctx. A non-positive
// timeout selects DefaultTimeout.
func New(ctx context.Context, conn Conn, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e := &Executor{
		conn:    conn,
		timeout: timeout,
		logger:  ctxlog.FromContext(ctx),
		pending: make(map[uint64]chan *wire.Reply),
	}
	conn.On(EventReply, e.onReply)
	return e
}

// LoadSource ships src to the remote engine.
func (e *Executor) LoadSource(ctx context.Context, src []byte, label string) error {
	_, err := e.roundTrip(ctx, &wire.Request{
		Method: wire.MethodExecuteApplicationScript,
		Label:  label,
		Source: src,
	})
	return executor.NewExecutionError("load", label, err)
}

// Invoke runs module.method remotely.
func (e *Executor) Invoke(ctx context.Context, module, method string, args []cty.Value) (cty.Value, error) {
	label := module + "." + method
	plainArgs, err := wire.EncodeArguments(args)
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, err)
	}
	reply, err := e.roundTrip(ctx, &wire.Request{
		Method:    wire.MethodExecuteJSCall,
		Module:    module,
		Function:  method,
		Arguments: plainArgs,
	})
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, err)
	}
	v, err := reply.ResultValue()
	if err != nil {
		return cty.NilVal, executor.NewExecutionError("invoke", label, err)
	}
	return v, nil
}

// SetGlobal installs a JSON value in the remote global scope.
func (e *Executor) SetGlobal(ctx context.Context, name, jsonValue string) error {
	_, err := e.roundTrip(ctx, &wire.Request{
		Method: wire.MethodSetGlobalVariable,
		Name:   name,
		JSON:   jsonValue,
	})
	return executor.NewExecutionError("set global", name, err)
}

func (e *Executor) SupportsProfiling() bool { return false }

func (e *Executor) StartProfiling(string) error { return executor.ErrProfilingUnsupported }

func (e *Executor) StopProfiling(string, string) error { return executor.ErrProfilingUnsupported }

// Close fails every pending request and closes the connection.
func (e *Executor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
	e.conn.Close()
	return nil
}

func (e *Executor) roundTrip(ctx context.Context, req *wire.Request) (*wire.Reply, error) {
	logger := ctxlog.FromContext(ctx)

	req.ID = e.nextID.Add(1)
	data, err := wire.MarshalRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	done := make(chan *wire.Reply, 1)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.pending[req.ID] = done
	e.mu.Unlock()
	defer e.forget(req.ID)

	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger.Debug("Emitting request", "id", req.ID, "method", req.Method)
	e.conn.Emit(EventRequest, data)

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("timed out after %v waiting for reply to %s", e.timeout, req.Method)
	case reply, ok := <-done:
		if !ok {
			return nil, ErrClosed
		}
		if reply.Error != "" {
			return nil, errors.New(reply.Error)
		}
		return reply, nil
	}
}

func (e *Executor) forget(id uint64) {
	e.mu.Lock()
	if e.pending != nil {
		delete(e.pending, id)
	}
	e.mu.Unlock()
}

// onReply runs on the transport's goroutine.
func (e *Executor) onReply(args ...any) {
	if len(args) == 0 {
		return
	}
	data, err := payloadBytes(args[0])
	if err != nil {
		e.logger.Warn("Dropping reply with unexpected payload.", "error", err)
		return
	}
	reply, err := wire.UnmarshalReply(data)
	if err != nil {
		e.logger.Warn("Dropping undecodable reply.", "bytes", len(data), "error", err)
		return
	}

	e.mu.Lock()
	ch, ok := e.pending[reply.ID]
	if ok {
		delete(e.pending, reply.ID)
	}
	e.mu.Unlock()
	if ok {
		ch <- reply
	}
}

func payloadBytes(arg any) ([]byte, error) {
	switch p := arg.(type) {
	case []byte:
		return p, nil
	case interface{ Bytes() []byte }:
		return p.Bytes(), nil
	case io.Reader:
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case string:
		return []byte(p), nil
	default:
		return nil, fmt.Errorf("unsupported reply payload %T", arg)
	}
}
