package proxyexecutor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/executor"
)

// ErrFactoryUsed is returned by a OneTimeFactory after its executor was handed out.
var ErrFactoryUsed = errors.New("proxy executor factory has already created its executor")

// DialFunc opens the transport for the executor.
type DialFunc func(ctx context.Context) (Conn, error)

// OneTimeFactory creates exactly one executor. The remote engine behind a
// proxy cannot be shared, so a second Create fails.
type OneTimeFactory struct {
	dial    DialFunc
	timeout time.Duration

	mu   sync.Mutex
	used bool
}

var _ executor.Factory = (*OneTimeFactory)(nil)

// NewOneTimeFactory returns a factory that dials through dial on first use.
func NewOneTimeFactory(dial DialFunc, timeout time.Duration) *OneTimeFactory {
	return &OneTimeFactory{dial: dial, timeout: timeout}
}

// Create dials and wraps the connection. A failed dial does not use up the factory.
func (f *OneTimeFactory) Create(ctx context.Context) (executor.Executor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used {
		return nil, ErrFactoryUsed
	}
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	f.used = true
	return New(ctxlog.With(ctx, "component", "proxyexecutor"), conn, f.timeout), nil
}
