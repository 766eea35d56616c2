package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/native"
	"github.com/specialistvlad/scriptbridge/internal/weakref"
)

// Callback is the host sink for script-to-host calls.
type Callback interface {
	// Call delivers one call. A non-nil error aborts the rest of the batch.
	Call(moduleID, methodID int, args *native.Array) error
	// OnBatchComplete is called once after every call of a batch succeeded.
	OnBatchComplete()
}

// Poster runs posted work asynchronously on its own goroutine, in order.
// queue.Thread is the usual implementation.
type Poster interface {
	Post(fn func()) bool
}

// Stats counts batches by outcome.
type Stats struct {
	Posted    int64 `json:"posted"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Aborted   int64 `json:"aborted"`
}

// Dispatcher hands call batches to the callback thread.
type Dispatcher struct {
	callback weakref.Handle[Callback]
	thread   weakref.Handle[Poster]
	logger   *slog.Logger

	posted    atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	aborted   atomic.Int64
}

// NewDispatcher builds a dispatcher over weak handles to the sink and the thread.
func NewDispatcher(ctx context.Context, callback weakref.Handle[Callback], thread weakref.Handle[Poster]) *Dispatcher {
	return &Dispatcher{
		callback: callback,
		thread:   thread,
		logger:   ctxlog.FromContext(ctx).With("component", "dispatcher"),
	}
}

// Dispatch posts batch to the callback thread and returns without waiting.
// The thread handle is resolved here, on the caller's goroutine.
func (d *Dispatcher) Dispatch(batch CallBatch) {
	thread, ok := d.thread.Resolve()
	if !ok {
		d.dropped.Add(1)
		d.logger.Warn("Dropping call batch, callback thread is gone.", "calls", len(batch))
		return
	}
	if !thread.Post(func() { d.deliver(batch) }) {
		d.dropped.Add(1)
		d.logger.Warn("Dropping call batch, callback thread has quit.", "calls", len(batch))
		return
	}
	d.posted.Add(1)
}

// deliver runs on the callback thread.
func (d *Dispatcher) deliver(batch CallBatch) {
	cb, ok := d.callback.Resolve()
	if !ok {
		d.dropped.Add(1)
		d.logger.Warn("Dropping call batch, callback is gone.", "calls", len(batch))
		return
	}

	for i, call := range batch {
		// A null argument list marks a call the script abandoned mid-flush.
		if dynamic.IsNull(call.Arguments) {
			d.logger.Debug("Skipping call without arguments.", "moduleID", call.ModuleID, "methodID", call.MethodID)
			continue
		}
		if err := d.call(cb, call); err != nil {
			d.aborted.Add(1)
			d.logger.Warn("Aborting call batch.",
				"moduleID", call.ModuleID, "methodID", call.MethodID,
				"index", i, "remaining", len(batch)-i-1, "error", err)
			return
		}
		d.logger.Debug("Delivered call.", "moduleID", call.ModuleID, "methodID", call.MethodID)
	}

	cb.OnBatchComplete()
	d.delivered.Add(1)
}

func (d *Dispatcher) call(cb Callback, call PendingCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	args, err := native.ToArray(call.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	return cb.Call(call.ModuleID, call.MethodID, args)
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Posted:    d.posted.Load(),
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Aborted:   d.aborted.Load(),
	}
}
