// Package queue provides message queue threads: goroutines that own a FIFO of
// posted work and run it one unit at a time.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
)

// ErrQuit is returned by RunSync once the thread no longer accepts work.
var ErrQuit = errors.New("queue thread has quit")

// Thread runs posted units of work sequentially on a dedicated goroutine, in
// the order they were posted. Posting never blocks.
type Thread struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewThread creates a Thread and starts its processing goroutine. The logger
// carried by ctx is used for panics and dropped work.
func NewThread(ctx context.Context, name string) *Thread {
	t := &Thread{
		name:   name,
		logger: ctxlog.FromContext(ctx).With("thread", name),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go t.loop()
	return t
}

// Name returns the name the thread was created with.
func (t *Thread) Name() string {
	return t.name
}

// Post appends fn to the queue. It returns false, without queueing, once
// Quit has been called.
func (t *Thread) Post(fn func()) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	t.pending = append(t.pending, fn)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return true
}

// RunSync posts fn and waits for it to finish. It must not be called from
// the thread itself.
func (t *Thread) RunSync(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	posted := t.Post(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic on %s: %v", t.name, r)
			}
			result <- err
		}()
		err = fn()
	})
	if !posted {
		return ErrQuit
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrQuit
		}
	}
}

// Len is the number of units waiting to run.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Quit stops the thread after the unit currently running, if any. Work that
// has not started is dropped.
func (t *Thread) Quit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.quit)
}

// Wait blocks until the processing goroutine has exited.
func (t *Thread) Wait() {
	<-t.done
}

// loop processes posted work sequentially on the dedicated goroutine.
func (t *Thread) loop() {
	defer close(t.done)
	t.logger.Debug("Queue thread started.")
	for {
		fn, ok := t.next()
		if !ok {
			break
		}
		t.execute(fn)
	}

	t.mu.Lock()
	dropped := len(t.pending)
	t.pending = nil
	t.mu.Unlock()
	if dropped > 0 {
		t.logger.Warn("Dropped pending work because the queue thread quit.", "count", dropped)
	}
	t.logger.Debug("Queue thread finished.")
}

// next pops the oldest unit, waiting for one if the queue is empty.
func (t *Thread) next() (func(), bool) {
	for {
		select {
		case <-t.quit:
			return nil, false
		default:
		}

		t.mu.Lock()
		if len(t.pending) > 0 {
			fn := t.pending[0]
			t.pending[0] = nil
			t.pending = t.pending[1:]
			t.mu.Unlock()
			return fn, true
		}
		t.mu.Unlock()

		select {
		case <-t.wake:
		case <-t.quit:
			return nil, false
		}
	}
}

// execute runs one unit, recovering from panics so the thread keeps going.
func (t *Thread) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Recovered panic in queued work.", "panic", r)
		}
	}()
	fn()
}
