package testutil

import (
	"sync"

	"github.com/specialistvlad/scriptbridge/internal/native"
	"github.com/zclconf/go-cty/cty"
)

// RecordingCallback records every call and batch completion it receives.
// FailOn makes Call return an error for a given module id.
type RecordingCallback struct {
	FailOn map[int]error

	mu        sync.Mutex
	calls     []DeliveredCall
	completed int
	events    []string
	notify    chan struct{}
}

// NewRecordingCallback returns an empty recorder.
func NewRecordingCallback() *RecordingCallback {
	return &RecordingCallback{notify: make(chan struct{}, 64)}
}

func (c *RecordingCallback) Call(moduleID, methodID int, args *native.Array) error {
	var v cty.Value
	if args != nil {
		var err error
		if v, err = args.Value(); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.calls = append(c.calls, DeliveredCall{ModuleID: moduleID, MethodID: methodID, Args: v})
	c.events = append(c.events, "call")
	err := c.FailOn[moduleID]
	c.mu.Unlock()
	return err
}

func (c *RecordingCallback) OnBatchComplete() {
	c.mu.Lock()
	c.completed++
	c.events = append(c.events, "complete")
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Calls returns a copy of the delivered calls.
func (c *RecordingCallback) Calls() []DeliveredCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DeliveredCall(nil), c.calls...)
}

// Completed returns the number of completion signals.
func (c *RecordingCallback) Completed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Events returns "call" and "complete" markers in the order they happened.
func (c *RecordingCallback) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

// Completions receives a value after each completion signal.
func (c *RecordingCallback) Completions() <-chan struct{} {
	return c.notify
}
