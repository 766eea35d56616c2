package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/bridge"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/native"
	"github.com/specialistvlad/scriptbridge/internal/testutil"
	"github.com/specialistvlad/scriptbridge/internal/weakref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func call(module, method int, args ...cty.Value) bridge.PendingCall {
	return bridge.PendingCall{ModuleID: module, MethodID: method, Arguments: dynamic.Array(args)}
}

func newDispatcher(cb *testutil.RecordingCallback, poster *testutil.ManualPoster) (*bridge.Dispatcher, *weakref.Owner[bridge.Callback], *weakref.Owner[bridge.Poster]) {
	cbOwner := weakref.NewOwner[bridge.Callback](cb)
	threadOwner := weakref.NewOwner[bridge.Poster](poster)
	d := bridge.NewDispatcher(context.Background(), cbOwner.Weak(), threadOwner.Weak())
	return d, cbOwner, threadOwner
}

func TestDispatcher_DeliversInOrderThenCompletes(t *testing.T) {
	// --- Arrange ---
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, _, _ := newDispatcher(cb, poster)

	// --- Act ---
	d.Dispatch(bridge.CallBatch{
		call(1, 0, cty.StringVal("A")),
		call(2, 1, cty.StringVal("B")),
		call(3, 2, cty.StringVal("C")),
	})

	// --- Assert ---
	assert.Empty(t, cb.Calls(), "delivery must wait for the target thread")
	require.Equal(t, 1, poster.Len(), "one batch is one unit of work")

	poster.Run()
	calls := cb.Calls()
	require.Len(t, calls, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, i+1, calls[i].ModuleID)
		assert.Equal(t, i, calls[i].MethodID)
		assert.True(t, calls[i].Args.RawEquals(dynamic.Array([]cty.Value{cty.StringVal(want)})))
	}
	assert.Equal(t, []string{"call", "call", "call", "complete"}, cb.Events())
	assert.Equal(t, bridge.Stats{Posted: 1, Delivered: 1}, d.Stats())
}

func TestDispatcher_CallbackGoneBeforeDelivery(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, cbOwner, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{call(1, 0), call(1, 1)})
	cbOwner.Release()

	require.NotPanics(t, poster.Run)
	assert.Empty(t, cb.Events())
	assert.Equal(t, bridge.Stats{Posted: 1, Dropped: 1}, d.Stats())
}

func TestDispatcher_ThreadGoneAtPostTime(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, _, threadOwner := newDispatcher(cb, poster)
	threadOwner.Release()

	d.Dispatch(bridge.CallBatch{call(1, 0)})

	assert.Zero(t, poster.Len())
	assert.Empty(t, cb.Events())
	assert.Equal(t, bridge.Stats{Dropped: 1}, d.Stats())
}

func TestDispatcher_ThreadQuit(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{Closed: true}
	d, _, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{call(1, 0)})
	assert.Equal(t, bridge.Stats{Dropped: 1}, d.Stats())
}

func TestDispatcher_AbortsOnFirstFailure(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	cb.FailOn = map[int]error{2: errors.New("sink raised")}
	poster := &testutil.ManualPoster{}
	d, _, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{call(1, 0), call(2, 0), call(3, 0)})
	poster.Run()

	calls := cb.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 2, calls[1].ModuleID)
	assert.Zero(t, cb.Completed(), "an aborted batch never completes")
	assert.Equal(t, bridge.Stats{Posted: 1, Aborted: 1}, d.Stats())
}

type panickingCallback struct{ completed bool }

func (p *panickingCallback) Call(int, int, *native.Array) error { panic("boom") }
func (p *panickingCallback) OnBatchComplete() { p.completed = true }

func TestDispatcher_PanicAbortsBatch(t *testing.T) {
	cb := &panickingCallback{}
	poster := &testutil.ManualPoster{}
	d := bridge.NewDispatcher(context.Background(), weakref.Strong[bridge.Callback](cb), weakref.Strong[bridge.Poster](poster))

	d.Dispatch(bridge.CallBatch{call(1, 0)})
	require.NotPanics(t, poster.Run)
	assert.False(t, cb.completed)
	assert.Equal(t, int64(1), d.Stats().Aborted)
}

func TestDispatcher_SkipsNullArguments(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, _, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{
		{ModuleID: 1, MethodID: 0, Arguments: dynamic.Null()},
		call(2, 0),
	})
	poster.Run()

	calls := cb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].ModuleID)
	assert.Equal(t, 1, cb.Completed())
}

func TestDispatcher_NonArrayArgumentsAbort(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, _, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{{ModuleID: 1, MethodID: 0, Arguments: cty.StringVal("nope")}})
	poster.Run()

	assert.Empty(t, cb.Calls())
	assert.Zero(t, cb.Completed())
	assert.Equal(t, int64(1), d.Stats().Aborted)
}

func TestDispatcher_BatchesKeepPostOrder(t *testing.T) {
	cb := testutil.NewRecordingCallback()
	poster := &testutil.ManualPoster{}
	d, _, _ := newDispatcher(cb, poster)

	d.Dispatch(bridge.CallBatch{call(1, 0)})
	d.Dispatch(bridge.CallBatch{call(2, 0), call(3, 0)})
	poster.Run()

	var modules []int
	for _, c := range cb.Calls() {
		modules = append(modules, c.ModuleID)
	}
	assert.Equal(t, []int{1, 2, 3}, modules)
	assert.Equal(t, []string{"call", "complete", "call", "call", "complete"}, cb.Events())
}
