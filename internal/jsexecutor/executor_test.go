package jsexecutor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const greeterScript = `
__fbBatchedBridge.registerCallableModule('Greeter', {
  greet: function (name, times) {
    for (var i = 0; i < times; i++) {
      __fbBatchedBridge.enqueueNativeCall(7, i, ['hello ' + name, i * 1.5]);
    }
  },
  later: function () {
    var id = __fbBatchedBridge.registerCallback(function (v) {
      __fbBatchedBridge.enqueueNativeCall(9, 0, [v]);
    });
    __fbBatchedBridge.enqueueNativeCall(9, 1, [id]);
  },
  fail: function () { missing(); }
});
`

func newRuntimeExecutor(t *testing.T) *Executor {
	t.Helper()
	ex, err := NewFactory(WithRuntime()).Create(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ex.Close() })
	return ex.(*Executor)
}

func toPlain(t *testing.T, v cty.Value) any {
	t.Helper()
	out, err := dynamic.ToGo(v)
	require.NoError(t, err)
	return out
}

func TestInvoke_ReturnsFlushedQueue(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.LoadSource(ctx, []byte(greeterScript), "greeter.js"))

	result, err := ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		cty.StringVal("Greeter"),
		cty.StringVal("greet"),
		dynamic.Array([]cty.Value{cty.StringVal("ada"), dynamic.Int(2)}),
	})
	require.NoError(t, err)

	want := []any{
		[]any{int64(7), int64(7)},
		[]any{int64(0), int64(1)},
		[]any{
			[]any{"hello ada", int64(0)},
			[]any{"hello ada", 1.5},
		},
		int64(2),
	}
	if diff := cmp.Diff(want, toPlain(t, result)); diff != "" {
		t.Errorf("flushed queue mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke_EmptyQueueIsNull(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)

	result, err := ex.Invoke(ctx, BridgeModule, "flushedQueue", nil)
	require.NoError(t, err)
	assert.True(t, result.IsNull())
}

func TestInvoke_Callback(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.LoadSource(ctx, []byte(greeterScript), "greeter.js"))

	result, err := ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		cty.StringVal("Greeter"), cty.StringVal("later"), dynamic.Array(nil),
	})
	require.NoError(t, err)
	queue := toPlain(t, result).([]any)
	cbID := queue[2].([]any)[0].([]any)[0]

	result, err = ex.Invoke(ctx, BridgeModule, "invokeCallbackAndReturnFlushedQueue", []cty.Value{
		dynamic.Int(cbID.(int64)),
		dynamic.Array([]cty.Value{cty.True}),
	})
	require.NoError(t, err)
	want := []any{[]any{int64(9)}, []any{int64(0)}, []any{[]any{true}}, int64(2)}
	if diff := cmp.Diff(want, toPlain(t, result)); diff != "" {
		t.Errorf("flushed queue mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke_ScriptExceptionIsExecutionError(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.LoadSource(ctx, []byte(greeterScript), "greeter.js"))

	_, err := ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		cty.StringVal("Greeter"), cty.StringVal("fail"), dynamic.Array(nil),
	})
	require.ErrorIs(t, err, executor.ErrExecution)

	var execErr *executor.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "invoke", execErr.Op)
	assert.Contains(t, err.Error(), "missing")
}

func TestInvoke_UnknownModule(t *testing.T) {
	ex, err := NewFactory().Create(context.Background())
	require.NoError(t, err)

	_, err = ex.Invoke(context.Background(), BridgeModule, "flushedQueue", nil)
	require.ErrorIs(t, err, executor.ErrExecution)
	assert.Contains(t, err.Error(), DefaultBridgeName)
}

func TestLoadSource_SyntaxError(t *testing.T) {
	ex := newRuntimeExecutor(t)
	err := ex.LoadSource(context.Background(), []byte("function ("), "broken.js")
	require.ErrorIs(t, err, executor.ErrExecution)
	assert.Contains(t, err.Error(), "broken.js")
}

func TestLoadSource_HonorsContext(t *testing.T) {
	ex := newRuntimeExecutor(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := ex.LoadSource(ctx, []byte("for (;;) {}"), "spin.js")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The interrupt must not leak into the next run.
	require.NoError(t, ex.LoadSource(context.Background(), []byte("var ok = 1;"), "ok.js"))
}

func TestSetGlobal(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.SetGlobal(ctx, "__config", `{"name":"demo","flags":[1,2]}`))
	require.NoError(t, ex.LoadSource(ctx, []byte(`var ConfigReader = { read: function () { return [__config.name, __config.flags.length]; } };`), "config_reader.js"))

	result, err := ex.Invoke(ctx, "ConfigReader", "read", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"demo", int64(2)}, toPlain(t, result))

	err = ex.SetGlobal(ctx, "__broken", "{nope")
	require.ErrorIs(t, err, executor.ErrExecution)
}

func TestProfiling(t *testing.T) {
	ex := newRuntimeExecutor(t)
	require.True(t, ex.SupportsProfiling())

	require.NoError(t, ex.StartProfiling("startup"))
	require.Error(t, ex.StartProfiling("again"))
	require.NoError(t, ex.LoadSource(context.Background(), []byte("var n = 0; for (var i = 0; i < 1000; i++) { n += i; }"), "work.js"))

	path := filepath.Join(t.TempDir(), "startup.pprof")
	require.Error(t, ex.StopProfiling("other", path))
	require.NoError(t, ex.StopProfiling("startup", path))
	assert.FileExists(t, path)
	require.Error(t, ex.StopProfiling("startup", path))
}

func TestClose(t *testing.T) {
	ex, err := NewFactory().Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, ex.Close())
	require.NoError(t, ex.Close())

	err = ex.LoadSource(context.Background(), []byte("1"), "x.js")
	require.ErrorIs(t, err, executor.ErrExecution)
}

func TestInvoke_NumericIDs(t *testing.T) {
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.LoadSource(ctx, []byte(greeterScript), "greeter.js"))

	// Greeter is module 0; greet is its method 0.
	result, err := ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		dynamic.Int(0), dynamic.Int(0),
		dynamic.Array([]cty.Value{cty.StringVal("bob"), dynamic.Int(1)}),
	})
	require.NoError(t, err)
	queue := toPlain(t, result).([]any)
	assert.Equal(t, []any{[]any{"hello bob", int64(0)}}, queue[2])

	_, err = ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		dynamic.Int(5), dynamic.Int(0), dynamic.Array(nil),
	})
	require.ErrorIs(t, err, executor.ErrExecution)
	assert.Contains(t, err.Error(), "not registered")
}

func TestInvoke_NonJSONValuesReadAsNull(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ex := newRuntimeExecutor(t)
	require.NoError(t, ex.LoadSource(ctx, []byte(`
__fbBatchedBridge.registerCallableModule('Odd', {
  emit: function () {
    __fbBatchedBridge.enqueueNativeCall(3, 0, [1, NaN, Infinity]);
    __fbBatchedBridge.enqueueNativeCall(3, 1, [{ ok: 'yes', fn: function () {} }]);
  }
});
`), "odd.js"))

	// Act
	result, err := ex.Invoke(ctx, BridgeModule, "callFunctionReturnFlushedQueue", []cty.Value{
		cty.StringVal("Odd"), cty.StringVal("emit"), dynamic.Array(nil),
	})

	// Assert
	require.NoError(t, err)
	queue := toPlain(t, result).([]any)
	want := []any{
		[]any{int64(1), nil, nil},
		map[string]any{"ok": "yes"},
	}
	assert.Equal(t, []any{int64(0), int64(1)}, queue[1])
	assert.Equal(t, want, []any{
		queue[2].([]any)[0],
		queue[2].([]any)[1].([]any)[0],
	})
}
