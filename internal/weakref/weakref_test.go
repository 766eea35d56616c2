package weakref

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	name string
	pad  [8]*int
}

func TestOwner_ReleaseStopsResolution(t *testing.T) {
	owner := NewOwner("sink")
	h := owner.Weak()

	v, ok := h.Resolve()
	require.True(t, ok)
	assert.Equal(t, "sink", v)

	owner.Release()
	v, ok = h.Resolve()
	assert.False(t, ok)
	assert.Empty(t, v)

	owner.Release()
	_, ok = owner.Get()
	assert.False(t, ok)
}

func TestStrong(t *testing.T) {
	v, ok := Strong(42).Resolve()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestOf_ResolvesWhileReachable(t *testing.T) {
	tgt := &target{name: "thread"}
	h := Of(tgt)

	got, ok := h.Resolve()
	require.True(t, ok)
	assert.Same(t, tgt, got)
	runtime.KeepAlive(tgt)
}

func TestOf_StopsResolvingAfterCollection(t *testing.T) {
	h := func() Handle[*target] {
		return Of(&target{name: "gone"})
	}()

	for i := 0; i < 10; i++ {
		runtime.GC()
		if _, ok := h.Resolve(); !ok {
			return
		}
	}
	t.Fatal("handle still resolves after the target became unreachable")
}
