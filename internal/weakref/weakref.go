// Package weakref provides non-owning handles that are resolved to a usable
// reference at the moment of use. Failing to resolve is the ordinary signal
// that the target's owner has let it go.
package weakref

import (
	"sync"
	"weak"
)

// Handle is a non-owning reference to a T.
type Handle[T any] interface {
	// Resolve returns the target and true while it is alive.
	Resolve() (T, bool)
}

// Of returns a handle that resolves for as long as ptr is reachable from
// somewhere else. It is backed by the garbage collector, so the moment it
// stops resolving is not deterministic.
func Of[T any](ptr *T) Handle[*T] {
	return gcHandle[T]{p: weak.Make(ptr)}
}

type gcHandle[T any] struct {
	p weak.Pointer[T]
}

func (h gcHandle[T]) Resolve() (*T, bool) {
	ptr := h.p.Value()
	return ptr, ptr != nil
}

// Owner is the strong side of an explicitly released reference. Handles
// obtained from Weak stop resolving as soon as Release returns, and the
// owner drops its own reference to the value.
type Owner[T any] struct {
	mu    sync.RWMutex
	value T
	live  bool
}

// NewOwner takes ownership of v.
func NewOwner[T any](v T) *Owner[T] {
	return &Owner[T]{value: v, live: true}
}

// Get returns the value while the owner has not been released.
func (o *Owner[T]) Get() (T, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value, o.live
}

// Release ends ownership. It is safe to call more than once.
func (o *Owner[T]) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	o.value = zero
	o.live = false
}

// Weak returns a handle that resolves until Release is called.
func (o *Owner[T]) Weak() Handle[T] {
	return ownerHandle[T]{o: o}
}

type ownerHandle[T any] struct {
	o *Owner[T]
}

func (h ownerHandle[T]) Resolve() (T, bool) {
	return h.o.Get()
}

// Strong returns a handle that always resolves to v.
func Strong[T any](v T) Handle[T] {
	return strongHandle[T]{v: v}
}

type strongHandle[T any] struct {
	v T
}

func (h strongHandle[T]) Resolve() (T, bool) {
	return h.v, true
}
