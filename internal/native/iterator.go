package native

import "fmt"

// KeyIterator walks the keys of a Map. It holds its own reference to the
// map, so the map lives at least as long as the iterator. The iterator reads
// the map's current keys on every call: keys added after it was created are
// visited, it is not a snapshot.
type KeyIterator struct {
	m      *Map
	cursor int
}

// NewKeyIterator starts an iteration over m. Iterating a consumed map yields
// no keys.
func NewKeyIterator(m *Map) *KeyIterator {
	return &KeyIterator{m: m}
}

// KeyIterator is shorthand for NewKeyIterator(m).
func (m *Map) KeyIterator() *KeyIterator {
	return NewKeyIterator(m)
}

// HasNextKey reports whether NextKey would return a key.
func (it *KeyIterator) HasNextKey() bool {
	return it.m != nil && it.cursor < len(it.m.keys)
}

// NextKey returns the current key and advances.
func (it *KeyIterator) NextKey() (string, error) {
	if !it.HasNextKey() {
		return "", fmt.Errorf("key iterator: %w", ErrInvalidIterator)
	}
	key := it.m.keys[it.cursor]
	it.cursor++
	return key, nil
}
