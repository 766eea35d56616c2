package native

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// Map is a consumable container of string keys. Keys keep the order they
// were first inserted in; overwriting a key, by a put or a merge, keeps its
// position.
type Map struct {
	keys     []string
	vals     map[string]cty.Value
	consumed bool
}

// NewMap returns an empty, unconsumed Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]cty.Value)}
}

// IsConsumed reports whether the map's value has been moved away.
func (m *Map) IsConsumed() bool {
	return m.consumed
}

func (m *Map) insert(key string, v cty.Value) {
	if m.vals == nil {
		m.vals = make(map[string]cty.Value)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *Map) take() cty.Value {
	v := dynamic.Object(m.vals)
	m.keys = nil
	m.vals = nil
	m.consumed = true
	return v
}

func (m *Map) put(key string, v cty.Value) error {
	if m.consumed {
		return fmt.Errorf("receiving map: %w", ErrAlreadyConsumed)
	}
	m.insert(key, v)
	return nil
}

// PutNull stores a null under key.
func (m *Map) PutNull(key string) error {
	return m.put(key, dynamic.Null())
}

// PutBoolean stores b under key.
func (m *Map) PutBoolean(key string, b bool) error {
	return m.put(key, dynamic.Bool(b))
}

// PutDouble stores f under key. NaN is rejected.
func (m *Map) PutDouble(key string, f float64) error {
	if m.consumed {
		return fmt.Errorf("receiving map: %w", ErrAlreadyConsumed)
	}
	v, err := dynamic.Number(f)
	if err != nil {
		return err
	}
	return m.put(key, v)
}

// PutInt stores i under key.
func (m *Map) PutInt(key string, i int64) error {
	return m.put(key, dynamic.Int(i))
}

// PutString stores s under key.
func (m *Map) PutString(key, s string) error {
	return m.put(key, dynamic.String(s))
}

// PutArray moves a's value under key and consumes a. A nil a stores null.
func (m *Map) PutArray(key string, a *Array) error {
	if a == nil {
		return m.PutNull(key)
	}
	if m.consumed {
		return fmt.Errorf("receiving map: %w", ErrAlreadyConsumed)
	}
	if a.consumed {
		return fmt.Errorf("array to put: %w", ErrAlreadyConsumed)
	}
	return m.put(key, a.take())
}

// PutMap moves other's value under key and consumes other. A nil other
// stores null.
func (m *Map) PutMap(key string, other *Map) error {
	if other == nil {
		return m.PutNull(key)
	}
	if m.consumed {
		return fmt.Errorf("receiving map: %w", ErrAlreadyConsumed)
	}
	if other.consumed {
		return fmt.Errorf("map to put: %w", ErrAlreadyConsumed)
	}
	if other == m {
		return fmt.Errorf("map to put is the receiving map: %w", ErrAlreadyConsumed)
	}
	return m.put(key, other.take())
}

// Merge copies every entry of source into m. Keys present in both take the
// value from source in place, so a key iterator walking m neither skips nor
// repeats keys. The source map stays usable.
func (m *Map) Merge(source *Map) error {
	if source == nil {
		return nil
	}
	if source.consumed {
		return fmt.Errorf("source map: %w", ErrAlreadyConsumed)
	}
	if m.consumed {
		return fmt.Errorf("destination map: %w", ErrAlreadyConsumed)
	}
	if source == m {
		return nil
	}
	for _, key := range slices.Clone(source.keys) {
		m.insert(key, source.vals[key])
	}
	return nil
}

// Consume moves the owned value out of the map, leaving it consumed.
func (m *Map) Consume() (cty.Value, error) {
	if m.consumed {
		return cty.NilVal, fmt.Errorf("map: %w", ErrAlreadyConsumed)
	}
	return m.take(), nil
}

// Value returns the owned value without consuming the map.
func (m *Map) Value() (cty.Value, error) {
	if m.consumed {
		return cty.NilVal, fmt.Errorf("map: %w", ErrAlreadyConsumed)
	}
	return dynamic.Object(m.vals), nil
}

// Size is the number of keys. A consumed map is empty.
func (m *Map) Size() int {
	return len(m.keys)
}

// Keys returns the keys in iteration order.
func (m *Map) Keys() []string {
	return slices.Clone(m.keys)
}

// HasKey reports whether key is present.
func (m *Map) HasKey(key string) bool {
	_, ok := m.vals[key]
	return ok
}

func (m *Map) get(key string) (cty.Value, error) {
	if m.consumed {
		return cty.NilVal, fmt.Errorf("map: %w", ErrAlreadyConsumed)
	}
	v, ok := m.vals[key]
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q", ErrNoSuchKey, key)
	}
	return v, nil
}

// IsNull reports whether the value under key is null.
func (m *Map) IsNull(key string) (bool, error) {
	v, err := m.get(key)
	if err != nil {
		return false, err
	}
	return dynamic.IsNull(v), nil
}

// GetBoolean reads a bool under key.
func (m *Map) GetBoolean(key string) (bool, error) {
	v, err := m.get(key)
	if err != nil {
		return false, err
	}
	return dynamic.AsBool(v)
}

// GetDouble reads a number under key as float64.
func (m *Map) GetDouble(key string) (float64, error) {
	v, err := m.get(key)
	if err != nil {
		return 0, err
	}
	return dynamic.AsFloat(v)
}

// GetInt reads a whole number under key.
func (m *Map) GetInt(key string) (int64, error) {
	v, err := m.get(key)
	if err != nil {
		return 0, err
	}
	return dynamic.AsInt(v)
}

// GetString reads a string under key. A null value reads as "".
func (m *Map) GetString(key string) (string, error) {
	v, err := m.get(key)
	if err != nil {
		return "", err
	}
	if dynamic.IsNull(v) {
		return "", nil
	}
	return dynamic.AsString(v)
}

// GetArray wraps the array under key in a new Array. Null yields nil.
func (m *Map) GetArray(key string) (*Array, error) {
	v, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return ToArray(v)
}

// GetMap wraps the object under key in a new Map. Null yields nil.
func (m *Map) GetMap(key string) (*Map, error) {
	v, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return ToMap(v)
}

// GetType returns the type tag of the value under key.
func (m *Map) GetType(key string) (Type, error) {
	v, err := m.get(key)
	if err != nil {
		return 0, err
	}
	return TypeOf(v)
}

// DebugString formats the map as "{ NativeMap: <json> }".
func (m *Map) DebugString() (string, error) {
	if m.consumed {
		return "", fmt.Errorf("map: %w", ErrAlreadyConsumed)
	}
	text, err := dynamic.ToJSON(dynamic.Object(m.vals))
	if err != nil {
		return "", err
	}
	return "{ NativeMap: " + text + " }", nil
}

// String implements fmt.Stringer on top of DebugString.
func (m *Map) String() string {
	s, err := m.DebugString()
	if err != nil {
		return "{ NativeMap: <" + err.Error() + "> }"
	}
	return s
}
