package native

import (
	"fmt"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// Array is an ordered, consumable container.
type Array struct {
	elems    []cty.Value
	consumed bool
}

// NewArray returns an empty, unconsumed Array.
func NewArray() *Array {
	return &Array{}
}

// IsConsumed reports whether the array's value has been moved away.
func (a *Array) IsConsumed() bool {
	return a.consumed
}

func (a *Array) receive(v cty.Value) error {
	if a.consumed {
		return fmt.Errorf("receiving array: %w", ErrAlreadyConsumed)
	}
	a.elems = append(a.elems, v)
	return nil
}

// take moves the owned value out and marks the array consumed.
func (a *Array) take() cty.Value {
	v := dynamic.Array(a.elems)
	a.elems = nil
	a.consumed = true
	return v
}

// PushNull appends a null.
func (a *Array) PushNull() error {
	return a.receive(dynamic.Null())
}

// PushBoolean appends b.
func (a *Array) PushBoolean(b bool) error {
	return a.receive(dynamic.Bool(b))
}

// PushDouble appends f. NaN is rejected.
func (a *Array) PushDouble(f float64) error {
	if a.consumed {
		return fmt.Errorf("receiving array: %w", ErrAlreadyConsumed)
	}
	v, err := dynamic.Number(f)
	if err != nil {
		return err
	}
	return a.receive(v)
}

// PushInt appends i.
func (a *Array) PushInt(i int64) error {
	return a.receive(dynamic.Int(i))
}

// PushString appends s.
func (a *Array) PushString(s string) error {
	return a.receive(dynamic.String(s))
}

// PushArray moves other's value to the end of a and consumes other. A nil
// other appends a null.
func (a *Array) PushArray(other *Array) error {
	if other == nil {
		return a.PushNull()
	}
	if a.consumed {
		return fmt.Errorf("receiving array: %w", ErrAlreadyConsumed)
	}
	if other.consumed {
		return fmt.Errorf("array to push: %w", ErrAlreadyConsumed)
	}
	if other == a {
		return fmt.Errorf("array to push is the receiving array: %w", ErrAlreadyConsumed)
	}
	return a.receive(other.take())
}

// PushMap moves m's value to the end of a and consumes m. A nil m appends a
// null.
func (a *Array) PushMap(m *Map) error {
	if m == nil {
		return a.PushNull()
	}
	if a.consumed {
		return fmt.Errorf("receiving array: %w", ErrAlreadyConsumed)
	}
	if m.consumed {
		return fmt.Errorf("map to push: %w", ErrAlreadyConsumed)
	}
	return a.receive(m.take())
}

// Consume moves the owned value out of the array, leaving it consumed.
func (a *Array) Consume() (cty.Value, error) {
	if a.consumed {
		return cty.NilVal, fmt.Errorf("array: %w", ErrAlreadyConsumed)
	}
	return a.take(), nil
}

// Value returns the owned value without consuming the array.
func (a *Array) Value() (cty.Value, error) {
	if a.consumed {
		return cty.NilVal, fmt.Errorf("array: %w", ErrAlreadyConsumed)
	}
	return dynamic.Array(a.elems), nil
}

// Size is the number of elements. A consumed array is empty.
func (a *Array) Size() int {
	return len(a.elems)
}

// IsNull reports whether the element at index is null. Indices past the end
// and consumed arrays read as null.
func (a *Array) IsNull(index int) bool {
	if index < 0 || index >= len(a.elems) {
		return true
	}
	return dynamic.IsNull(a.elems[index])
}

func (a *Array) at(index int) (cty.Value, error) {
	if a.consumed {
		return cty.NilVal, fmt.Errorf("array: %w", ErrAlreadyConsumed)
	}
	if index < 0 || index >= len(a.elems) {
		return cty.NilVal, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, index, len(a.elems))
	}
	return a.elems[index], nil
}

// GetBoolean reads a bool element.
func (a *Array) GetBoolean(index int) (bool, error) {
	v, err := a.at(index)
	if err != nil {
		return false, err
	}
	return dynamic.AsBool(v)
}

// GetDouble reads a number element as float64.
func (a *Array) GetDouble(index int) (float64, error) {
	v, err := a.at(index)
	if err != nil {
		return 0, err
	}
	return dynamic.AsFloat(v)
}

// GetInt reads a whole number element.
func (a *Array) GetInt(index int) (int64, error) {
	v, err := a.at(index)
	if err != nil {
		return 0, err
	}
	return dynamic.AsInt(v)
}

// GetString reads a string element. A null element reads as "".
func (a *Array) GetString(index int) (string, error) {
	v, err := a.at(index)
	if err != nil {
		return "", err
	}
	if dynamic.IsNull(v) {
		return "", nil
	}
	return dynamic.AsString(v)
}

// GetArray wraps a nested array element in a new Array. A null element
// yields nil.
func (a *Array) GetArray(index int) (*Array, error) {
	v, err := a.at(index)
	if err != nil {
		return nil, err
	}
	return ToArray(v)
}

// GetMap wraps a nested object element in a new Map. A null element yields
// nil.
func (a *Array) GetMap(index int) (*Map, error) {
	v, err := a.at(index)
	if err != nil {
		return nil, err
	}
	return ToMap(v)
}

// GetType returns the type tag of the element at index.
func (a *Array) GetType(index int) (Type, error) {
	v, err := a.at(index)
	if err != nil {
		return 0, err
	}
	return TypeOf(v)
}
