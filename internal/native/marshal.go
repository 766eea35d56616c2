package native

import (
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// ToArray wraps an array value in a new, unconsumed Array. A null value
// yields a nil Array and no error.
func ToArray(v cty.Value) (*Array, error) {
	if dynamic.IsNull(v) {
		return nil, nil
	}
	elems, err := dynamic.Elements(v)
	if err != nil {
		return nil, err
	}
	return &Array{elems: elems}, nil
}

// ToMap wraps an object value in a new, unconsumed Map. A null value yields
// a nil Map and no error.
func ToMap(v cty.Value) (*Map, error) {
	if dynamic.IsNull(v) {
		return nil, nil
	}
	attrs, keys, err := dynamic.Attributes(v)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = make(map[string]cty.Value)
	}
	return &Map{keys: keys, vals: attrs}, nil
}
