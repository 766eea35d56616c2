package dynamic

import (
	"errors"
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidNumber is returned for numbers the value tree cannot hold (NaN).
var ErrInvalidNumber = errors.New("invalid number")

// Null returns the untyped null value.
func Null() cty.Value { return cty.NullVal(cty.DynamicPseudoType) }

// Bool wraps b.
func Bool(b bool) cty.Value { return cty.BoolVal(b) }

// Int wraps i.
func Int(i int64) cty.Value { return cty.NumberIntVal(i) }

// String wraps s.
func String(s string) cty.Value { return cty.StringVal(s) }

// Number wraps f. NaN cannot be represented and fails with ErrInvalidNumber.
func Number(f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, ErrInvalidNumber
	}
	return cty.NumberFloatVal(f), nil
}

// Array builds an ordered array. Elements may be of mixed kinds.
func Array(elems []cty.Value) cty.Value {
	if len(elems) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(elems)
}

// Object builds an object from attrs.
func Object(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// Elements returns the elements of an array value.
func Elements(v cty.Value) ([]cty.Value, error) {
	k, err := KindOf(v)
	if err != nil {
		return nil, err
	}
	if k != KindArray {
		return nil, &TypeError{Want: "array", Got: k.String()}
	}
	return v.AsValueSlice(), nil
}

// Attributes returns the entries of an object value along with its keys in
// sorted order.
func Attributes(v cty.Value) (map[string]cty.Value, []string, error) {
	k, err := KindOf(v)
	if err != nil {
		return nil, nil, err
	}
	if k != KindObject {
		return nil, nil, &TypeError{Want: "object", Got: k.String()}
	}
	attrs := v.AsValueMap()
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return attrs, keys, nil
}

// AsBool reads a bool value.
func AsBool(v cty.Value) (bool, error) {
	if err := expect(v, KindBool); err != nil {
		return false, err
	}
	return v.True(), nil
}

// AsFloat reads a number as float64. Integers are converted explicitly; the
// result is exact up to float64 precision.
func AsFloat(v cty.Value) (float64, error) {
	if err := expect(v, KindNumber); err != nil {
		return 0, err
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

// AsInt reads a number that holds a whole value fitting in int64.
func AsInt(v cty.Value) (int64, error) {
	if err := expect(v, KindNumber); err != nil {
		return 0, err
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return 0, &TypeError{Want: "integer", Got: "fractional number"}
	}
	i, acc := bf.Int64()
	if acc != 0 {
		return 0, &TypeError{Want: "integer", Got: "out of range number"}
	}
	return i, nil
}

// AsString reads a string value.
func AsString(v cty.Value) (string, error) {
	if err := expect(v, KindString); err != nil {
		return "", err
	}
	return v.AsString(), nil
}

func expect(v cty.Value, want Kind) error {
	k, err := KindOf(v)
	if err != nil {
		return err
	}
	if k != want {
		return &TypeError{Want: want.String(), Got: k.String()}
	}
	return nil
}
