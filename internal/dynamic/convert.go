package dynamic

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromJSON parses JSON text into a value, inferring its type from the text.
func FromJSON(text string) (cty.Value, error) {
	buf := []byte(text)
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, fmt.Errorf("infer type of JSON value: %w", err)
	}
	v, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decode JSON value: %w", err)
	}
	return v, nil
}

// ToJSON prints v as compact JSON. Object keys come out sorted.
func ToJSON(v cty.Value) (string, error) {
	tree, err := ToGo(v)
	if err != nil {
		return "", err
	}
	buf, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("encode JSON value: %w", err)
	}
	return string(buf), nil
}

// ToGo converts v into the plain Go tree: nil, bool, int64 or float64,
// string, []any and map[string]any.
func ToGo(v cty.Value) (any, error) {
	k, err := KindOf(v)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.True(), nil
	case KindNumber:
		return numberToGo(v.AsBigFloat()), nil
	case KindString:
		return v.AsString(), nil
	case KindArray:
		elems := v.AsValueSlice()
		out := make([]any, 0, len(elems))
		for i, elem := range elems {
			goElem, err := ToGo(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, goElem)
		}
		return out, nil
	default:
		attrs := v.AsValueMap()
		out := make(map[string]any, len(attrs))
		for key, attr := range attrs {
			goAttr, err := ToGo(attr)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = goAttr
		}
		return out, nil
	}
}

func numberToGo(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

// FromGo converts a plain Go tree into a value. Maps with non-string keys and
// any other Go type fail with a TypeError.
func FromGo(x any) (cty.Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case cty.Value:
		if _, err := KindOf(t); err != nil {
			return cty.NilVal, err
		}
		return t, nil
	case bool:
		return cty.BoolVal(t), nil
	case string:
		return cty.StringVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int8:
		return cty.NumberIntVal(int64(t)), nil
	case int16:
		return cty.NumberIntVal(int64(t)), nil
	case int32:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float32:
		return Number(float64(t))
	case float64:
		if math.IsNaN(t) {
			return cty.NilVal, ErrInvalidNumber
		}
		return cty.NumberFloatVal(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		return Number(f)
	case []any:
		elems := make([]cty.Value, 0, len(t))
		for i, item := range t {
			elem, err := FromGo(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, elem)
		}
		return Array(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for key, item := range t {
			attr, err := FromGo(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", key, err)
			}
			attrs[key] = attr
		}
		return Object(attrs), nil
	case map[any]any:
		attrs := make(map[string]cty.Value, len(t))
		for rawKey, item := range t {
			key, ok := rawKey.(string)
			if !ok {
				return cty.NilVal, &TypeError{Want: "string key", Got: fmt.Sprintf("%T", rawKey)}
			}
			attr, err := FromGo(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", key, err)
			}
			attrs[key] = attr
		}
		return Object(attrs), nil
	}
	return cty.NilVal, &TypeError{Got: fmt.Sprintf("%T", x)}
}
