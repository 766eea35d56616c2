package jsexecutor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dop251/goja"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// toJS builds a native JS value so arrays are real Arrays inside the engine
// rather than wrapped Go slices.
func (e *Executor) toJS(v cty.Value) (goja.Value, error) {
	plain, err := dynamic.ToGo(v)
	if err != nil {
		return nil, err
	}
	return e.plainToJS(plain), nil
}

func (e *Executor) plainToJS(x any) goja.Value {
	switch t := x.(type) {
	case nil:
		return goja.Null()
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = e.plainToJS(item)
		}
		return e.rt.NewArray(items...)
	case map[string]any:
		obj := e.rt.NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_ = obj.Set(k, e.plainToJS(t[k]))
		}
		return obj
	default:
		return e.rt.ToValue(t)
	}
}

// fromJS converts an engine result into the dynamic value tree through the
// engine's own JSON.stringify, so NaN and Infinity read as null and functions
// are dropped the way a serialized reply would drop them. Undefined reads as
// null.
func (e *Executor) fromJS(v goja.Value) (cty.Value, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return dynamic.Null(), nil
	}
	jsonObj := e.rt.Get("JSON").ToObject(e.rt)
	stringify, ok := goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return cty.NilVal, errors.New("JSON.stringify is not callable")
	}
	text, err := stringify(jsonObj, v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot serialize %s: %w", v.ExportType(), err)
	}
	if goja.IsUndefined(text) {
		return dynamic.Null(), nil
	}
	return dynamic.FromJSON(text.String())
}
