package dynamic

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ErrUnexpectedType is the sentinel wrapped by every TypeError.
var ErrUnexpectedType = errors.New("unexpected type")

// TypeError reports a read or conversion that asked for a shape the value does
// not have. Got names the actual kind for diagnostics.
type TypeError struct {
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("unexpected type: %s", e.Got)
	}
	return fmt.Sprintf("expected %s, got a %s", e.Want, e.Got)
}

// Unwrap lets errors.Is match ErrUnexpectedType.
func (e *TypeError) Unwrap() error { return ErrUnexpectedType }

// Kind is the closed classification of a value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindOf classifies v. Values outside the wire subset fail with a TypeError.
func KindOf(v cty.Value) (Kind, error) {
	if v == cty.NilVal {
		return KindNull, nil
	}
	if !v.IsKnown() {
		return 0, &TypeError{Got: "unknown value"}
	}
	if v.IsNull() {
		return KindNull, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return KindBool, nil
	case ty == cty.Number:
		return KindNumber, nil
	case ty == cty.String:
		return KindString, nil
	case ty.IsTupleType() || ty.IsListType():
		return KindArray, nil
	case ty.IsObjectType() || ty.IsMapType():
		return KindObject, nil
	}
	return 0, &TypeError{Got: TypeName(v)}
}

// TypeName is a human readable name for v's type, used in error messages.
func TypeName(v cty.Value) string {
	if v == cty.NilVal {
		return "null"
	}
	if !v.IsKnown() {
		return "unknown value"
	}
	if v.IsNull() {
		return "null"
	}
	if k, err := KindOf(v); err == nil {
		return k.String()
	}
	return v.Type().FriendlyName()
}

// IsNull reports whether v is the null value (or the zero cty.Value).
func IsNull(v cty.Value) bool {
	return v == cty.NilVal || (v.IsKnown() && v.IsNull())
}
