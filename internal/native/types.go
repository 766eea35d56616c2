package native

import (
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// Type is the tag the host reads a value's shape with.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeMap
	TypeArray
)

// typeNames and typeByKind are filled once at package initialisation and
// never written again.
var (
	typeNames = [...]string{
		TypeNull:    "Null",
		TypeBoolean: "Boolean",
		TypeNumber:  "Number",
		TypeString:  "String",
		TypeMap:     "Map",
		TypeArray:   "Array",
	}
	typeByKind = [...]Type{
		dynamic.KindNull:   TypeNull,
		dynamic.KindBool:   TypeBoolean,
		dynamic.KindNumber: TypeNumber,
		dynamic.KindString: TypeString,
		dynamic.KindObject: TypeMap,
		dynamic.KindArray:  TypeArray,
	}
)

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Unknown"
	}
	return typeNames[t]
}

// TypeOf maps a value onto its host type tag. Integers and floating point
// numbers share TypeNumber. Values outside the closed set fail with an
// UnexpectedTypeError.
func TypeOf(v cty.Value) (Type, error) {
	k, err := dynamic.KindOf(v)
	if err != nil {
		return 0, err
	}
	return typeByKind[k], nil
}
