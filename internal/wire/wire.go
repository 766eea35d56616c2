// Package wire defines the CBOR envelopes exchanged with an out-of-process
// script engine.
package wire

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// Methods understood by the remote engine.
const (
	MethodExecuteApplicationScript = "executeApplicationScript"
	MethodExecuteJSCall            = "executeJSCall"
	MethodSetGlobalVariable        = "setGlobalVariable"
)

// Request asks the remote engine to do one thing. Which fields are set
// depends on Method.
type Request struct {
	ID        uint64 `cbor:"id"`
	Method    string `cbor:"method"`
	Module    string `cbor:"module,omitempty"`
	Function  string `cbor:"function,omitempty"`
	Label     string `cbor:"label,omitempty"`
	Source    []byte `cbor:"source,omitempty"`
	Name      string `cbor:"name,omitempty"`
	JSON      string `cbor:"json,omitempty"`
	Arguments []any  `cbor:"arguments,omitempty"`
}

// Reply answers the request with the same ID. A non-empty Error means the
// engine raised.
type Reply struct {
	ID     uint64 `cbor:"id"`
	Result any    `cbor:"result,omitempty"`
	Error  string `cbor:"error,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// MarshalRequest serializes a Request to CBOR bytes.
func MarshalRequest(r *Request) ([]byte, error) {
	return encMode.Marshal(r)
}

// UnmarshalRequest deserializes a Request from CBOR bytes.
func UnmarshalRequest(data []byte) (*Request, error) {
	var r Request
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: unmarshal request: %w", err)
	}
	return &r, nil
}

// MarshalReply serializes a Reply to CBOR bytes.
func MarshalReply(r *Reply) ([]byte, error) {
	return encMode.Marshal(r)
}

// UnmarshalReply deserializes a Reply from CBOR bytes.
func UnmarshalReply(data []byte) (*Reply, error) {
	var r Reply
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: unmarshal reply: %w", err)
	}
	return &r, nil
}

// EncodeArguments converts call arguments into the plain tree carried by a Request.
func EncodeArguments(args []cty.Value) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		plain, err := dynamic.ToGo(arg)
		if err != nil {
			return nil, fmt.Errorf("wire: argument %d: %w", i, err)
		}
		out[i] = plain
	}
	return out, nil
}

// ResultValue converts the reply's result into the dynamic value tree.
func (r *Reply) ResultValue() (cty.Value, error) {
	v, err := dynamic.FromGo(r.Result)
	if err != nil {
		return cty.NilVal, fmt.Errorf("wire: reply %d result: %w", r.ID, err)
	}
	return v, nil
}
