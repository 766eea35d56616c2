package bridge

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// ErrMalformedQueue is returned when an executor reports a flushed queue that
// does not have the expected shape.
var ErrMalformedQueue = errors.New("malformed flushed queue")

// PendingCall is one script-to-host invocation awaiting delivery.
type PendingCall struct {
	ModuleID  int
	MethodID  int
	Arguments cty.Value
}

// CallBatch is the ordered set of calls produced by one engine turn.
type CallBatch []PendingCall

// ParseFlushedQueue decodes [moduleIDs, methodIDs, params] with an optional
// trailing call id. Null yields an empty batch.
func ParseFlushedQueue(v cty.Value) (CallBatch, error) {
	if dynamic.IsNull(v) {
		return nil, nil
	}
	parts, err := dynamic.Elements(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedQueue, err)
	}
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: want at least 3 parts, got %d", ErrMalformedQueue, len(parts))
	}

	moduleIDs, err := ids(parts[0], "module ids")
	if err != nil {
		return nil, err
	}
	methodIDs, err := ids(parts[1], "method ids")
	if err != nil {
		return nil, err
	}
	params, err := dynamic.Elements(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: params: %w", ErrMalformedQueue, err)
	}
	if len(moduleIDs) != len(methodIDs) || len(moduleIDs) != len(params) {
		return nil, fmt.Errorf("%w: %d module ids, %d method ids, %d params",
			ErrMalformedQueue, len(moduleIDs), len(methodIDs), len(params))
	}

	batch := make(CallBatch, len(moduleIDs))
	for i := range batch {
		batch[i] = PendingCall{
			ModuleID:  moduleIDs[i],
			MethodID:  methodIDs[i],
			Arguments: params[i],
		}
	}
	return batch, nil
}

func ids(v cty.Value, what string) ([]int, error) {
	elems, err := dynamic.Elements(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedQueue, what, err)
	}
	out := make([]int, len(elems))
	for i, elem := range elems {
		id, err := dynamic.AsInt(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", ErrMalformedQueue, what, i, err)
		}
		out[i] = int(id)
	}
	return out, nil
}
