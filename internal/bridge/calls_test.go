package bridge

import (
	"testing"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func queue(parts ...cty.Value) cty.Value {
	return dynamic.Array(parts)
}

func ints(xs ...int64) cty.Value {
	vals := make([]cty.Value, len(xs))
	for i, x := range xs {
		vals[i] = dynamic.Int(x)
	}
	return dynamic.Array(vals)
}

func TestParseFlushedQueue(t *testing.T) {
	args := dynamic.Array([]cty.Value{cty.StringVal("a")})
	batch, err := ParseFlushedQueue(queue(
		ints(3, 4),
		ints(0, 1),
		dynamic.Array([]cty.Value{args, dynamic.Array(nil)}),
		dynamic.Int(17),
	))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, 3, batch[0].ModuleID)
	assert.Equal(t, 0, batch[0].MethodID)
	assert.True(t, batch[0].Arguments.RawEquals(args))
	assert.Equal(t, 4, batch[1].ModuleID)
	assert.Equal(t, 1, batch[1].MethodID)
}

func TestParseFlushedQueue_Null(t *testing.T) {
	batch, err := ParseFlushedQueue(dynamic.Null())
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestParseFlushedQueue_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		value cty.Value
	}{
		{"not an array", cty.StringVal("queue")},
		{"too short", queue(ints(1), ints(1))},
		{"length mismatch", queue(ints(1, 2), ints(1), dynamic.Array([]cty.Value{dynamic.Array(nil)}))},
		{"fractional id", queue(dynamic.Array([]cty.Value{cty.NumberFloatVal(1.5)}), ints(0), dynamic.Array([]cty.Value{dynamic.Array(nil)}))},
		{"params not an array", queue(ints(1), ints(0), cty.True)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFlushedQueue(tc.value)
			require.ErrorIs(t, err, ErrMalformedQueue)
		})
	}
}
