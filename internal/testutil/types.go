package testutil

import "github.com/zclconf/go-cty/cty"

// DeliveredCall is one call observed by a RecordingCallback.
type DeliveredCall struct {
	ModuleID int
	MethodID int
	Args     cty.Value
}

// Invocation is one Invoke observed by a ScriptedExecutor.
type Invocation struct {
	Module string
	Method string
	Args   []cty.Value
}
