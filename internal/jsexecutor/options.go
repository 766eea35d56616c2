package jsexecutor

import (
	_ "embed"
)

// DefaultBridgeName is the global object the BatchedBridge module resolves to.
const DefaultBridgeName = "__fbBatchedBridge"

// BridgeModule is the module name the bridge uses for its entry points.
const BridgeModule = "BatchedBridge"

//go:embed runtime.js
var runtimeSource []byte

// RuntimeSource returns the embedded batched bridge runtime.
func RuntimeSource() []byte {
	return runtimeSource
}

type options struct {
	bridgeName  string
	withRuntime bool
}

// Option configures executors created by a Factory.
type Option func(*options)

// WithBridgeName sets the global object name that backs the BatchedBridge module.
func WithBridgeName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.bridgeName = name
		}
	}
}

// WithRuntime preloads the embedded batched bridge runtime into every new executor.
func WithRuntime() Option {
	return func(o *options) { o.withRuntime = true }
}
