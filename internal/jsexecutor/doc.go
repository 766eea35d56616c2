// Package jsexecutor runs bridge scripts in-process on the goja engine.
//
// Each executor owns one goja.Runtime, which is not safe for concurrent use.
// The bridge drives it from a single engine goroutine.
package jsexecutor
