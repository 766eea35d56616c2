// Package bridge connects a host application to a script executor.
//
// A Bridge owns one executor. Host code calls into the script through fixed
// entry points of the BatchedBridge module; every call returns the queue of
// script-to-host calls the script made meanwhile. That queue is parsed into a
// CallBatch and handed to the Dispatcher, which posts it to the host's
// callback thread. The Dispatcher only holds weak handles to the callback sink
// and the thread. If either is gone when it is needed, the batch is dropped
// with a warning.
//
// Bridge methods are not safe for concurrent use. They are meant to be called
// from the goroutine that owns the engine, which serializes them.
package bridge
