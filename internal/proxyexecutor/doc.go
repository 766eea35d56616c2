// Package proxyexecutor drives a script engine running in another process,
// typically a debugger host, over socket.io.
//
// Every operation is a CBOR encoded wire.Request emitted on the "request"
// event. The remote side answers with a wire.Reply on the "reply" event
// carrying the same id. Requests are correlated by id so replies may arrive in
// any order.
package proxyexecutor
