// Package dynamic holds the helpers around cty.Value, the JSON-like value tree
// that every payload crossing the bridge is represented with.
//
// Only a subset of cty is meaningful on the wire: null, bool, number, string,
// tuples and lists (arrays), objects and maps. Sets, capsules and unknown
// values are rejected wherever a closed mapping is required.
package dynamic
