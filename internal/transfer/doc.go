// Package transfer moves bundles and profiles over HTTP: it downloads a
// bundle from its source URL into the local cache file and uploads written
// profiles to pre-signed URLs.
package transfer
