// Package app contains the host application: it loads configuration, starts
// the engine and callback threads, builds the bridge and drives a script
// session, decoupled from any specific entrypoint like a CLI.
package app
