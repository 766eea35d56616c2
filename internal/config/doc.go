// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from files.
//
// The config.Model is the single source of truth for the app package.
// Concrete loaders for HCL and TOML are provided in separate packages.
package config
