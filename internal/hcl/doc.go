// Package hcl provides the HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing and translating
// HCL blocks into the format-agnostic config.Model.
package hcl
