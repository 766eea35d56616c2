package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/zclconf/go-cty/cty"
)

// Executor kinds.
const (
	ExecutorGoja  = "goja"
	ExecutorProxy = "proxy"
)

// Defaults applied by Normalize.
const (
	DefaultBridgeName    = "__fbBatchedBridge"
	DefaultProxyTimeout  = 30 * time.Second
	DefaultSettleTimeout = 5 * time.Second
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Executor      Executor
	Bundle        Bundle
	Globals       []*Global
	Profile       *Profile
	Calls         []*Call
	SettleTimeout time.Duration
}

// Executor selects and configures the script engine. Runtime preloads the
// embedded batched bridge runtime into an in-process engine.
type Executor struct {
	Kind               string
	BridgeName         string
	Runtime            bool
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Bundle says where the application script comes from. Exactly one of
// Asset, SourceURL or Path drives loading, in that order of precedence.
// With Fetch set, SourceURL is downloaded into Path when Path is missing.
type Bundle struct {
	Path      string
	AssetDir  string
	Asset     string
	SourceURL string
	Fetch     bool
}

// Global is a value installed in the script's global scope before the
// bundle runs.
type Global struct {
	Name  string
	Value cty.Value
}

// Profile asks for the bundle load and startup calls to be profiled. A set
// UploadURL receives the written profile with an HTTP PUT.
type Profile struct {
	Title     string
	Output    string
	UploadURL string
}

// Call is a host-to-script call made once the bundle is loaded.
type Call struct {
	Module int
	Method int
	Args   cty.Value
}

// NewModel returns an empty model with defaults applied.
func NewModel() *Model {
	m := &Model{Executor: Executor{Runtime: true}}
	m.Normalize()
	return m
}

// Normalize fills in defaults for unset fields.
func (m *Model) Normalize() {
	if m.Executor.Kind == "" {
		m.Executor.Kind = ExecutorGoja
	}
	if m.Executor.BridgeName == "" {
		m.Executor.BridgeName = DefaultBridgeName
	}
	if m.Executor.Timeout <= 0 {
		m.Executor.Timeout = DefaultProxyTimeout
	}
	if m.SettleTimeout <= 0 {
		m.SettleTimeout = DefaultSettleTimeout
	}
}

// Validate reports the first inconsistency in the model.
func (m *Model) Validate() error {
	switch m.Executor.Kind {
	case ExecutorGoja:
	case ExecutorProxy:
		if m.Executor.URL == "" {
			return fmt.Errorf("%w: proxy executor requires a url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown executor kind %q", ErrInvalid, m.Executor.Kind)
	}
	if m.Bundle.Asset == "" && m.Bundle.SourceURL == "" && m.Bundle.Path == "" {
		return fmt.Errorf("%w: bundle requires one of path, asset or source_url", ErrInvalid)
	}
	if m.Bundle.Asset != "" && m.Bundle.AssetDir == "" {
		return fmt.Errorf("%w: bundle asset %q requires asset_dir", ErrInvalid, m.Bundle.Asset)
	}
	if m.Bundle.Fetch && (m.Bundle.SourceURL == "" || m.Bundle.Path == "") {
		return fmt.Errorf("%w: bundle fetch requires source_url and path", ErrInvalid)
	}
	seen := make(map[string]struct{}, len(m.Globals))
	for _, g := range m.Globals {
		if g.Name == "" {
			return fmt.Errorf("%w: global without a name", ErrInvalid)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("%w: global %q declared twice", ErrInvalid, g.Name)
		}
		seen[g.Name] = struct{}{}
	}
	if m.Profile != nil && m.Profile.Output == "" {
		return fmt.Errorf("%w: profile requires an output path", ErrInvalid)
	}
	for i, c := range m.Calls {
		if c.Module < 0 || c.Method < 0 {
			return fmt.Errorf("%w: call %d has a negative id", ErrInvalid, i)
		}
		if dynamic.IsNull(c.Args) {
			continue
		}
		if _, err := dynamic.Elements(c.Args); err != nil {
			return fmt.Errorf("%w: call %d args: %w", ErrInvalid, i, err)
		}
	}
	return nil
}

// Merge overlays other onto m. Scalars set in other win; lists append.
func (m *Model) Merge(other *Model) {
	if other.Executor.Kind != "" {
		m.Executor = other.Executor
	}
	if other.Bundle != (Bundle{}) {
		m.Bundle = other.Bundle
	}
	m.Globals = append(m.Globals, other.Globals...)
	if other.Profile != nil {
		m.Profile = other.Profile
	}
	m.Calls = append(m.Calls, other.Calls...)
	if other.SettleTimeout > 0 {
		m.SettleTimeout = other.SettleTimeout
	}
}
