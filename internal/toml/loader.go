// Package toml provides a TOML implementation of the config.Loader interface
// for hosts that prefer a flat manifest over HCL blocks.
package toml

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/scriptbridge/internal/config"
	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/fsutil"
)

// Extension is the file extension the loader picks up.
const Extension = ".toml"

// manifest mirrors one TOML file.
type manifest struct {
	SettleTimeout string         `toml:"settle_timeout"`
	Executor      *executorTable `toml:"executor"`
	Bundle        *bundleTable   `toml:"bundle"`
	Globals       map[string]any `toml:"globals"`
	Profile       *profileTable  `toml:"profile"`
	Calls         []callTable    `toml:"call"`
}

type executorTable struct {
	Kind               string `toml:"kind"`
	BridgeName         string `toml:"bridge_name"`
	Runtime            *bool  `toml:"runtime"`
	URL                string `toml:"url"`
	Namespace          string `toml:"namespace"`
	Timeout            string `toml:"timeout"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type bundleTable struct {
	Path      string `toml:"path"`
	AssetDir  string `toml:"asset_dir"`
	Asset     string `toml:"asset"`
	SourceURL string `toml:"source_url"`
	Fetch     bool   `toml:"fetch"`
}

type profileTable struct {
	Title     string `toml:"title"`
	Output    string `toml:"output"`
	UploadURL string `toml:"upload_url"`
}

type callTable struct {
	Module int   `toml:"module"`
	Method int   `toml:"method"`
	Args   []any `toml:"args"`
}

// Loader reads .toml configuration files.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new TOML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes every .toml file under paths and merges them in order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered TOML files.", "count", len(files))

	model := config.NewModel()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", file, err)
		}
		var m manifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", file, err)
		}
		part, err := translate(&m)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration in %s: %w", file, err)
		}
		model.Merge(part)
	}

	model.Normalize()
	logger.Debug("TOML loading complete.", "executor", model.Executor.Kind, "globals", len(model.Globals), "calls", len(model.Calls))
	return model, nil
}

func translate(m *manifest) (*config.Model, error) {
	out := &config.Model{}

	if m.SettleTimeout != "" {
		d, err := time.ParseDuration(m.SettleTimeout)
		if err != nil {
			return nil, fmt.Errorf("settle_timeout: %w", err)
		}
		out.SettleTimeout = d
	}

	if e := m.Executor; e != nil {
		out.Executor = config.Executor{
			Kind:               e.Kind,
			BridgeName:         e.BridgeName,
			Runtime:            true,
			URL:                e.URL,
			Namespace:          e.Namespace,
			InsecureSkipVerify: e.InsecureSkipVerify,
		}
		if out.Executor.Kind == "" {
			out.Executor.Kind = config.ExecutorGoja
		}
		if e.Runtime != nil {
			out.Executor.Runtime = *e.Runtime
		}
		if e.Timeout != "" {
			d, err := time.ParseDuration(e.Timeout)
			if err != nil {
				return nil, fmt.Errorf("executor timeout: %w", err)
			}
			out.Executor.Timeout = d
		}
	}

	if b := m.Bundle; b != nil {
		out.Bundle = config.Bundle{Path: b.Path, AssetDir: b.AssetDir, Asset: b.Asset, SourceURL: b.SourceURL, Fetch: b.Fetch}
	}

	names := make([]string, 0, len(m.Globals))
	for name := range m.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := dynamic.FromGo(m.Globals[name])
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
		out.Globals = append(out.Globals, &config.Global{Name: name, Value: v})
	}

	if p := m.Profile; p != nil {
		out.Profile = &config.Profile{Title: p.Title, Output: p.Output, UploadURL: p.UploadURL}
	}

	for i, c := range m.Calls {
		call := &config.Call{Module: c.Module, Method: c.Method, Args: dynamic.Null()}
		if c.Args != nil {
			v, err := dynamic.FromGo(c.Args)
			if err != nil {
				return nil, fmt.Errorf("call %d args: %w", i, err)
			}
			call.Args = v
		}
		out.Calls = append(out.Calls, call)
	}
	return out, nil
}
