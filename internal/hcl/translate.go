package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/scriptbridge/internal/config"
	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translate converts the blocks of one file into a partial model.
func translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	m := &config.Model{}

	if len(root.Executors) > 1 {
		return nil, fmt.Errorf("only one executor block is allowed per file, found %d", len(root.Executors))
	}
	for _, e := range root.Executors {
		ex, err := translateExecutor(e)
		if err != nil {
			return nil, err
		}
		m.Executor = ex
	}

	for _, b := range root.Bundles {
		m.Bundle = config.Bundle{Path: b.Path, AssetDir: b.AssetDir, Asset: b.Asset, SourceURL: b.SourceURL, Fetch: b.Fetch}
	}

	for _, g := range root.Globals {
		v, err := literal(ctx, g.Value, "global."+g.Name)
		if err != nil {
			return nil, err
		}
		m.Globals = append(m.Globals, &config.Global{Name: g.Name, Value: v})
	}

	for _, p := range root.Profiles {
		m.Profile = &config.Profile{Title: p.Title, Output: p.Output, UploadURL: p.UploadURL}
	}

	for i, c := range root.Calls {
		args, err := literal(ctx, c.Args, fmt.Sprintf("call[%d].args", i))
		if err != nil {
			return nil, err
		}
		m.Calls = append(m.Calls, &config.Call{Module: c.Module, Method: c.Method, Args: args})
	}

	if root.SettleTimeout != nil {
		d, err := time.ParseDuration(*root.SettleTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse settle_timeout: %w", err)
		}
		m.SettleTimeout = d
	}
	return m, nil
}

func translateExecutor(e *executorBlock) (config.Executor, error) {
	ex := config.Executor{
		Kind:               e.Kind,
		BridgeName:         e.BridgeName,
		Runtime:            true,
		URL:                e.URL,
		Namespace:          e.Namespace,
		InsecureSkipVerify: e.InsecureSkipVerify,
	}
	if e.Runtime != nil {
		ex.Runtime = *e.Runtime
	}
	if e.Timeout != nil {
		d, err := time.ParseDuration(*e.Timeout)
		if err != nil {
			return config.Executor{}, fmt.Errorf("failed to parse executor timeout: %w", err)
		}
		ex.Timeout = d
	}
	return ex, nil
}

// literal evaluates an expression without variables or functions. An
// attribute that was not written yields null.
func literal(ctx context.Context, expr hcl.Expression, attrName string) (cty.Value, error) {
	if !isExprDefined(ctx, expr, attrName) {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate %s: %w", attrName, diags)
	}
	return v, nil
}

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}
