package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel()
	assert.Equal(t, ExecutorGoja, m.Executor.Kind)
	assert.Equal(t, DefaultBridgeName, m.Executor.BridgeName)
	assert.Equal(t, DefaultProxyTimeout, m.Executor.Timeout)
	assert.Equal(t, DefaultSettleTimeout, m.SettleTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Model {
		m := NewModel()
		m.Bundle.Path = "index.bundle"
		return m
	}

	testCases := []struct {
		name    string
		mutate  func(*Model)
		wantErr string
	}{
		{"valid", func(*Model) {}, ""},
		{"unknown executor", func(m *Model) { m.Executor.Kind = "v8" }, "unknown executor kind"},
		{"proxy without url", func(m *Model) { m.Executor.Kind = ExecutorProxy }, "requires a url"},
		{"no bundle", func(m *Model) { m.Bundle = Bundle{} }, "bundle requires"},
		{"asset without dir", func(m *Model) { m.Bundle.Asset = "index.bundle" }, "requires asset_dir"},
		{"fetch without url", func(m *Model) { m.Bundle.Fetch = true }, "fetch requires"},
		{"duplicate global", func(m *Model) {
			m.Globals = []*Global{{Name: "a", Value: cty.True}, {Name: "a", Value: cty.False}}
		}, "declared twice"},
		{"profile without output", func(m *Model) { m.Profile = &Profile{Title: "p"} }, "output path"},
		{"negative id", func(m *Model) { m.Calls = []*Call{{Module: -1}} }, "negative id"},
		{"args not a list", func(m *Model) { m.Calls = []*Call{{Args: cty.StringVal("x")}} }, "args"},
		{"args list", func(m *Model) { m.Calls = []*Call{{Args: cty.TupleVal([]cty.Value{cty.True})}} }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := valid()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := NewModel()
	base.Bundle.Path = "a.js"
	base.Globals = []*Global{{Name: "a", Value: cty.True}}

	overlay := &Model{
		Bundle:  Bundle{SourceURL: "http://localhost/b.js"},
		Globals: []*Global{{Name: "b", Value: cty.False}},
		Calls:   []*Call{{Module: 1}},
	}
	base.Merge(overlay)

	assert.Equal(t, "http://localhost/b.js", base.Bundle.SourceURL)
	assert.Empty(t, base.Bundle.Path)
	assert.Len(t, base.Globals, 2)
	assert.Len(t, base.Calls, 1)
	assert.Equal(t, ExecutorGoja, base.Executor.Kind, "unset executor leaves the base alone")
}
