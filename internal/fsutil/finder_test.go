package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "nested/c.hcl", "skip.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := CollectFiles([]string{
		dir,
		filepath.Join(dir, "a.hcl"), // already found through dir
		filepath.Join(dir, "skip.toml"),
		filepath.Join(dir, "does-not-exist"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "nested", "c.hcl"),
	}, files)
}

func TestEmptyExtension(t *testing.T) {
	_, err := FindFilesByExtension(t.TempDir(), "")
	require.ErrorIs(t, err, ErrEmptyExtension)
	_, err = CollectFiles(nil, "")
	require.ErrorIs(t, err, ErrEmptyExtension)
}
