package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt", "nested/c.hcl", "nested/d.yaml"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(""), 0o644))
	}

	// --- Act ---
	files, err := FindFiles([]string{root, filepath.Join(root, "a.hcl")}, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)
}

func TestFindFiles_MultipleExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "c.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	files, err := FindFiles([]string{root}, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindFiles_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := FindFiles([]string{filepath.Join(t.TempDir(), "nope.hcl")}, ".hcl")
	require.Error(t, err)
}
