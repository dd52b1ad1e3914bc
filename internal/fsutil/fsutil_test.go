package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.frag", "a.vert", "sub/c.VERT", "sub/readme.md", "z.comp"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	files, err := FindFilesByExtension(root, ".vert", ".frag")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.vert"),
		filepath.Join(root, "b.frag"),
		filepath.Join(root, "sub", "c.VERT"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	require.Error(t, err)
}

func TestFindFilesByExtension_NoExtension(t *testing.T) {
	require.Panics(t, func() { FindFilesByExtension(t.TempDir()) })
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.h")

	changed, err := WriteFileAtomic(path, []byte("one"), 0644)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	changed, err = WriteFileAtomic(path, []byte("one"), 0644)
	require.NoError(t, err)
	assert.False(t, changed, "identical content should not be rewritten")

	changed, err = WriteFileAtomic(path, []byte("two"), 0644)
	require.NoError(t, err)
	assert.True(t, changed)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")
}
