package recordset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDir_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	dir, err := OpenDir(path)
	require.NoError(t, err)
	require.NotNil(t, dir)
	assert.DirExists(t, path)
}

func TestOpenDir_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenDir(path)
	assert.Error(t, err)
}

func TestDir_WriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	dir, err := OpenDir(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, dir.Write(ctx, "books", []byte(`{"books":[]}`)))
	require.NoError(t, dir.Write(ctx, "books", []byte(`{"books":[{"id":"1"}]}`)))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "books.json", entries[0].Name())

	data, err := dir.Read(ctx, "books")
	require.NoError(t, err)
	assert.JSONEq(t, `{"books":[{"id":"1"}]}`, string(data))
}

func TestDir_ReadMissing(t *testing.T) {
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	data, err := dir.Read(context.Background(), "reviews")
	require.NoError(t, err)
	assert.Nil(t, data)
}
