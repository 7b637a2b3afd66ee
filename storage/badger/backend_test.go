package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.Empty(t, backend.Path())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.DirExists(t, tmpDir)
	assert.Equal(t, tmpDir, backend.Path())
}

func TestOpenBackend_SyncWrites(t *testing.T) {
	backend, err := OpenBackend(t.TempDir(), false, WithSyncWrites(true))
	require.NoError(t, err)
	defer backend.Close()

	medium := NewMedium(backend)
	require.NoError(t, medium.Write(context.Background(), "books", []byte(`{"books":[]}`)))
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	backend, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}
