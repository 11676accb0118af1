package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("api.base_url", "http://localhost:5000/api")
	require.NoError(t, err)

	val, ok := store.Get("api.base_url")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:5000/api", val)
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("api.base_url", "http://example.test/api")
	require.NoError(t, err)

	assert.Equal(t, "http://example.test/api", store.GetString("api.base_url"))

	// Non-existent key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("poll.interval_seconds", 3))
	assert.Equal(t, "", store.GetString("poll.interval_seconds"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("poll.interval_seconds", 3))
	assert.Equal(t, 3, store.GetInt("poll.interval_seconds"))

	assert.Equal(t, 0, store.GetInt("nonexistent"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("upload.max_bytes", 1024))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1024, reloaded.GetInt("upload.max_bytes"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://h/api\"\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "http://h/api", store.GetString("api.base_url"))
}
