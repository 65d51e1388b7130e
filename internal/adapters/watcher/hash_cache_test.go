package watcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ward/internal/adapters/watcher"
)

func TestHashCache_FirstObservationIsAChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cache := watcher.NewHashCache()
	assert.True(t, cache.Changed(path))
}

func TestHashCache_UnchangedContentIsDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cache := watcher.NewHashCache()
	require.True(t, cache.Changed(path))

	// Rewriting identical bytes produces events but no change.
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
	assert.False(t, cache.Changed(path))
}

func TestHashCache_ContentEditIsAChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cache := watcher.NewHashCache()
	require.True(t, cache.Changed(path))

	require.NoError(t, os.WriteFile(path, []byte("world"), 0o600))
	assert.True(t, cache.Changed(path))
}

func TestHashCache_MissingPathIsAChange(t *testing.T) {
	cache := watcher.NewHashCache()
	assert.True(t, cache.Changed(filepath.Join(t.TempDir(), "gone.txt")))
}

func TestHashCache_RemovalIsAChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cache := watcher.NewHashCache()
	require.True(t, cache.Changed(path))

	require.NoError(t, os.Remove(path))
	assert.True(t, cache.Changed(path))

	// Re-creation with the old content is a change again: the removal
	// dropped the entry.
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
	assert.True(t, cache.Changed(path))
}

func TestHashCache_Seed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	cache := watcher.NewHashCache()
	cache.Seed(path)

	assert.False(t, cache.Changed(path))
}

func TestHashCache_DirectoryIsAlwaysAChange(t *testing.T) {
	cache := watcher.NewHashCache()
	dir := t.TempDir()

	assert.True(t, cache.Changed(dir))
	assert.True(t, cache.Changed(dir))
}
