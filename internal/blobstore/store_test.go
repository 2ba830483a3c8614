package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "runtime/missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "runtime/b.bin", []byte("two")))
	require.NoError(t, s.Put(ctx, "runtime/a.bin", []byte("one")))
	require.NoError(t, s.Put(ctx, "other/c.bin", []byte("three")))

	data, err := s.Get(ctx, "runtime/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	require.NoError(t, s.Put(ctx, "runtime/a.bin", []byte("uno")))
	data, err = s.Get(ctx, "runtime/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), data)

	names, err := s.List(ctx, "runtime/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runtime/a.bin", "runtime/b.bin"}, names)

	require.NoError(t, s.Delete(ctx, "runtime/a.bin"))
	require.NoError(t, s.Delete(ctx, "runtime/a.bin"))
	_, err = s.Get(ctx, "runtime/a.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other/c.bin", "runtime/b.bin"}, names)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", buf))
	buf[0] = 'z'
	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStore(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestLocalStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "k/v", []byte("data")))

	entries, err := os.ReadDir(filepath.Join(dir, "k"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "v", entries[0].Name())
}

func TestLocalStoreRejectsEscapingNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"../x", "/etc/passwd", "", "."} {
		assert.Error(t, s.Put(context.Background(), name, nil), name)
	}
}

func TestLocalStoreCanceled(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "a", nil), context.Canceled)
}
