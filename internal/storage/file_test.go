package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, s.Put(ctx, DefaultKey, []byte(`{"a":1}`)))
	require.NoError(t, s.Put(ctx, DefaultKey, []byte(`{"a":2}`)))
	got, err = s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	require.Equal(t, `{"a":2}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, DefaultKey+".json", entries[0].Name())
}

func TestFileStoreBacksAdapter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	a := NewAdapter(s)
	require.NoError(t, a.Save(ctx, sample()))
	snap, ok := NewAdapter(s).Load(ctx)
	require.True(t, ok)
	require.Equal(t, sample(), snap)
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreFailedRenameLeavesNoTemp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	// A non-empty directory where the value file belongs makes the rename fail.
	target := filepath.Join(dir, "k.json")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

	require.Error(t, s.Put(ctx, "k", []byte("v")))
	_, err = os.Stat(target + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind: %v", err)
}
