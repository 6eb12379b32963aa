package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCodec_LoadCreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "data.json")
	c, err := NewFileCodec(path)
	require.NoError(t, err)

	s, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(models.EmptySnapshot(), s))

	data, err := os.ReadFile(path)
	require.NoError(t, err, "empty snapshot must be persisted on first load")
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got.Fish)
}

func TestFileCodec_CommitThenFreshLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	c, err := NewFileCodec(path)
	require.NoError(t, err)
	_, err = c.Load(ctx)
	require.NoError(t, err)

	want := sampleSnapshot()
	require.NoError(t, c.Commit(ctx, want))

	fresh, err := NewFileCodec(path)
	require.NoError(t, err)
	got, err := fresh.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestFileCodec_CorruptFileIsStorageUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	c, err := NewFileCodec(path)
	require.NoError(t, err)

	_, err = c.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrorStorageUnavailable)
}

func TestFileCodec_CommitFailureKeepsPreviousDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	c, err := NewFileCodec(path)
	require.NoError(t, err)
	require.NoError(t, c.Commit(ctx, sampleSnapshot()))

	// A directory squatting on the target path makes the rename fail.
	blocked := &FileCodec{path: filepath.Join(dir, "sub")}
	require.NoError(t, os.Mkdir(blocked.path, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(blocked.path, "keep"), []byte("x"), 0o600))

	err = blocked.Commit(ctx, models.EmptySnapshot())
	assert.ErrorIs(t, err, common.ErrorStorageUnavailable)

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Fish, 2)
}

func TestNewFileCodec_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := NewFileCodec("")
	require.NoError(t, err)
	assert.Equal(t, "data.json", filepath.Base(c.Path()))
}
