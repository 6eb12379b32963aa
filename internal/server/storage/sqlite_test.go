package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCodec_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "fishtank.db")

	c, err := NewSQLiteCodec(ctx, path)
	require.NoError(t, err)

	s, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(models.EmptySnapshot(), s))

	want := sampleSnapshot()
	require.NoError(t, c.Commit(ctx, want))
	require.NoError(t, c.Commit(ctx, want), "second commit must upsert the same row")
	require.NoError(t, c.Close())

	reopened, err := NewSQLiteCodec(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))

	var rows int
	require.NoError(t, reopened.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
