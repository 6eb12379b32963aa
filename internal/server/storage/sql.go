package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/dbx"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// snapshotRowID is the primary key of the single row holding the document.
const snapshotRowID = 1

const (
	selectSnapshotQuery = `SELECT payload FROM snapshots WHERE id = ?`
	upsertSnapshotQuery = `INSERT INTO snapshots (id, version, payload, committed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			committed_at = excluded.committed_at`
)

// sqlCodec stores the document in one row of a snapshots table. The SQLite
// and PostgreSQL codecs differ only in how they open the database and
// create the table.
type sqlCodec struct {
	db          *sql.DB
	placeholder dbx.Placeholder
	now         func() time.Time
}

func (c *sqlCodec) Load(ctx context.Context) (*models.Snapshot, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx, dbx.Rebind(c.placeholder, selectSnapshotQuery), snapshotRowID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return loadOrInit(ctx, c, nil, false)
	}
	if err != nil {
		return nil, unavailable("select snapshot", err)
	}
	return loadOrInit(ctx, c, payload, true)
}

func (c *sqlCodec) Commit(ctx context.Context, s *models.Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return unavailable("encode", err)
	}

	err = dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, dbx.Rebind(c.placeholder, upsertSnapshotQuery),
			snapshotRowID, DocumentVersion, string(data), c.now().UTC())
		return err
	})
	return unavailable("upsert snapshot", err)
}

func (c *sqlCodec) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle for tests and diagnostics.
func (c *sqlCodec) DB() *sql.DB { return c.db }
