package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/dbx"
	"github.com/dmitrijs2005/fishtank/internal/filex"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultSQLitePath = "data/fishtank.db"

const createSQLiteTable = `CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	payload TEXT NOT NULL,
	committed_at TIMESTAMP NOT NULL
)`

// SQLiteCodec keeps the document in a single-row SQLite table.
type SQLiteCodec struct {
	sqlCodec
	path string
}

func NewSQLiteCodec(ctx context.Context, path string) (*SQLiteCodec, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, unavailable("create sqlite dir", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	// One writer at a time; the serializer already guarantees it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createSQLiteTable); err != nil {
		_ = db.Close()
		return nil, unavailable("create snapshots table", err)
	}

	return &SQLiteCodec{
		sqlCodec: sqlCodec{db: db, placeholder: dbx.Question, now: time.Now},
		path:     path,
	}, nil
}

func (c *SQLiteCodec) Path() string { return c.path }
