// Package storage holds the snapshot codecs: each one loads and commits the
// whole store document against a single backing medium (a JSON file, a
// SQLite or PostgreSQL row, an S3 object, or process memory).
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// Codec persists snapshots. Load returns the last committed snapshot, creating
// and committing an empty one if nothing was stored yet. Commit replaces the
// stored snapshot atomically: after a crash the medium holds either the
// previous or the new document. Both wrap medium failures in
// common.ErrorStorageUnavailable.
type Codec interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Commit(ctx context.Context, s *models.Snapshot) error
	Close() error
}

// Driver names a Codec implementation.
type Driver string

const (
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
	DriverMemory   Driver = "memory"
)

// Options selects and configures a codec.
type Options struct {
	Driver      Driver
	DataFile    string
	SQLitePath  string
	DatabaseDSN string
	S3          S3Config
}

// Open builds the codec named by opts.Driver.
func Open(ctx context.Context, opts Options) (Codec, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileCodec(opts.DataFile)
	case DriverSQLite:
		return NewSQLiteCodec(ctx, opts.SQLitePath)
	case DriverPostgres:
		return NewPostgresCodec(ctx, opts.DatabaseDSN)
	case DriverS3:
		return NewS3Codec(ctx, opts.S3)
	case DriverMemory:
		return NewMemoryCodec(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", common.ErrorInvalidInput, opts.Driver)
	}
}

// unavailable wraps err as a storage failure unless it already is one.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorStorageUnavailable, op, err)
}

// loadOrInit is the shared Load tail: a missing document becomes an empty
// snapshot that is committed right away.
func loadOrInit(ctx context.Context, c Codec, data []byte, found bool) (*models.Snapshot, error) {
	if !found {
		empty := models.EmptySnapshot()
		if err := c.Commit(ctx, empty); err != nil {
			return nil, err
		}
		return empty, nil
	}

	s, err := Decode(data)
	if err != nil {
		return nil, unavailable("decode snapshot", err)
	}
	return s, nil
}
