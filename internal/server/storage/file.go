package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/fishtank/internal/filex"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

const defaultDataFile = "data/data.json"

// FileCodec keeps the document in a single JSON file.
type FileCodec struct {
	path string
}

func NewFileCodec(path string) (*FileCodec, error) {
	if path == "" {
		path = defaultDataFile
	}
	dir, err := filex.EnsureDir(filepath.Dir(path))
	if err != nil {
		return nil, unavailable("create data dir", err)
	}
	return &FileCodec{path: filepath.Join(dir, filepath.Base(path))}, nil
}

func (c *FileCodec) Path() string { return c.path }

func (c *FileCodec) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return loadOrInit(ctx, c, nil, false)
	}
	if err != nil {
		return nil, unavailable("read "+c.path, err)
	}
	return loadOrInit(ctx, c, data, true)
}

func (c *FileCodec) Commit(_ context.Context, s *models.Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return unavailable("encode", err)
	}
	return unavailable("write "+c.path, filex.WriteFileAtomic(c.path, data, 0o600))
}

func (c *FileCodec) Close() error { return nil }
