package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/filex"
	"github.com/dmitrijs2005/fishtank/internal/server/ids"
)

const defaultImageExt = ".png"

// diskUploads stores uploaded images as flat files under one directory.
type diskUploads struct {
	dir   string
	newID func() string
}

func newDiskUploads(dir string) (*diskUploads, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &diskUploads{dir: abs, newID: ids.NewID}, nil
}

// imageExt keeps a short alphanumeric extension of the client file name.
func imageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return defaultImageExt
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return defaultImageExt
		}
	}
	return ext
}

// Save writes src under a generated name and returns that name.
func (u *diskUploads) Save(src io.Reader, filename string) (_ string, retErr error) {
	name := u.newID() + imageExt(filename)

	tmp, err := os.CreateTemp(u.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(u.dir, name)); err != nil {
		return "", fmt.Errorf("rename upload: %w", err)
	}
	return name, nil
}

func (u *diskUploads) Remove(name string) error {
	return os.Remove(filepath.Join(u.dir, filepath.Base(name)))
}

// fileServer serves stored images. Directory listings are not exposed.
func (u *diskUploads) fileServer() http.Handler {
	fs := http.FileServer(http.Dir(u.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") || strings.HasPrefix(filepath.Base(r.URL.Path), ".") {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		fs.ServeHTTP(w, r)
	})
}
