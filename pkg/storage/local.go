package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
)

// LocalStorage keeps objects on disk under <dir>/<bucket>. The server exposes
// them on the same public path layout as the hosted backend.
type LocalStorage struct {
	dir     string
	baseURL string
	bucket  string
}

func NewLocalStorage(dir, baseURL, bucket string) *LocalStorage {
	return &LocalStorage{dir, baseURL, bucket}
}

// Root is the directory holding the bucket's objects.
func (s *LocalStorage) Root() string {
	return filepath.Join(s.dir, s.bucket)
}

func (s *LocalStorage) Bucket() string {
	return s.bucket
}

func (s *LocalStorage) Upload(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Root(), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create storage directory")
	}

	// O_EXCL keeps uploads from replacing an existing object.
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", errcodes.Upstream("The resource already exists")
		}
		return "", errors.WithStack(err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", errors.WithStack(err)
	}
	return publicURL(s.baseURL, s.bucket, name), nil
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

func (s *LocalStorage) ObjectName(publicURL string) (string, bool) {
	return objectName(publicURL, s.bucket)
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.Root(), filepath.Base(name))
}
