package storage

import (
	"context"
	"net/url"
	"strings"

	"github.com/rakbuku/rakbuku/pkg/backend"
	"github.com/rakbuku/rakbuku/pkg/config"
)

// PublicPathPrefix is the path under which objects are publicly readable, both
// on the hosted backend and on the local driver.
const PublicPathPrefix = "/storage/v1/object/public/"

// Storage stores cover images.
type Storage interface {
	// Upload stores data under name and returns its public URL. Existing
	// objects are never overwritten.
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
	// ObjectName returns the object name of a public URL, and whether the URL
	// points into this storage's bucket at all.
	ObjectName(publicURL string) (string, bool)
}

// New builds the storage driver selected by the config.
func New(cfg *config.Config) Storage {
	if cfg.StorageDriver == config.StorageDriverLocal {
		return NewLocalStorage(cfg.StorageDir, cfg.BackendURL, cfg.StorageBucket)
	}
	client := backend.NewClient(cfg.BackendURL, cfg.StorageKey(), cfg.HTTPClientTimeout)
	return NewBackendStorage(client, cfg.StorageBucket)
}

func publicURL(baseURL, bucket, name string) string {
	return strings.TrimRight(baseURL, "/") + PublicPathPrefix + bucket + "/" + name
}

// objectName extracts the object name following the bucket's public path
// marker. Query strings (cache busters) are dropped.
func objectName(publicURL, bucket string) (string, bool) {
	marker := PublicPathPrefix + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", false
	}
	name := publicURL[idx+len(marker):]
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}
