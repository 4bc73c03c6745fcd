package storage

import (
	"bytes"
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/backend"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
)

// BackendStorage stores objects in a bucket of the hosted backend's storage
// API.
type BackendStorage struct {
	client *backend.Client
	bucket string
}

func NewBackendStorage(client *backend.Client, bucket string) *BackendStorage {
	return &BackendStorage{client, bucket}
}

func (s *BackendStorage) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	err := s.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/storage/v1/object/" + s.bucket + "/" + name,
		Header: http.Header{
			"Cache-Control": []string{"max-age=3600"},
			"X-Upsert":      []string{"false"},
		},
		Body:        bytes.NewReader(data),
		ContentType: contentType,
	}, nil)
	if err != nil {
		return "", upstreamError(err)
	}
	return publicURL(s.client.URL(""), s.bucket, name), nil
}

func (s *BackendStorage) Delete(ctx context.Context, name string) error {
	err := s.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   "/storage/v1/object/" + s.bucket + "/" + name,
	}, nil)
	if err != nil {
		return upstreamError(err)
	}
	return nil
}

func (s *BackendStorage) ObjectName(publicURL string) (string, bool) {
	return objectName(publicURL, s.bucket)
}

func upstreamError(err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return errors.WithStack(errcodes.Upstream(apiErr.Message))
	}
	return err
}
