package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/backend"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		name string
		ok   bool
	}{
		{"https://x.supabase.co/storage/v1/object/public/book-covers/1712-abc.png", "1712-abc.png", true},
		{"https://x.supabase.co/storage/v1/object/public/book-covers/1712-abc.png?t=1", "1712-abc.png", true},
		{"https://x.supabase.co/storage/v1/object/public/avatars/a.png", "", false},
		{"https://images.example.com/bumi.jpg", "", false},
		{"https://x.supabase.co/storage/v1/object/public/book-covers/", "", false},
		{"https://x.supabase.co/storage/v1/object/public/book-covers/../secret", "", false},
	}
	for _, tt := range tests {
		name, ok := objectName(tt.url, "book-covers")
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.name, name, tt.url)
	}
}

func TestBackendStorage_Upload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/book-covers/1-a.png", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "max-age=3600", r.Header.Get("Cache-Control"))
		assert.Equal(t, "false", r.Header.Get("X-Upsert"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))
		_, _ = w.Write([]byte(`{"Key":"book-covers/1-a.png"}`))
	}))
	defer srv.Close()

	s := NewBackendStorage(backend.NewClient(srv.URL, "service", time.Second), "book-covers")
	url, err := s.Upload(context.Background(), "1-a.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/book-covers/1-a.png", url)

	name, ok := s.ObjectName(url)
	assert.True(t, ok)
	assert.Equal(t, "1-a.png", name)
}

func TestBackendStorage_UploadError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	s := NewBackendStorage(backend.NewClient(srv.URL, "service", time.Second), "book-covers")
	_, err := s.Upload(context.Background(), "1-a.png", "image/png", []byte("x"))
	require.Error(t, err)

	var e *errcodes.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadGateway, e.HTTPCode)
	assert.Equal(t, "The resource already exists", e.Message)
}

func TestBackendStorage_Delete(t *testing.T) {
	t.Parallel()

	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewBackendStorage(backend.NewClient(srv.URL, "service", time.Second), "book-covers")
	require.NoError(t, s.Delete(context.Background(), "1-a.png"))
	assert.Equal(t, "/storage/v1/object/book-covers/1-a.png", deleted)
}

func TestLocalStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://127.0.0.1:3689", "book-covers")

	url, err := s.Upload(ctx, "1-a.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3689/storage/v1/object/public/book-covers/1-a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "book-covers", "1-a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = s.Upload(ctx, "1-a.png", "image/png", []byte("other"))
	assert.Error(t, err)

	name, ok := s.ObjectName(url)
	require.True(t, ok)
	require.NoError(t, s.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(dir, "book-covers", "1-a.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	require.NoError(t, s.Delete(ctx, name))
}
