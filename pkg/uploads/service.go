package uploads

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
	_ "golang.org/x/image/webp" // register decoder
)

const invalidTypeMessage = "Invalid file type. Only JPEG, PNG, and WebP are allowed"

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Result struct {
	FileName  string `json:"fileName"`
	PublicURL string `json:"publicUrl"`
}

type Service struct {
	storage  storage.Storage
	maxBytes int64
	now      func() time.Time
}

func NewService(store storage.Storage, maxBytes int64) *Service {
	return &Service{
		storage:  store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// TooLargeMessage is the error returned for files over the size ceiling.
func (svc *Service) TooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", svc.maxBytes/(1<<20))
}

// UploadCover checks the declared type and size of a cover image, verifies
// the content really is an image of an allowed type, and stores it under a
// fresh name. Nothing reaches storage unless every check passes.
func (svc *Service) UploadCover(ctx context.Context, fh *multipart.FileHeader) (*Result, error) {
	if fh == nil {
		return nil, errcodes.ValidationError("No file provided")
	}

	declared := declaredType(fh)
	if _, ok := allowedTypes[declared]; !ok {
		return nil, errcodes.ValidationError(invalidTypeMessage)
	}
	if fh.Size > svc.maxBytes {
		return nil, errcodes.ValidationError(svc.TooLargeMessage())
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, svc.maxBytes+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if int64(len(data)) > svc.maxBytes {
		return nil, errcodes.ValidationError(svc.TooLargeMessage())
	}

	detected := mimetype.Detect(data).String()
	if _, ok := allowedTypes[detected]; !ok {
		return nil, errcodes.ValidationError(invalidTypeMessage)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, errcodes.ValidationError(invalidTypeMessage)
	}

	name := svc.fileName(fh.Filename, detected)
	url, err := svc.storage.Upload(ctx, name, detected, data)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("cover uploaded", logger.Data{"file_name": name, "size": len(data)})

	return &Result{FileName: name, PublicURL: url}, nil
}

// fileName builds <unix millis>-<random>.<ext>, keeping the original
// extension when it is one of the allowed ones.
func (svc *Service) fileName(original, contentType string) string {
	ext := strings.ToLower(filepath.Ext(original))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = allowedTypes[contentType]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", svc.now().UnixMilli(), suffix, ext)
}

func declaredType(fh *multipart.FileHeader) string {
	raw := fh.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(mediaType)
}
