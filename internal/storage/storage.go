// storage.go
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"opt-shop/internal/apperror"
	"opt-shop/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxFileSize = 5 << 20
	MaxFiles    = 10

	// PublicPrefix is the static route local files are served under.
	PublicPrefix = "/images/"
)

var (
	ErrNotAnImage   = apperror.New(apperror.KindValidation, "NOT_AN_IMAGE", "only images are allowed")
	ErrFileTooLarge = apperror.New(apperror.KindValidation, "FILE_TOO_LARGE", "file exceeds the 5MB limit")
	ErrTooManyFiles = apperror.New(apperror.KindValidation, "TOO_MANY_FILES", "at most 10 files per upload")
	ErrNoFile       = apperror.New(apperror.KindValidation, "NO_FILE", "no file uploaded")
)

// allowedTypes excludes SVG, which can carry script.
var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Backend persists one object and returns the path or URL clients use to
// fetch it.
type Backend interface {
	Put(ctx context.Context, name, contentType string, body io.ReadSeeker, size int64) (string, error)
}

type StoredFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Uploader validates multipart images and hands them to a Backend.
type Uploader struct {
	backend Backend
}

func NewUploader(backend Backend) *Uploader {
	return &Uploader{backend: backend}
}

// NewBackend picks S3 when it is configured and the local upload directory
// otherwise.
func NewBackend(cfg config.UploadConfig) (Backend, error) {
	if cfg.UseS3() {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.Dir), nil
}

// Store saves a single image. field prefixes the generated file name.
func (u *Uploader) Store(ctx context.Context, field string, fh *multipart.FileHeader) (*StoredFile, error) {
	if fh.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, ErrNotAnImage.Withf("only jpeg, png, gif and webp images are allowed, got %s", mtype.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fh.Filename))
	}
	name := fmt.Sprintf("%s-%s%s", field, uuid.NewString(), ext)

	path, err := u.backend.Put(ctx, name, mtype.String(), f, fh.Size)
	if err != nil {
		return nil, err
	}
	return &StoredFile{Filename: name, Path: path}, nil
}

// StoreAll validates the count first so nothing is written for an oversized
// batch. Files stored before a failing one are kept.
func (u *Uploader) StoreAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]*StoredFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}
	out := make([]*StoredFile, 0, len(files))
	for _, fh := range files {
		stored, err := u.Store(ctx, field, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}
