// Package storage keeps uploaded media for the mock backend.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivansh-Raheja/admin-panel/internal/shared/slug"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

// PutResult is where an upload landed. URL is what the backend stores on
// the record: a path relative to the API base for local files, an
// absolute URL for object storage.
type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

var allowedExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true, ".svg": true,
	".pdf": true, ".doc": true, ".docx": true,
	".glb": true, ".gltf": true,
}

// safeExt returns the lower-cased extension of filename if uploads of that
// type are accepted.
func safeExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// objectKey names a stored file after its original name so keys stay
// readable; the uuid keeps them unique.
func objectKey(filename, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return slug.FromName(stem, "file") + "-" + uuid.NewString() + ext
}
