// Package storage is the file-storage collaborator: it takes a
// multipart upload, checks its declared kind, and writes it under the
// upload directory, handing back the stored path and media type.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
)

// Subdirectories per upload kind.
const (
	KindPost    = "posts"
	KindStory   = "stories"
	KindProfile = "profiles"
	KindMessage = "messages"
)

const maxUploadSize = 50 << 20 // 50 MB

// Uploader stores multipart uploads on local disk
type Uploader struct {
	baseDir string
}

// NewUploader creates an Uploader rooted at baseDir, creating the
// per-kind subdirectories if needed
func NewUploader(baseDir string) (*Uploader, error) {
	for _, kind := range []string{KindPost, KindStory, KindProfile, KindMessage} {
		if err := os.MkdirAll(filepath.Join(baseDir, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &Uploader{baseDir: baseDir}, nil
}

// Save validates the upload's declared MIME type against the allowed
// media types and writes the file under <baseDir>/<kind>/. Returns the
// stored path (relative, URL-style) and the resolved media type.
func (u *Uploader) Save(file *multipart.FileHeader, kind string, allowed ...models.MediaType) (string, models.MediaType, error) {
	if file.Size > maxUploadSize {
		return "", "", fmt.Errorf("file exceeds the %d byte upload limit", maxUploadSize)
	}

	mediaType, err := models.MediaTypeFromMIME(file.Header.Get("Content-Type"), allowed...)
	if err != nil {
		return "", "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(u.baseDir, kind, name))
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", err
	}

	return "/uploads/" + kind + "/" + name, mediaType, nil
}
