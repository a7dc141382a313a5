package frame

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// MaxUploadBytes bounds a single uploaded image.
const MaxUploadBytes = 32 << 20

// Sentinel errors.
var (
	ErrEmptyUpload    = errors.New("frame: empty upload")
	ErrUploadTooLarge = errors.New("frame: upload too large")
)

// Upload is a user-selected image forwarded byte-for-byte.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewUpload reads r fully. The bytes are never re-encoded; the content
// type is sniffed only to label the multipart part.
func NewUpload(name string, r io.Reader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("frame: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	if name == "" {
		name = "upload"
	}
	return &Upload{
		Name:        filepath.Base(name),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// OpenUpload reads an image file from disk.
func OpenUpload(path string) (*Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frame: open upload: %w", err)
	}
	defer f.Close()
	return NewUpload(path, f)
}

// IsImage reports whether the sniffed content type is an image.
func (u *Upload) IsImage() bool {
	return len(u.ContentType) > 6 && u.ContentType[:6] == "image/"
}
