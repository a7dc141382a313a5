package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// StillSource replays one decoded image file as every frame. Useful on
// hosts without a webcam and for demos against a fixed face.
type StillSource struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	frame image.Image
}

// NewStillSource creates a source for the image at path.
func NewStillSource(path string, logger *slog.Logger) *StillSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StillSource{
		path:   path,
		logger: logger.With("component", "camera", "backend", "still"),
	}
}

// Open decodes the image file.
func (s *StillSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, s.path, err)
	}

	s.mu.Lock()
	s.frame = img
	s.mu.Unlock()

	b := img.Bounds()
	s.logger.Info("still image loaded", "path", s.path, "format", format, "width", b.Dx(), "height", b.Dy())
	return nil
}

// Read returns the decoded image.
func (s *StillSource) Read() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, ErrNotOpen
	}
	return s.frame, nil
}

// Close drops the decoded image.
func (s *StillSource) Close() error {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
	return nil
}

// Name returns "still".
func (s *StillSource) Name() string {
	return string(BackendStill)
}
