package camera

import (
	"context"
	"errors"
	"image"
)

// Sentinel errors.
var (
	ErrUnavailable = errors.New("camera: device unavailable")
	ErrNotOpen     = errors.New("camera: source not open")
	ErrNoFrame     = errors.New("camera: no frame available")
)

// Source is a frame producer owned by exactly one capture session.
type Source interface {
	// Open acquires the device. Errors wrap ErrUnavailable.
	Open(ctx context.Context) error

	// Read returns the most recent frame at the device's native size.
	// Returns ErrNotOpen after Close and ErrNoFrame while the device has
	// not produced a frame yet.
	Read() (image.Image, error)

	// Close releases the device. It is safe to call Close multiple times.
	Close() error

	// Name returns the backend name (e.g. "gocv", "still", "mock").
	Name() string
}

// Stats reports frame counters for a source.
type Stats struct {
	FramesRead int64 `json:"frames_read"`
	Opens      int64 `json:"opens"`
	Closes     int64 `json:"closes"`
}
