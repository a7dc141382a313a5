//go:build cgo

package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

const gocvAvailable = true

// GoCVSource captures from a local webcam through OpenCV.
type GoCVSource struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	webcam *gocv.VideoCapture
	mat    gocv.Mat

	framesRead atomic.Int64
}

func newGoCVSource(cfg Config, logger *slog.Logger) (Source, error) {
	return &GoCVSource{
		cfg:    cfg,
		logger: logger.With("component", "camera", "backend", "gocv"),
	}, nil
}

// Open opens the capture device and applies the resolution hint.
func (s *GoCVSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.webcam != nil {
		return nil
	}

	webcam, err := gocv.OpenVideoCapture(s.cfg.Device)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return fmt.Errorf("%w: device %d did not open", ErrUnavailable, s.cfg.Device)
	}

	// A hint only; drivers may pick the nearest supported mode.
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.Height))

	s.webcam = webcam
	s.mat = gocv.NewMat()

	s.logger.Info("webcam opened",
		"device", s.cfg.Device,
		"width", webcam.Get(gocv.VideoCaptureFrameWidth),
		"height", webcam.Get(gocv.VideoCaptureFrameHeight),
	)
	return nil
}

// Read grabs the next frame and converts it to an image.Image.
func (s *GoCVSource) Read() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.webcam == nil {
		return nil, ErrNotOpen
	}
	if ok := s.webcam.Read(&s.mat); !ok || s.mat.Empty() {
		if !s.webcam.IsOpened() {
			return nil, fmt.Errorf("%w: device %d closed", ErrUnavailable, s.cfg.Device)
		}
		return nil, ErrNoFrame
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera: convert frame: %w", err)
	}
	s.framesRead.Add(1)
	return img, nil
}

// Close releases the device.
func (s *GoCVSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.webcam == nil {
		return nil
	}

	s.mat.Close()
	err := s.webcam.Close()
	s.webcam = nil

	s.logger.Info("webcam released", "frames", s.framesRead.Load())
	return err
}

// Name returns "gocv".
func (s *GoCVSource) Name() string {
	return string(BackendGoCV)
}
