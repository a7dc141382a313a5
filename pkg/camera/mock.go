package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
)

// MockSource is a frame source for testing.
// It produces a solid gray frame at the configured size.
type MockSource struct {
	cfg Config

	mu      sync.Mutex
	open    bool
	frame   image.Image
	openErr error
	readErr error

	opens  atomic.Int64
	closes atomic.Int64
	reads  atomic.Int64
}

// MockOption configures a MockSource.
type MockOption func(*MockSource)

// WithOpenError makes Open fail with err.
func WithOpenError(err error) MockOption {
	return func(m *MockSource) {
		m.openErr = err
	}
}

// WithReadError makes Read fail with err.
func WithReadError(err error) MockOption {
	return func(m *MockSource) {
		m.readErr = err
	}
}

// WithFrame sets the frame returned by Read.
func WithFrame(img image.Image) MockOption {
	return func(m *MockSource) {
		m.frame = img
	}
}

// NewMockSource creates a mock source.
func NewMockSource(cfg Config, opts ...MockOption) *MockSource {
	m := &MockSource{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.frame == nil {
		m.frame = solidFrame(cfg.Width, cfg.Height, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	}
	return m
}

func solidFrame(w, h int, c color.Color) image.Image {
	if w <= 0 || h <= 0 {
		w, h = 640, 480
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Open marks the source open, or returns the configured open error.
func (m *MockSource) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	m.opens.Add(1)
	return nil
}

// Read returns the mock frame.
func (m *MockSource) Read() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil, ErrNotOpen
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.reads.Add(1)
	return m.frame, nil
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		m.open = false
		m.closes.Add(1)
	}
	return nil
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return string(BackendMock)
}

// IsOpen reports whether the device is currently held.
func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Stats returns the mock's counters.
func (m *MockSource) Stats() Stats {
	return Stats{
		FramesRead: m.reads.Load(),
		Opens:      m.opens.Load(),
		Closes:     m.closes.Load(),
	}
}
