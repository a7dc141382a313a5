package session

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/frame"
)

// DefaultInterval is the pause between polls (about 10 per second).
const DefaultInterval = 100 * time.Millisecond

// DefaultFrameTimeout is how long a device may go without delivering a
// frame before the session reports it as unavailable.
const DefaultFrameTimeout = time.Second

// SourceFactory builds a frame source for a capture config.
type SourceFactory func(cfg camera.Config, logger *slog.Logger) (camera.Source, error)

// Config holds controller configuration.
type Config struct {
	// Interval is the pause after each poll before the next one.
	Interval time.Duration

	// FrameTimeout bounds consecutive polls without a frame.
	FrameTimeout time.Duration

	// NewSource creates the device for each Start. Default: camera.NewSource.
	NewSource SourceFactory

	// OnChange receives a snapshot after every state change.
	OnChange func(State)

	// OnFrame receives each encoded live frame, for previews.
	OnFrame func(*frame.Payload)

	// Now is the clock used for timestamps and throughput.
	Now func() time.Time

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Option configures the controller.
type Option func(*Config)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.Interval = d }
}

// WithFrameTimeout sets how long a silent device is tolerated.
func WithFrameTimeout(d time.Duration) Option {
	return func(c *Config) { c.FrameTimeout = d }
}

// WithSourceFactory overrides how devices are created.
func WithSourceFactory(f SourceFactory) Option {
	return func(c *Config) { c.NewSource = f }
}

// WithOnChange registers a state-change callback.
func WithOnChange(fn func(State)) Option {
	return func(c *Config) { c.OnChange = fn }
}

// WithOnFrame registers a frame callback.
func WithOnFrame(fn func(*frame.Payload)) Option {
	return func(c *Config) { c.OnFrame = fn }
}

// WithClock sets the clock.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Now = now }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns the controller defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:     DefaultInterval,
		FrameTimeout: DefaultFrameTimeout,
		NewSource:    camera.NewSource,
		Now:          time.Now,
		Logger:       slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
