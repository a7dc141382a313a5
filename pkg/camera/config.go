// Package camera acquires frames from a capture device.
//
// Supported backends:
//   - gocv  - local webcam through OpenCV (requires cgo)
//   - still - a single image file replayed as a frame, for headless hosts
//   - mock  - synthetic frames for tests
package camera

import (
	"fmt"
	"os"
)

// Backend selects the frame source implementation.
type Backend string

const (
	// BackendAuto picks still when a still path is set, gocv otherwise.
	BackendAuto Backend = "auto"
	// BackendGoCV captures from a webcam through OpenCV.
	BackendGoCV Backend = "gocv"
	// BackendStill replays an image file.
	BackendStill Backend = "still"
	// BackendMock generates synthetic frames.
	BackendMock Backend = "mock"
)

// Sensor limits accepted by Validate.
const (
	MinWidth   = 160
	MinHeight  = 120
	MaxWidth   = 4096
	MaxHeight  = 2160
	MinQuality = 1
	MaxQuality = 100
)

// Config holds capture configuration.
type Config struct {
	// Backend is the source implementation. Default: auto.
	Backend Backend `mapstructure:"backend" yaml:"backend" json:"backend"`

	// Device is the OpenCV capture index (0 = first webcam).
	Device int `mapstructure:"device" yaml:"device" json:"device"`

	// Width and Height are a resolution hint. The device may deliver a
	// different native size; frames are forwarded at whatever it delivers.
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`

	// Quality is the JPEG quality used when encoding frames (1-100).
	Quality int `mapstructure:"quality" yaml:"quality" json:"quality"`

	// StillPath is the image replayed by the still backend.
	StillPath string `mapstructure:"still_path" yaml:"still_path" json:"still_path"`
}

// DefaultConfig returns a 640x480 hint with JPEG quality 80.
func DefaultConfig() Config {
	return Config{
		Backend: BackendAuto,
		Device:  0,
		Width:   640,
		Height:  480,
		Quality: 80,
	}
}

// ResolvedBackend returns the backend that auto resolves to.
func (c Config) ResolvedBackend() Backend {
	if c.Backend == "" || c.Backend == BackendAuto {
		if c.StillPath != "" {
			return BackendStill
		}
		return BackendGoCV
	}
	return c.Backend
}

// Validate checks the values are in range.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Backend {
	case "", BackendAuto, BackendGoCV, BackendStill, BackendMock:
	default:
		errors = append(errors, fmt.Sprintf("backend must be auto, gocv, still or mock (got %q)", c.Backend))
	}

	if c.Device < 0 {
		errors = append(errors, "device must not be negative")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		errors = append(errors, "quality must be between 1 and 100")
	}

	if c.ResolvedBackend() == BackendStill {
		if c.StillPath == "" {
			errors = append(errors, "still_path is required for the still backend")
		} else if _, err := os.Stat(c.StillPath); err != nil {
			errors = append(errors, fmt.Sprintf("still_path: %v", err))
		}
	}

	return errors
}
