package camera

import (
	"fmt"
	"log/slog"
	"strings"
)

// NewSource creates a frame source for cfg. The device is not opened until
// Source.Open is called.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %s", strings.Join(errs, "; "))
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.ResolvedBackend()

	logger.Info("creating camera source",
		"backend", backend,
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
	)

	switch backend {
	case BackendMock:
		return NewMockSource(cfg), nil
	case BackendStill:
		return NewStillSource(cfg.StillPath, logger), nil
	case BackendGoCV:
		return newGoCVSource(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// AvailableBackends returns the backends compiled into this binary.
func AvailableBackends() []Backend {
	backends := []Backend{BackendMock, BackendStill}
	if gocvAvailable {
		backends = append(backends, BackendGoCV)
	}
	return backends
}
