//go:build !cgo

package camera

import (
	"fmt"
	"log/slog"
)

const gocvAvailable = false

// newGoCVSource returns an error when built without cgo.
func newGoCVSource(cfg Config, logger *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("%w: gocv requires a cgo build", ErrUnavailable)
}
