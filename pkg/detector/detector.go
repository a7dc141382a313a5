// Package detector is the HTTP client for the emotion detection backend.
//
// Two operations mirror the backend's endpoints:
//
//	DetectFromDataURI  POST /api/detect-emotion       {"image": "<data URI>"}
//	DetectFromFile     POST /api/detect-emotion-file  multipart field "file"
//
// Both return an *emotion.Result or an error. Requests are never retried.
package detector

import (
	"context"

	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
)

// Endpoint paths on the backend.
const (
	PathDetect     = "/api/detect-emotion"
	PathDetectFile = "/api/detect-emotion-file"
	PathHealth     = "/api/health"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Detector classifies images through a remote backend.
type Detector interface {
	// DetectFromDataURI sends an encoded live frame.
	DetectFromDataURI(ctx context.Context, dataURI string) (*emotion.Result, error)

	// DetectFromFile sends a user-selected file byte-for-byte.
	DetectFromFile(ctx context.Context, upload *frame.Upload) (*emotion.Result, error)

	// Health checks backend reachability.
	Health(ctx context.Context) (*HealthStatus, error)
}

// HealthStatus is the backend's /api/health body.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the backend declared itself healthy.
func (h *HealthStatus) OK() bool {
	return h != nil && h.Status == "ok"
}
