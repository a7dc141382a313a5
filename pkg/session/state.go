package session

import (
	"time"

	"github.com/teslashibe/go-emotion/pkg/emotion"
)

// User-facing error texts.
const (
	MsgCameraUnavailable = "Unable to access camera. Please check permissions."
	MsgDetectFailed      = "Failed to detect emotion"
)

// State is a point-in-time copy of the controller's state.
type State struct {
	// Active is true while a capture session holds the device.
	Active bool `json:"active"`

	// SessionID identifies the current capture session; empty when inactive.
	SessionID string `json:"session_id,omitempty"`

	// Source is the backend name of the active device.
	Source string `json:"source,omitempty"`

	// Result is the latest detection, or nil.
	Result *emotion.Result `json:"result,omitempty"`

	// Error is the single error slot, overwritten by the latest failure.
	Error string `json:"error,omitempty"`

	// FPS is the number of polls completed in the last full second.
	FPS int `json:"fps"`

	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
