// Package frame turns captured images into the payloads sent to the
// detection backend: JPEG data URIs for live frames and untouched file
// bytes for uploads.
package frame

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

// DefaultQuality matches a 0.8 canvas export quality.
const DefaultQuality = 80

// Sentinel errors.
var (
	ErrEmptyFrame     = errors.New("frame: empty frame")
	ErrInvalidDataURI = errors.New("frame: invalid data URI")
)

// Payload is one encoded frame.
type Payload struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// DataURI returns the payload as data:<type>;base64,<data>.
func (p *Payload) DataURI() string {
	return "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Encoder rasterizes frames into an off-screen bitmap and encodes them
// as JPEG. The bitmap is reused while the frame size stays the same.
// An Encoder is safe for concurrent use.
type Encoder struct {
	quality int

	mu     sync.Mutex
	canvas *image.RGBA
}

// NewEncoder creates an encoder. Quality outside 1-100 falls back to
// DefaultQuality.
func NewEncoder(quality int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Encoder{quality: quality}
}

// Quality returns the JPEG quality in use.
func (e *Encoder) Quality() int {
	return e.quality
}

// Encode copies img at its native size onto the canvas and encodes it.
// No resizing, cropping or normalization happens here.
func (e *Encoder) Encode(img image.Image) (*Payload, error) {
	if img == nil {
		return nil, ErrEmptyFrame
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyFrame
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.canvas == nil || e.canvas.Rect.Dx() != b.Dx() || e.canvas.Rect.Dy() != b.Dy() {
		e.canvas = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Copy(e.canvas, image.Point{}, img, b, draw.Src, nil)

	var buf bytes.Buffer
	buf.Grow(b.Dx() * b.Dy() / 8)
	if err := jpeg.Encode(&buf, e.canvas, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("frame: encode jpeg: %w", err)
	}

	return &Payload{
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		ContentType: "image/jpeg",
	}, nil
}

// ParseDataURI decodes a base64 data URI. Like the backend, anything
// before the first comma is treated as the header, and a string without
// a comma is decoded as bare base64.
func ParseDataURI(s string) (contentType string, data []byte, err error) {
	payload := s
	if header, rest, ok := strings.Cut(s, ","); ok {
		payload = rest
		mediaType, isBase64 := strings.CutSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		if !isBase64 {
			return "", nil, fmt.Errorf("%w: not base64 encoded", ErrInvalidDataURI)
		}
		contentType = mediaType
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return contentType, data, nil
}
