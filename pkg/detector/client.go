package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-emotion/internal/httpc"
	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
)

// maxResponseBytes bounds a response body; results are a few hundred bytes.
const maxResponseBytes = 1 << 20

// Client is the HTTP implementation of Detector.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a detector client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpc.NewClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		http:      hc,
		logger:    logger.With("component", "detector"),
	}, nil
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DetectFromDataURI posts {"image": dataURI} to /api/detect-emotion.
func (c *Client) DetectFromDataURI(ctx context.Context, dataURI string) (*emotion.Result, error) {
	if dataURI == "" {
		return nil, ErrNoImage
	}

	body, err := json.Marshal(map[string]string{"image": dataURI})
	if err != nil {
		return nil, fmt.Errorf("detector: marshal payload: %w", err)
	}

	return c.detect(ctx, PathDetect, "application/json", body)
}

// DetectFromFile posts the upload as multipart field "file" to
// /api/detect-emotion-file.
func (c *Client) DetectFromFile(ctx context.Context, upload *frame.Upload) (*emotion.Result, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrNoImage
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Name))
	h.Set("Content-Type", upload.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("detector: create multipart: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("detector: write multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("detector: close multipart: %w", err)
	}

	return c.detect(ctx, PathDetectFile, mw.FormDataContentType(), buf.Bytes())
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, requestID, err := c.newRequest(ctx, http.MethodGet, PathHealth, "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "health", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read health", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp.StatusCode, data, requestID)
	}

	var status HealthStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &status, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body []byte) (*http.Request, string, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, "", fmt.Errorf("detector: create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, requestID, nil
}

// detect sends one request and normalizes the response. No retries.
func (c *Client) detect(ctx context.Context, path, contentType string, body []byte) (*emotion.Result, error) {
	start := time.Now()

	req, requestID, err := c.newRequest(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("detect request failed", "path", path, "request_id", requestID, "error", err)
		return nil, &TransportError{Op: "post " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}

	result, err := c.parseResult(resp.StatusCode, data, requestID)
	if err != nil {
		// A crashing backend is worth a warning; "no face" at 10/s is not.
		level := slog.LevelDebug
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsServerError() {
			level = slog.LevelWarn
		}
		c.logger.Log(ctx, level, "detect failed",
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
			"error", err,
		)
		return nil, err
	}

	c.logger.Debug("detect complete",
		"path", path,
		"dominant", result.Dominant,
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)
	return result, nil
}

// wireResult is the backend's response body. Success and failure share
// one shape; Error is set on failure.
type wireResult struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotions        map[string]float64 `json:"emotions"`
	Confidence      float64            `json:"confidence"`
	Error           string             `json:"error"`
}

func (c *Client) parseResult(status int, data []byte, requestID string) (*emotion.Result, error) {
	var wire wireResult
	decodeErr := json.Unmarshal(data, &wire)

	if decodeErr == nil && wire.Error != "" {
		return nil, &APIError{StatusCode: status, Message: wire.Error, FromServer: true, RequestID: requestID}
	}
	if status < 200 || status > 299 {
		return nil, &APIError{StatusCode: status, Message: statusMessage(status), RequestID: requestID}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	dominant := emotion.Label(wire.DominantEmotion)
	if dominant == "" {
		dominant = emotion.Unknown
	}

	emotions := make(emotion.Distribution, len(wire.Emotions))
	for label, score := range wire.Emotions {
		emotions[emotion.Label(label)] = score
	}

	result := emotion.NewResult(dominant, emotions)
	result.Confidence = wire.Confidence
	return result, nil
}

func (c *Client) parseError(status int, data []byte, requestID string) error {
	var wire struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &wire) == nil && wire.Error != "" {
		return &APIError{StatusCode: status, Message: wire.Error, FromServer: true, RequestID: requestID}
	}
	return &APIError{StatusCode: status, Message: statusMessage(status), RequestID: requestID}
}
