package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/detector"
	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/session"
)

func fixtureResult() *emotion.Result {
	return emotion.NewResult(emotion.Happy, emotion.Distribution{
		emotion.Happy:   87.3,
		emotion.Sad:     4.1,
		emotion.Neutral: 8.6,
	})
}

func newTestServer(t *testing.T, det *detector.Mock, camOpts ...camera.MockOption) (*Server, *session.Controller, *camera.Manager) {
	t.Helper()

	cfg := camera.DefaultConfig()
	cfg.Backend = camera.BackendMock
	cameras := camera.NewManager(cfg)

	ctrl := session.New(cameras, det,
		session.WithInterval(time.Hour),
		session.WithSourceFactory(func(cfg camera.Config, _ *slog.Logger) (camera.Source, error) {
			return camera.NewMockSource(cfg, camOpts...), nil
		}),
	)
	t.Cleanup(func() { ctrl.Close() })

	srv := NewServer(":0", ctrl, WithDetector(det), WithCameraManager(cameras))
	return srv, ctrl, cameras
}

func doJSON(t *testing.T, srv *Server, req *http.Request, out interface{}) int {
	t.Helper()
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestStatus_Inactive(t *testing.T) {
	srv, _, _ := newTestServer(t, detector.NewMock(fixtureResult()))

	var v present.View
	code := doJSON(t, srv, httptest.NewRequest(http.MethodGet, "/api/status", nil), &v)

	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if v.Active || v.Headline != nil {
		t.Errorf("Expected inactive empty view, got %+v", v)
	}
	if v.Empty != present.PlaceholderResults {
		t.Errorf("Expected placeholder, got %q", v.Empty)
	}
}

func TestCameraStartStop(t *testing.T) {
	det := detector.NewMock(fixtureResult())
	srv, ctrl, _ := newTestServer(t, det)

	var v present.View
	if code := doJSON(t, srv, httptest.NewRequest(http.MethodPost, "/api/camera/start", nil), &v); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if !v.Active {
		t.Error("Expected active view after start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for ctrl.State().Result == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	v = present.View{}
	doJSON(t, srv, httptest.NewRequest(http.MethodGet, "/api/status", nil), &v)
	if v.Headline == nil || v.Headline.ConfidenceText != "87.3% confidence" {
		t.Errorf("Expected fixture headline, got %+v", v.Headline)
	}

	v = present.View{}
	if code := doJSON(t, srv, httptest.NewRequest(http.MethodPost, "/api/camera/stop", nil), &v); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if v.Active || v.Headline != nil {
		t.Errorf("Expected reset view after stop, got %+v", v)
	}

	// Stop again is harmless.
	if code := doJSON(t, srv, httptest.NewRequest(http.MethodPost, "/api/camera/stop", nil), nil); code != http.StatusOK {
		t.Errorf("Expected 200 for repeated stop, got %d", code)
	}
}

func TestCameraStart_Denied(t *testing.T) {
	srv, _, _ := newTestServer(t, detector.NewMock(fixtureResult()), camera.WithOpenError(errors.New("denied")))

	var resp ErrorResponse
	code := doJSON(t, srv, httptest.NewRequest(http.MethodPost, "/api/camera/start", nil), &resp)

	if code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", code)
	}
	if resp.Error != session.MsgCameraUnavailable {
		t.Errorf("Expected camera message, got %q", resp.Error)
	}
	if resp.View == nil || resp.View.Active {
		t.Error("Expected inactive view in error body")
	}
}

func uploadRequest(t *testing.T, field, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	det := detector.NewMock(fixtureResult())
	var got []byte
	det.DetectFileFunc = func(ctx context.Context, upload *frame.Upload) (*emotion.Result, error) {
		got = upload.Data
		return fixtureResult(), nil
	}
	srv, _, _ := newTestServer(t, det)

	raw := []byte("\xff\xd8\xffimage")
	var v present.View
	code := doJSON(t, srv, uploadRequest(t, "file", "face.jpg", raw), &v)

	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if !bytes.Equal(got, raw) {
		t.Error("Expected upload bytes forwarded unmodified")
	}
	if v.Headline == nil || v.Headline.Label != emotion.Happy {
		t.Errorf("Expected happy headline, got %+v", v.Headline)
	}
	if v.Active {
		t.Error("Upload must not start the camera")
	}
}

func TestUpload_MissingFile(t *testing.T) {
	srv, _, _ := newTestServer(t, detector.NewMock(fixtureResult()))

	var resp ErrorResponse
	code := doJSON(t, srv, uploadRequest(t, "image", "face.jpg", []byte("x")), &resp)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", code)
	}
	if resp.Error != "No file provided" {
		t.Errorf("Unexpected error %q", resp.Error)
	}
}

func TestUpload_ServerError(t *testing.T) {
	det := detector.NewMock(fixtureResult())
	det.DetectFileFunc = func(ctx context.Context, upload *frame.Upload) (*emotion.Result, error) {
		return nil, &detector.APIError{StatusCode: 200, Message: "No face", FromServer: true}
	}
	srv, _, _ := newTestServer(t, det)

	var resp ErrorResponse
	code := doJSON(t, srv, uploadRequest(t, "file", "face.jpg", []byte("x")), &resp)
	if code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", code)
	}
	if resp.Error != "No face" {
		t.Errorf("Expected exact server text, got %q", resp.Error)
	}
}

func TestHealth(t *testing.T) {
	det := detector.NewMock(fixtureResult())
	srv, _, _ := newTestServer(t, det)

	var resp HealthResponse
	if code := doJSON(t, srv, httptest.NewRequest(http.MethodGet, "/api/health", nil), &resp); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if resp.Status != "ok" || !resp.Upstream.OK() {
		t.Errorf("Unexpected health %+v", resp)
	}

	det.HealthFunc = func(ctx context.Context) (*detector.HealthStatus, error) {
		return nil, errors.New("connection refused")
	}
	if code := doJSON(t, srv, httptest.NewRequest(http.MethodGet, "/api/health", nil), &resp); code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", code)
	}
	if resp.Status != "degraded" {
		t.Errorf("Expected degraded, got %s", resp.Status)
	}
}

func TestCameraConfig(t *testing.T) {
	srv, _, cameras := newTestServer(t, detector.NewMock(fixtureResult()))

	req := httptest.NewRequest(http.MethodPut, "/api/camera/config", strings.NewReader(`{"preset":"720p"}`))
	req.Header.Set("Content-Type", "application/json")

	var cfg map[string]interface{}
	if code := doJSON(t, srv, req, &cfg); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if cfg["width"] != float64(1280) {
		t.Errorf("Expected width 1280, got %v", cfg["width"])
	}
	if cameras.GetConfig().Height != 720 {
		t.Errorf("Expected manager updated, got %d", cameras.GetConfig().Height)
	}

	bad := httptest.NewRequest(http.MethodPut, "/api/camera/config", strings.NewReader(`{"quality":0}`))
	bad.Header.Set("Content-Type", "application/json")
	if code := doJSON(t, srv, bad, nil); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid quality, got %d", code)
	}
}

func TestIndexPage(t *testing.T) {
	srv, _, _ := newTestServer(t, detector.NewMock(fixtureResult()))

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Emotion Dashboard") {
		t.Error("Expected dashboard page")
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	srv, _, _ := newTestServer(t, detector.NewMock(fixtureResult()))

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/ws/status", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("Expected 426, got %d", resp.StatusCode)
	}
}

// stubController answers Upload with a fixed error while reporting a
// clean state, as happens when a live poll succeeds mid-upload.
type stubController struct {
	uploadErr error
}

func (s *stubController) Start(ctx context.Context) error { return nil }
func (s *stubController) Stop() error                    { return nil }
func (s *stubController) State() session.State           { return session.State{Active: true} }

func (s *stubController) Upload(ctx context.Context, name string, r io.Reader) (*emotion.Result, error) {
	return nil, s.uploadErr
}

func TestUpload_ErrorTextFromReturnedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &detector.APIError{StatusCode: 400, Message: "No face detected", FromServer: true}, "No face detected"},
		{"transport failure", &detector.TransportError{Op: "post", Err: errors.New("connection refused")}, session.MsgDetectFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(":0", &stubController{uploadErr: tt.err})

			var resp ErrorResponse
			code := doJSON(t, srv, uploadRequest(t, "file", "face.jpg", []byte("x")), &resp)
			if code != http.StatusBadGateway {
				t.Errorf("Expected 502, got %d", code)
			}
			if resp.Error != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, resp.Error)
			}
		})
	}
}
