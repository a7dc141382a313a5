package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/detector"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/hub"
	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/session"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string        `json:"error"`
	View  *present.View `json:"view,omitempty"`
}

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Upstream *detector.HealthStatus `json:"upstream,omitempty"`
	Error    string                 `json:"upstream_error,omitempty"`
}

func (s *Server) view() present.View {
	return present.Render(s.ctrl.State())
}

// handleStatus returns the rendered view
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.view())
}

// handleStart opens the camera
func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.ctrl.Start(c.UserContext()); err != nil {
		v := s.view()
		switch {
		case errors.Is(err, session.ErrCameraUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: session.MsgCameraUnavailable, View: &v})
		case errors.Is(err, session.ErrClosed):
			return c.Status(fiber.StatusGone).JSON(ErrorResponse{Error: err.Error(), View: &v})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error(), View: &v})
		}
	}
	return c.JSON(s.view())
}

// handleStop releases the camera
func (s *Server) handleStop(c *fiber.Ctx) error {
	if err := s.ctrl.Stop(); err != nil {
		s.logger.Warn("stop", "error", err)
	}
	return c.JSON(s.view())
}

// handleUpload classifies a multipart "file" field
func (s *Server) handleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "No file provided"})
	}
	if fh.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "No file selected"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	defer f.Close()

	if _, err := s.ctrl.Upload(c.UserContext(), fh.Filename, f); err != nil {
		v := s.view()
		status := fiber.StatusBadGateway
		if errors.Is(err, frame.ErrEmptyUpload) || errors.Is(err, frame.ErrUploadTooLarge) {
			status = fiber.StatusBadRequest
		}
		// Taken from err, not v: a live poll may already have cleared the slot.
		msg, ok := detector.ServerMessage(err)
		if !ok {
			msg = session.MsgDetectFailed
		}
		return c.Status(status).JSON(ErrorResponse{Error: msg, View: &v})
	}
	return c.JSON(s.view())
}

// handleHealth reports dashboard and upstream health
func (s *Server) handleHealth(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok"}
	if s.detector == nil {
		return c.JSON(resp)
	}

	upstream, err := s.detector.Health(c.UserContext())
	if err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	resp.Upstream = upstream
	return c.JSON(resp)
}

// handleGetCameraConfig returns the capture settings used on next start
func (s *Server) handleGetCameraConfig(c *fiber.Ctx) error {
	if s.cameras == nil {
		return fiber.ErrNotFound
	}
	return c.JSON(s.cameras.GetConfigJSON())
}

// handleUpdateCameraConfig applies a partial update, e.g. {"preset": "720p"}
func (s *Server) handleUpdateCameraConfig(c *fiber.Ctx) error {
	if s.cameras == nil {
		return fiber.ErrNotFound
	}

	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid JSON body"})
	}
	if err := s.cameras.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(s.cameras.GetConfigJSON())
}

// handleListPresets returns the preset names
func (s *Server) handleListPresets(c *fiber.Ctx) error {
	return c.JSON(camera.PresetNames())
}

// handleStatusWS streams rendered views
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.serveWS(s.statusHub, c)
}

// handleCameraWS streams JPEG preview frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	s.serveWS(s.cameraHub, c)
}

func (s *Server) serveWS(h *hub.Hub, c *websocket.Conn) {
	client := hub.NewClient(h, c)
	if client == nil {
		c.Close()
		return
	}
	client.Run()
}
