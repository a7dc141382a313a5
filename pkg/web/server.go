// Package web serves the emotion dashboard: a browser page, a small JSON
// API for the capture controller, and websocket feeds for live status and
// camera preview frames.
package web

import (
	"context"
	"embed"
	"io"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/detector"
	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/hub"
	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/session"
)

//go:embed static
var assets embed.FS

// Controller is the capture controller the dashboard drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Upload(ctx context.Context, name string, r io.Reader) (*emotion.Result, error)
	State() session.State
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	ctrl     Controller
	detector detector.Detector
	cameras  *camera.Manager

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDetector enables upstream checks in /api/health.
func WithDetector(d detector.Detector) Option {
	return func(s *Server) { s.detector = d }
}

// WithCameraManager enables the /api/camera/config routes.
func WithCameraManager(m *camera.Manager) Option {
	return func(s *Server) { s.cameras = m }
}

// NewServer creates the dashboard server for ctrl, listening on addr.
func NewServer(addr string, ctrl Controller, opts ...Option) *Server {
	s := &Server{
		addr:   addr,
		ctrl:   ctrl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "web")
	s.statusHub = hub.New("status", hub.WithLogger(s.logger), hub.WithReplay())
	s.cameraHub = hub.New("camera", hub.WithLogger(s.logger))

	app := fiber.New(fiber.Config{
		AppName:               "Emotion Dashboard",
		DisableStartupMessage: true,
		BodyLimit:             frame.MaxUploadBytes + 1<<20,
	})

	app.Use(recover.New())
	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/health", s.handleHealth)
	api.Post("/camera/start", s.handleStart)
	api.Post("/camera/stop", s.handleStop)
	api.Post("/upload", s.handleUpload)
	api.Get("/camera/config", s.handleGetCameraConfig)
	api.Put("/camera/config", s.handleUpdateCameraConfig)
	api.Get("/camera/presets", s.handleListPresets)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	// Static page
	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(assets),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the hubs and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", s.addr)

	go s.statusHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(s.addr)
}

// Publish broadcasts the rendered view of state to status viewers.
// Wire it to session.WithOnChange.
func (s *Server) Publish(state session.State) {
	if err := s.statusHub.BroadcastJSON(present.Render(state)); err != nil {
		s.logger.Warn("encode status", "error", err)
	}
}

// SendFrame forwards an encoded preview frame to camera viewers.
// Wire it to session.WithOnFrame.
func (s *Server) SendFrame(p *frame.Payload) {
	if s.cameraHub.ClientCount() == 0 {
		return
	}
	s.cameraHub.BroadcastBinary(p.Data)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown(ctx context.Context) error {
	s.statusHub.Close()
	s.cameraHub.Close()
	return s.app.ShutdownWithContext(ctx)
}
