package detector

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds detector client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:5000.
	BaseURL string

	// Timeout bounds one request when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the client built from internal/httpc.
	HTTPClient *http.Client

	// UserAgent is sent on every request.
	UserAgent string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Option configures the client.
type Option func(*Config)

// WithBaseURL sets the backend root URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns defaults for a backend on localhost.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:5000",
		Timeout:   10 * time.Second,
		UserAgent: "go-emotion",
		Logger:    slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
