// Package config loads go-emotion configuration from defaults, an optional
// YAML file, EMOTION_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/teslashibe/go-emotion/pkg/camera"
)

// Defaults.
const (
	DefaultAPIURL         = "http://localhost:5000"
	DefaultListen         = ":8080"
	DefaultInterval       = 100 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "info"

	// EnvPrefix is prepended to every environment key (EMOTION_API_URL, ...).
	EnvPrefix = "EMOTION"

	// FileName is the config file searched for when no path is given.
	FileName = "emotion"
)

// Config is the effective configuration of every command.
type Config struct {
	// APIURL is the base URL of the emotion detection backend.
	APIURL string `mapstructure:"api_url" yaml:"api_url" json:"api_url"`

	// Listen is the dashboard listen address.
	Listen string `mapstructure:"listen" yaml:"listen" json:"listen"`

	// Interval is the pause between the end of one poll and the next.
	Interval time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`

	// RequestTimeout bounds a single detection request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`

	Camera camera.Config `mapstructure:"camera" yaml:"camera" json:"camera"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		Listen:         DefaultListen,
		Interval:       DefaultInterval,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		Camera:         camera.DefaultConfig(),
	}
}

// SetDefaults registers every key with v so environment variables are
// picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("camera.backend", string(d.Camera.Backend))
	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.quality", d.Camera.Quality)
	v.SetDefault("camera.still_path", d.Camera.StillPath)
}

// Load reads configuration into v and decodes it. An empty path searches
// the working directory and the user config directory for emotion.yaml;
// a missing file is not an error unless path was given explicitly.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := DefaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain API_URL is honoured as a fallback.
	if err := v.BindEnv("api_url", EnvPrefix+"_API_URL", "API_URL"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	return cfg, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/emotion (or the platform equivalent).
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.APIURL)
	switch {
	case c.APIURL == "":
		problems = append(problems, "api_url is required")
	case err != nil:
		problems = append(problems, fmt.Sprintf("api_url: %v", err))
	case u.Scheme != "http" && u.Scheme != "https":
		problems = append(problems, "api_url must use http or https")
	case u.Host == "":
		problems = append(problems, "api_url must include a host")
	}

	if c.Listen == "" {
		problems = append(problems, "listen is required")
	}
	if c.Interval <= 0 {
		problems = append(problems, "interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}

	for _, p := range c.Camera.Validate() {
		problems = append(problems, "camera."+p)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
