package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-emotion/internal/config"
	"github.com/teslashibe/go-emotion/internal/log"
	"github.com/teslashibe/go-emotion/pkg/detector"
)

// version is set at build time with -ldflags "-X ...commands.version=...".
var version = "dev"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:     "emotion",
		Version: version,
		Short: "emotion - live facial emotion readout",
		Long: `emotion captures webcam frames, sends them to an emotion detection
backend and shows the dominant emotion with the full distribution.

Features:
  • Live capture through OpenCV, or a still image on headless hosts
  • Browser dashboard with live preview over WebSocket
  • One-shot classification of image files
  • Terminal readout of a running dashboard`,
		SilenceUsage: true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./emotion.yaml or $XDG_CONFIG_HOME/emotion/emotion.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "detection backend URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves defaults, file, environment and flags, then
// initialises logging at the configured level.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log.Init(cfg.LogLevel), nil
}

func newDetector(cfg config.Config, logger *slog.Logger) (*detector.Client, error) {
	return detector.NewClient(
		detector.WithBaseURL(cfg.APIURL),
		detector.WithTimeout(cfg.RequestTimeout),
		detector.WithLogger(logger),
		detector.WithUserAgent("go-emotion/"+version),
	)
}
