package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/session"
	"github.com/teslashibe/go-emotion/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emotion dashboard",
	Long: `Start the browser dashboard. The camera stays released until Start is
pressed in the page (or POST /api/camera/start is called).`,
	Example: `  # Dashboard on :8080 against a local backend
  emotion serve

  # Custom backend and port
  emotion serve --api-url http://gpu-box:5000 --listen :9090

  # Replay a still image instead of a webcam
  emotion serve --backend still --still face.jpg`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "dashboard listen address (default :8080)")
	addCaptureFlags(serveCmd)

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

// addCaptureFlags registers the flags shared by every command that opens
// the camera. They are bound in PreRun since several commands share keys.
func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", 0, "pause between polls (default 100ms)")
	cmd.Flags().String("backend", "", "capture backend (auto, gocv, still, mock)")
	cmd.Flags().Int("device", 0, "OpenCV device index")
	cmd.Flags().String("still", "", "image replayed by the still backend")
	cmd.PreRun = bindCaptureFlags
}

func bindCaptureFlags(cmd *cobra.Command, args []string) {
	viper.BindPFlag("interval", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("camera.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("camera.device", cmd.Flags().Lookup("device"))
	viper.BindPFlag("camera.still_path", cmd.Flags().Lookup("still"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	det, err := newDetector(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer det.Close()

	cameras := camera.NewManager(cfg.Camera)
	cameras.OnConfigChange = func(c camera.Config) error {
		logger.Info("camera config changed, applies on next start",
			"backend", c.ResolvedBackend(),
			"device", c.Device,
			"width", c.Width,
			"height", c.Height,
			"quality", c.Quality,
		)
		return nil
	}

	var server *web.Server
	ctrl := session.New(cameras, det,
		session.WithInterval(cfg.Interval),
		session.WithLogger(logger),
		session.WithOnChange(func(s session.State) { server.Publish(s) }),
		session.WithOnFrame(func(p *frame.Payload) { server.SendFrame(p) }),
	)
	defer ctrl.Close()

	server = web.NewServer(cfg.Listen, ctrl,
		web.WithLogger(logger),
		web.WithDetector(det),
		web.WithCameraManager(cameras),
	)
	server.Publish(ctrl.State())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("emotion dashboard running",
		"url", "http://localhost"+cfg.Listen,
		"api_url", cfg.APIURL,
		"backends", camera.AvailableBackends(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-sigChan:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
