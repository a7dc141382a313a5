package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/session"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Capture and print results in the terminal",
	Long: `Open the camera immediately and redraw the readout in the terminal
after every result. Ctrl+C releases the camera and exits.`,
	Example: `  emotion live
  emotion live --backend still --still face.jpg --interval 1s`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
	addCaptureFlags(liveCmd)
}

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

func runLive(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	det, err := newDetector(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer det.Close()

	out := cmd.OutOrStdout()
	ctrl := session.New(camera.NewManager(cfg.Camera), det,
		session.WithInterval(cfg.Interval),
		session.WithLogger(logger),
		session.WithOnChange(func(s session.State) {
			fmt.Fprint(out, clearScreen+present.Text(present.Render(s)))
		}),
	)
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("%s: %w", session.MsgCameraUnavailable, err)
	}

	<-ctx.Done()
	return ctrl.Stop()
}
