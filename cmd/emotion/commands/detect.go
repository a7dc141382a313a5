package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-emotion/pkg/detector"
	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/session"
)

var detectCmd = &cobra.Command{
	Use:   "detect FILE|DATA_URI...",
	Short: "Classify image files",
	Long: `Upload each file to the backend's file endpoint and print the readout.
Files are sent unmodified; a failure on one file does not stop the rest.
An argument starting with "data:" is sent to the frame endpoint instead.`,
	Example: `  emotion detect face.jpg
  emotion detect photos/*.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	det, err := newDetector(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer det.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var bar *progressbar.ProgressBar
	if len(args) > 1 {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("classifying"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		if ctx.Err() != nil {
			break
		}

		state := classifyFile(ctx, det, path)
		if state.Error != "" {
			failed++
		}
		if bar != nil {
			bar.Add(1)
		}

		fmt.Fprintf(out, "== %s\n", heading(path))
		fmt.Fprint(out, present.Text(present.Render(state)))
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// heading shortens data URI arguments to their header.
func heading(arg string) string {
	if header, _, ok := strings.Cut(arg, ","); ok && strings.HasPrefix(arg, "data:") {
		return header + ",..."
	}
	return arg
}

// classifyFile returns the state the dashboard would show after uploading path.
func classifyFile(ctx context.Context, det detector.Detector, path string) session.State {
	var (
		result *emotion.Result
		err    error
	)
	if strings.HasPrefix(path, "data:") {
		if _, _, parseErr := frame.ParseDataURI(path); parseErr != nil {
			return session.State{Error: parseErr.Error()}
		}
		result, err = det.DetectFromDataURI(ctx, path)
	} else {
		upload, openErr := frame.OpenUpload(path)
		if openErr != nil {
			return session.State{Error: openErr.Error()}
		}
		result, err = det.DetectFromFile(ctx, upload)
	}
	if err != nil {
		msg, ok := detector.ServerMessage(err)
		if !ok {
			msg = session.MsgDetectFailed
		}
		return session.State{Error: msg}
	}
	return session.State{Result: result}
}
