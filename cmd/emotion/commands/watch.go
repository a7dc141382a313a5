package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-emotion/pkg/present"
	"github.com/teslashibe/go-emotion/pkg/web"
)

var dashboardURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running dashboard in the terminal",
	Long: `Connect to the status stream of a running "emotion serve" and redraw
the readout whenever it changes.`,
	Example: `  emotion watch
  emotion watch --dashboard http://kiosk.local:8080`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&dashboardURL, "dashboard", "http://localhost:8080", "dashboard base URL")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, _, err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	return web.Watch(ctx, dashboardURL, func(v present.View) {
		fmt.Fprint(out, clearScreen+present.Text(v))
	})
}
