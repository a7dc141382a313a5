package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the detection backend",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	det, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	status, err := det.Health(context.Background())
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", cfg.APIURL, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", cfg.APIURL, status.Status)
	if status.Message != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (%s)", status.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout())

	if !status.OK() {
		return fmt.Errorf("backend reports %q", status.Status)
	}
	return nil
}
