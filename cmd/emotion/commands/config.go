package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-emotion/internal/config"
	"github.com/teslashibe/go-emotion/pkg/camera"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect emotion configuration",
	Long:  `View the effective configuration after defaults, file, environment and flags.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Example: `  # Show configuration as YAML (default)
  emotion config show

  # Show configuration as JSON
  EMOTION_API_URL=http://gpu-box:5000 emotion config show --format json`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Example: `  emotion config get api_url
  emotion config get camera.quality`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List capture presets",
	RunE:  runConfigPresets,
}

var formatFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configPresetsCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml or json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return writeConfig(cmd.OutOrStdout(), cfg, formatFlag)
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", format)
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := viper.GetViper()
	if _, err := config.Load(v, cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key not found: %s", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if _, err := config.Load(v, cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := v.ConfigFileUsed()
	if path == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "no config file found (searched ., %s)\n", config.DefaultDir())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, name := range camera.PresetNames() {
		p := camera.GetPreset(name)
		fmt.Fprintf(out, "%-8s %4dx%-4d q%d\n", name, p.Width, p.Height, p.Quality)
	}
	return nil
}
