package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/dragplot/cmd/dragplot/internal/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var cfgPath string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "dragplot",
		Short: "Dragplot - draggable chart data points",
		Long: `Dragplot serves line charts whose data points can be dragged to new
values, in the browser over a live WebSocket connection or directly in
the terminal. A dragplot.yaml file describes the chart and its data.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultFile, "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(newServeCommand(&cfgPath, &logLevel))
	rootCmd.AddCommand(newTuiCommand(&cfgPath))
	rootCmd.AddCommand(newRenderCommand(&cfgPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the built-in demo
// configuration when the default file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == config.DefaultFile {
		return config.Default(), nil
	}
	return cfg, err
}

// setupLogging installs the process-wide text logger. The flag level
// wins over the config level.
func setupLogging(cfg *config.Config, override string) error {
	if override != "" {
		cfg.Log.Level = override
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
