// cmd/energy-agent/main.go
package main

import (
	"fmt"
	"os"

	"energy-agent/internal/common/config"
	"energy-agent/internal/common/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "energy-agent",
		Short:         "Answers French questions about household electricity consumption",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	rootCmd.AddCommand(newServeCmd(), newAskCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newLogger builds the zap logger described by the logging section.
func newLogger(cfg *config.Config) (*zap.Logger, logger.Logger, error) {
	zapLog, err := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	return zapLog, logger.NewZapAdapter(zapLog), nil
}
