package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/taskdesk/apiserver/config"
	"github.com/taskdesk/apiserver/internal/logger"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "taskdesk",
	Short:        "Task management API server",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by subcommands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
