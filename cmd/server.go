package cmd

import (
	"context"
	"fmt"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
	"github.com/taskdesk/apiserver/internal/logger"
	"github.com/taskdesk/apiserver/internal/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the taskdesk API server",
	Long: `Starts the taskdesk API server. Usage:

	taskdesk server

The server keeps running when the database is unreachable at startup;
requests that need it fail until it comes back.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync(log)

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		if err := serve(srv, log); err != nil {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

// serve runs srv until a shutdown signal arrives or listening fails. Either
// way the server's resources are released before serve returns.
func serve(srv *server.Server, log *zap.Logger) error {
	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start()
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Info("graceful shutdown initiated")
				return srv.Shutdown(ctx)
			},
		},
	)

	select {
	case err := <-startErr:
		if err == nil {
			// Start returns nil once a signal-driven Shutdown has begun.
			return exitError(<-wait)
		}
		log.Error("server error", zap.Error(err))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			log.Error("shutdown failed", zap.Error(shutdownErr))
		}
		return fmt.Errorf("server error: %w", err)
	case exitCode := <-wait:
		return exitError(exitCode)
	}
}

func exitError(exitCode int) error {
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	return nil
}
