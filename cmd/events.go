package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taskdesk/apiserver/internal/logger"
	"github.com/taskdesk/apiserver/internal/mq"
	"github.com/taskdesk/apiserver/types"
	"go.uber.org/zap"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect task events on the message broker",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log every task event published on TASK_EVENTS_CHANNEL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync(log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend, err := mq.NewBackend(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if backend == nil {
			return fmt.Errorf("MQ_BACKEND is %q, nothing to watch", cfg.MQ.Backend)
		}
		defer backend.Close()

		log.Info("watching task events", zap.String("backend", cfg.MQ.Backend), zap.String("channel", cfg.MQ.TaskChannel))
		events := mq.NewTaskEventPublisher(backend, cfg.MQ.TaskChannel)
		err = events.SubscribeTaskEvents(ctx, func(_ context.Context, event types.TaskEvent) error {
			log.Info("task event",
				zap.String("type", event.Type),
				zap.String("task_id", event.TaskID.String()),
				zap.String("user_id", event.UserID.String()),
				zap.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}
