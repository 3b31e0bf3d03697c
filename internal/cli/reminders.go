package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"stagehand/config"
	"stagehand/infras/kafka"
	"stagehand/internal/jobs/reminder"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
)

func newRemindersCommand(cfg *config.Config, client kafka.Client) *cobra.Command {
	var (
		group string
		limit int
	)

	reminders := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect the reminder topic",
	}

	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print reminders as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var seen atomic.Int64

			err := client.Consume(ctx, group, cfg.Kafka.Topics.Reminder, func(_ context.Context, msg kafkaGo.Message) error {
				r, err := kafka.Decode[reminder.Reminder](msg)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), formatReminder(r))

				if limit > 0 && seen.Add(1) >= int64(limit) {
					cancel()
				}

				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to tail reminders: %w", err)
			}

			return nil
		},
	}

	tail.Flags().StringVar(&group, "group", "stagectl", "consumer group to read as")
	tail.Flags().IntVar(&limit, "limit", 0, "stop after this many reminders, 0 to follow")

	reminders.AddCommand(tail)

	return reminders
}

func formatReminder(r reminder.Reminder) string {
	line := fmt.Sprintf("%s\t%s\t%s", r.DateKey, r.Kind, r.Display)

	if r.Title != "" {
		line += "\t" + r.Title
	}

	if r.Location != "" {
		line += " @ " + r.Location
	}

	if r.CallTime != "" {
		line += " (call " + r.CallTime + ")"
	}

	return line
}
