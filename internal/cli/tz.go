package cli

import (
	"errors"
	"fmt"

	"stagehand/config"
	"stagehand/infras/kafka"
	"stagehand/shared/timezone"

	"github.com/spf13/cobra"
)

var errUnresolvable = errors.New("input cannot be resolved")

type tzOptions struct {
	zone    string
	weekday bool
	conv    *timezone.Converter
}

// NewRootCommand builds stagectl. Zone flags default to the studio zone from cfg.
func NewRootCommand(cfg *config.Config, clock timezone.Clock, client kafka.Client) *cobra.Command {
	root := &cobra.Command{
		Use:           "stagectl",
		Short:         "Operator tools for the stagehand service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTZCommand(cfg, clock), newRemindersCommand(cfg, client))

	return root
}

func newTZCommand(cfg *config.Config, clock timezone.Clock) *cobra.Command {
	opts := &tzOptions{}

	tz := &cobra.Command{
		Use:   "tz",
		Short: "Convert and inspect wall-clock values the way the API does",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			conv, err := timezone.NewConverter(cfg.App.Timezone, cfg.App.ZoneLabel, clock)
			if err != nil {
				return fmt.Errorf("failed to build converter: %w", err)
			}

			if !conv.IsValidZone(opts.zone) {
				return fmt.Errorf("%w: %s", timezone.ErrUnknownZone, opts.zone)
			}

			opts.conv = conv

			return nil
		},
	}

	tz.PersistentFlags().StringVar(&opts.zone, "zone", cfg.App.Timezone, "IANA zone to resolve and render in")

	display := &cobra.Command{
		Use:   "display <value>",
		Short: "Render a value for display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.weekday {
				fmt.Fprintln(cmd.OutOrStdout(), opts.conv.FormatForDisplayWithWeekday(args[0], opts.zone))

				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), opts.conv.FormatForDisplay(args[0], opts.zone))

			return nil
		},
	}
	display.Flags().BoolVar(&opts.weekday, "weekday", false, "prefix the weekday")

	tz.AddCommand(
		&cobra.Command{
			Use:   "to-utc <local>",
			Short: "Resolve a naive local value to a UTC instant",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				instant := opts.conv.LocalToUTCInstant(args[0], opts.zone)
				if instant == "" {
					return fmt.Errorf("%w: %q", errUnresolvable, args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), instant)

				return nil
			},
		},
		&cobra.Command{
			Use:   "edit <value>",
			Short: "Render a value for a datetime-local form field",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := opts.conv.FormatForEditing(args[0], opts.zone)
				if value == "" {
					return fmt.Errorf("%w: %q", errUnresolvable, args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), value)

				return nil
			},
		},
		display,
		&cobra.Command{
			Use:   "date-key <value>",
			Short: "Print the calendar day a value falls on",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := opts.conv.DateKey(args[0], opts.zone)
				if key == "" {
					return fmt.Errorf("%w: %q", errUnresolvable, args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), key)

				return nil
			},
		},
		&cobra.Command{
			Use:   "call-time <local>",
			Short: "Derive the default call time for a naive start",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				callTime := opts.conv.DeriveCallTimeOffset(args[0])
				if callTime == "" {
					return fmt.Errorf("%w: %q", errUnresolvable, args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), callTime)

				return nil
			},
		},
		&cobra.Command{
			Use:   "locked <value>",
			Short: "Report whether edits to an event starting at value are locked",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if opts.conv.IsPastLockBoundary(args[0], opts.zone) {
					fmt.Fprintln(cmd.OutOrStdout(), "locked")

					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), "open")

				return nil
			},
		},
		&cobra.Command{
			Use:   "clock <HH:MM>",
			Short: "Render a zone-less clock time",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), opts.conv.FormatClockTime(args[0]))

				return nil
			},
		},
	)

	return tz
}
