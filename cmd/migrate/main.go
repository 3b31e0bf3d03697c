package main

import (
	"fmt"
	"os"

	"stagehand/config"
	"stagehand/helper"
	"stagehand/shared/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the embedded postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	actions := []struct {
		action string
		short  string
	}{
		{action: helper.ActionUp, short: "Apply every pending migration"},
		{action: helper.ActionDown, short: "Roll back the latest migration"},
		{action: helper.ActionStepUp, short: "Apply the next pending migration"},
		{action: helper.ActionDrop, short: "Roll back every migration"},
	}

	for _, a := range actions {
		root.AddCommand(&cobra.Command{
			Use:   a.action,
			Short: a.short,
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return helper.Runner(cfg, a.action)
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, dirty, err := helper.Version(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)

			return nil
		},
	})

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
}
