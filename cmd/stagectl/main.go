package main

import (
	"os"
	_ "time/tzdata"

	"stagehand/config"
	"stagehand/infras/kafka"
	"stagehand/internal/cli"
	"stagehand/shared/logger"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if err := cli.NewRootCommand(cfg, timezone.SystemClock{}, kafka.New(cfg)).Execute(); err != nil {
		log.Error().Err(err).Msg("stagectl failed")
		os.Exit(1)
	}
}
