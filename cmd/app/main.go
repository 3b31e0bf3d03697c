package main

import (
	_ "time/tzdata"

	"stagehand/config"
	"stagehand/di"
	"stagehand/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Stagehand API
// @version 1.0
// @description Performance, rehearsal and roster management for a performing arts studio.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app, err := di.InitializeApp()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	app.Run()
}
