package handler

import (
	"net/http"
	"sync"
	_ "time/tzdata"

	"stagehand/config"
	"stagehand/di"
	"stagehand/shared/logger"
	stagehandHTTP "stagehand/transport/http"
	"stagehand/transport/http/response"

	"github.com/rs/zerolog/log"
)

var (
	server  *stagehandHTTP.HTTP
	initErr error
	once    sync.Once
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server, initErr = di.InitializeService()
	})

	if initErr != nil {
		log.Error().Err(initErr).Msg("Failed to initialize service")

		response.WithError(w, initErr)

		return
	}

	server.ServeHTTP(w, r)
}
