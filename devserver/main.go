package main

import (
	"os"
	"strings"

	"github.com/krancour/bizdesk/devserver/internal/authx"
	"github.com/krancour/bizdesk/devserver/internal/restmachinery"
	"github.com/krancour/bizdesk/internal/signals"
	"github.com/krancour/bizdesk/internal/version"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(
		strings.ToLower(os.Getenv("LOG_LEVEL")),
	); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	logger.Info().
		Str("version", version.Version()).
		Str("commit", version.Commit()).
		Msg("Starting BizDesk development API server")

	ctx := signals.Context()

	serverConfig, err := restmachinery.GetServerConfigFromEnvironment()
	if err != nil {
		logger.Fatal().Err(err).Msg("")
	}
	authConfig, err := authx.GetConfigFromEnvironment()
	if err != nil {
		logger.Fatal().Err(err).Msg("")
	}

	store := authx.NewMemoryStore()
	service := authx.NewService(store, authConfig.SessionTTL, logger)
	if authConfig.SeedEnabled {
		if err = authx.Seed(ctx, store, service, authConfig); err != nil {
			logger.Fatal().Err(err).Msg("")
		}
		logger.Info().
			Str("email", authConfig.SeedUserEmail).
			Msg("seeded demo user")
	}

	baseEndpoints := &restmachinery.BaseEndpoints{Logger: logger}
	server := restmachinery.NewServer(
		serverConfig,
		baseEndpoints,
		[]restmachinery.Endpoints{
			authx.NewEndpoints(baseEndpoints, service),
		},
	)
	if err = server.ListenAndServe(ctx); err != nil {
		logger.Fatal().Err(err).Msg("")
	}
}
