package main

import (
	"context"
	"flag"
	"os"

	"github.com/arhyth/bankledger"
	"github.com/rs/zerolog"
)

func main() {
	cfp := flag.String("config", "config.yml", "path to configuration file")
	sfp := flag.String("seed", "testdata/seed.yml", "path to seed file")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := bankledger.LoadConfig(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading config file")
	}
	seed, err := bankledger.LoadSeed(*sfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading seed file")
	}

	repo, err := bankledger.OpenJSONEndpoint(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("error opening store")
	}
	svc := bankledger.NewValidationMiddleware(repo)(bankledger.NewService(repo, nil, &logger))

	n, err := seed.Apply(context.Background(), svc, &logger)
	if err != nil {
		logger.Fatal().Err(err).Int("created", n).Msg("error seeding store")
	}
	logger.Info().Int("created", n).Str("path", cfg.Store.Path).Msg("store seeded")
}
