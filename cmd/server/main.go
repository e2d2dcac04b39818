package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arhyth/bankledger"
	"github.com/rs/zerolog"
)

func main() {
	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := bankledger.LoadConfig(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading config file")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	repo, err := bankledger.OpenJSONEndpoint(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("error opening store")
	}

	rates := bankledger.NewHTTPRateSource(cfg.Rates, nil, &logger)
	var svc bankledger.Service = bankledger.NewService(repo, rates, &logger)
	svc = bankledger.NewValidationMiddleware(repo)(svc)
	limits := bankledger.NewServiceLimits(cfg.Limits.Reads, cfg.Limits.Writes, cfg.Limits.Timeout)
	svc = bankledger.NewLimitMiddleware(limits)(svc)
	brkrs := bankledger.NewServiceBreaker(cfg.Limits.BreakerFailures, cfg.Limits.BreakerTimeout, &logger)
	svc = bankledger.NewCircuitBreakMiddleware(brkrs)(svc)
	hndlr := bankledger.NewHTTPHandler(svc, &logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: hndlr,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store.Path).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Err(err).Msg("error shutting down")
	}
}
