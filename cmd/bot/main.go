package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"videobot/internal/bot"
	"videobot/internal/infra"
	"videobot/internal/kling"
	"videobot/internal/ops"
	"videobot/internal/telegram"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	issuer, err := kling.NewIssuer(kling.IssuerOptions{
		AccessKey: cfg.KlingAccessKey,
		SecretKey: cfg.KlingSecretKey,
		TTL:       cfg.TokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("configure credential issuer")
	}

	klingClient := kling.NewClient(kling.Options{
		BaseURL: cfg.KlingBaseURL,
		Logger:  &logger,
	})
	watcher := kling.NewWatcher(kling.WatcherOptions{
		Client:   klingClient,
		Tokens:   issuer,
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
		Logger:   &logger,
	})

	tg := telegram.NewClient(telegram.ClientOptions{
		Token:   cfg.BotToken,
		BaseURL: cfg.TelegramBaseURL,
		Logger:  &logger,
	})

	engine := bot.NewEngine(bot.EngineOptions{
		Transport: tg,
		Submitter: klingClient,
		Awaiter:   watcher,
		Tokens:    issuer,
		Logger:    &logger,
	})

	poller := telegram.NewPoller(telegram.PollerOptions{
		Client:        tg,
		Handler:       engine,
		UpdateTimeout: cfg.UpdateTimeout,
		DefaultLocale: cfg.DefaultLocale,
		Logger:        &logger,
	})

	var ready atomic.Bool
	server := infra.NewHTTPServer(cfg, ops.NewRouter(&logger, ready.Load))
	go func() {
		logger.Info().Msgf("ops listening on :%s", cfg.OpsPort)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ready.Store(true)
		logger.Info().Msg("bot update loop started")
		if err := poller.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("update loop stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := engine.Drain(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("in-flight jobs not drained")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown ops server")
	}
	logger.Info().Msg("bot stopped")
}
