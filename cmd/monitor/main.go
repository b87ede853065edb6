package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquaguard/internal/config"
	"aquaguard/internal/logger"
	"aquaguard/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("main")

	monitor, err := service.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("monitor init failed")
	}

	// run monitor in background
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := monitor.Run(ctx); err != nil {
			log.Error().Err(err).Msg("monitor exited")
			cancel()
		}
	}()

	// wait for termination signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info().Msg("shutting down")
		cancel()
	case <-done:
	}

	// let the monitor finish its graceful shutdown
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Warn().Msg("shutdown timeout exceeded")
	}
	log.Info().Msg("exited")
}
