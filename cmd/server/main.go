package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/honeylocust/chowdown/internal/app"
	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	res, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "err", err)
		os.Exit(1)
	}

	stoppables := []shutdown.Stoppable{res.Server}
	if res.Neo4j != nil {
		stoppables = append(stoppables, res.Neo4j)
	}

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		10*time.Second,
		logger,
		stoppables...,
	)

	logger.Info("chowdown server starting", "addr", cfg.Addr, "mode", cfg.SearchMode)

	if err := res.Server.Run(); err != nil {
		logger.Error("server exited with error", "err", err)
	} else {
		logger.Info("server stopped")
	}
}
