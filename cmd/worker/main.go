package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docketdesk/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Consume export.requested, poll pending exports and sweep expired artifacts.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	app, err := bootstrap.BuildWorker(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("worker shutdown close failed", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
