package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docketdesk/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP, with the export worker embedded when configured.
//
//	@title			docketdesk API
//	@version		1.0
//	@description	Public comment intake, moderation and export back office.
//	@BasePath		/
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	app, err := bootstrap.BuildAPI(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api shutdown close failed", "error", err.Error())
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("api stopped with error", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
