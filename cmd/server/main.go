// cmd/server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresuchdata/agingrisk/internal/config"
	"github.com/andresuchdata/agingrisk/internal/server"
	"github.com/andresuchdata/agingrisk/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Log.Format, os.Stdout)
	logger.SetLevel(cfg.Log.Level)

	// Wait for interrupt signal to gracefully shut down the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server stopped with error")
	}
}
