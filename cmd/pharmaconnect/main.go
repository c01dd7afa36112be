package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pharmaconnect_core/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	// PersistentPostRunE не вызывается, если команда вернула ошибку
	if closeErr := closeClient(); closeErr != nil {
		logger.Error("Failed to close client", "error", closeErr)
	}
	if err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
