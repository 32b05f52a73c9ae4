package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/siteproof-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	a.Start(ctx)
	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Server stopped")
}
