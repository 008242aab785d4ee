package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/uaenergy/news/internal/cli"
)

func main() {
	// Interrupts cancel in-flight requests; commands report the cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
