package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alucardeht/mcp-proxy-devtools/internal/cli"
)

func main() {
	// The server is killed through the context on interrupt, so a hung read
	// still ends with the process reaped.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewSmokeCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
