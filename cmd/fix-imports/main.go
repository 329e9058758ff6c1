package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alucardeht/mcp-proxy-devtools/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewFixImportsCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
