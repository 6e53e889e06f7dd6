package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sheets_quota_client/internal/app"
	"sheets_quota_client/internal/cli"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Cancel in-flight calls and quota waits on Ctrl-C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		cancel()
		os.Exit(1)
	}
}
