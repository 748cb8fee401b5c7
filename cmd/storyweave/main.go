// Package main is the storyweave terminal client: session listings, the
// interactive play loop, and the local transcript archive.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberveil/storyweave/internal/cli"
	"github.com/emberveil/storyweave/internal/platform/config"
	"github.com/emberveil/storyweave/internal/platform/otel"
	"github.com/emberveil/storyweave/internal/platform/timeouts"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := otel.Setup(ctx, "storyweave")
	if err != nil {
		log.Printf("otel setup: %v", err)
	}

	root := cli.New(cfg)
	runErr := root.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}

	if runErr != nil {
		config.Exitf("%v", runErr)
	}
}
