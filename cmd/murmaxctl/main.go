// cmd/murmaxctl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"murmax-onboarding/internal/cli"
	"murmax-onboarding/internal/common/config"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/draftstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewStructured("warn", "console")
	store, closeStore, err := draftstore.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "draft store: %v\n", err)
		os.Exit(1)
	}

	res := cli.Run(ctx, &cli.App{
		Store:         store,
		UploadLimitMB: cfg.Uploads.MaxSizeMB,
		RegistryPath:  cfg.Camunda.Registry,
		Styles:        cli.DefaultStyles(),
	}, os.Args[1:], os.Stdout, os.Stderr)

	_ = closeStore()
	stop()
	os.Exit(res.ExitCode)
}
