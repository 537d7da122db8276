package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/bardock-dev/bardock/internal/cli/app"
	"github.com/bardock-dev/bardock/internal/core/config"
	"github.com/bardock-dev/bardock/internal/core/failure"
	"github.com/bardock-dev/bardock/internal/logging"
)

func main() {
	dotenvErr := logging.LoadDotenv()
	logging.Init(os.Getenv, os.Stderr)
	if dotenvErr != nil {
		log.Warn("ignoring .env file", "err", dotenvErr)
	}

	cfg, err := config.Default(os.Getenv)
	if err != nil {
		app.Report(os.Stderr, err)
		os.Exit(failure.ExitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Run(ctx, cfg, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
