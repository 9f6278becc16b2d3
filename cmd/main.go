package main

import (
	"context"
	"errors"
	"os"

	"github.com/euphonyfm/euphony/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "euphony",
		Usage:    "Analyze an MPD library and queue songs that sound alike",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrLocked):
			logger.Fatal("another euphony operation is running; wait for it to finish")
		case errors.Is(err, shared.ErrNoAnchor):
			logger.Fatal("no song is currently playing; play something first")
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
