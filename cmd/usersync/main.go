// Package main is the entry point for the usersync service.
package main

import (
	"log/slog"
	"os"

	"github.com/stacklok/usersync/cmd/usersync/app"
	"github.com/stacklok/usersync/internal/logging"
)

func main() {
	// Bootstrap logger on stderr. Commands that load a configuration replace it
	// once the debug flag and log directory are known.
	handler, _, err := logging.New()
	if err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(handler))

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
