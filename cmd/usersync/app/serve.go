package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	syncapp "github.com/stacklok/usersync/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic sync and the ops HTTP server",
	Long: `Run a sync pass immediately and then on every sync interval, while serving
/health, /readiness, /status, /version and /metrics.

The configuration file (--config) and USERSYNC_* environment variables set the
database, the upstream sources, the sync schedule and the pass lock.
See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides server.address)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []syncapp.SyncAppOptions{syncapp.WithConfig(cfg)}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, syncapp.WithAddress(address))
	}

	app, err := syncapp.NewSyncApp(cmd.Context(), opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		return app.Stop(defaultGracefulTimeout)
	case err := <-errCh:
		app.Close()
		if err != nil {
			slog.Error("Server stopped with error", "error", err)
		}
		return err
	}
}
