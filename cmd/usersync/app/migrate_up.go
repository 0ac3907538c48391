package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/usersync/database"
)

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending database migrations",
	Long: `Apply all pending database migrations to bring the schema up to date.
This command reads the database connection parameters from the configuration
and applies every migration that hasn't been run yet.`,
	RunE: runMigrateUp,
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	cfg, connString, closeLog, err := migrationTarget()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := confirmMigration(cmd, fmt.Sprintf("About to apply migrations to database %s. Continue?", describeTarget(cfg))); err != nil {
		if errors.Is(err, errMigrationCancelled) {
			return nil
		}
		return err
	}

	slog.Info("Applying database migrations...")
	version, err := database.MigrateUp(connString)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Migrations applied successfully", "version", version)
	return nil
}
