package app

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/stacklok/usersync/database"
)

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Migrate the database down",
	Long: `Migrate the database schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  usersync migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way (WARNING: destroys all data)
  usersync migrate down --config config.yaml --yes`,
	RunE: runMigrateDown,
}

func init() {
	migrateDownCmd.Flags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	// Check for overflow before conversion
	if numSteps > math.MaxInt32 {
		return fmt.Errorf("number of steps exceeds maximum allowed value")
	}

	cfg, connString, closeLog, err := migrationTarget()
	if err != nil {
		return err
	}
	defer closeLog()

	prompt := fmt.Sprintf("WARNING: This will migrate down %d step(s) on %s and may result in data loss. Continue?",
		numSteps, describeTarget(cfg))
	if numSteps == 0 {
		prompt = fmt.Sprintf("WARNING: This will migrate down ALL steps on %s and may result in complete data loss. Continue?",
			describeTarget(cfg))
	}
	if err := confirmMigration(cmd, prompt); err != nil {
		return err
	}

	if numSteps == 0 {
		slog.Warn("Migrating down all steps - this will remove all schema!")
	} else {
		slog.Info("Migrating down", "steps", numSteps)
	}

	version, err := database.MigrateDown(connString, int(numSteps)) // #nosec G115 -- overflow checked above
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if version == 0 {
		slog.Info("Database schema has been completely removed")
	} else {
		slog.Info("Migration completed successfully", "version", version)
	}
	return nil
}
