package app

import (
	"fmt"

	"github.com/spf13/cobra"

	syncapp "github.com/stacklok/usersync/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass",
	Long: `Run one sync pass with the configured retry policy and print how many new
users were committed. The pass is skipped when another process holds the pass lock.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	app, err := syncapp.NewSyncApp(cmd.Context(), syncapp.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer app.Close()

	report, err := app.RunOnce(cmd.Context())
	if err != nil {
		if report != nil {
			return fmt.Errorf("sync pass failed after %d attempts: %w", report.Attempts, err)
		}
		return fmt.Errorf("sync pass failed: %w", err)
	}
	if report.Skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Another sync pass is in progress, skipped.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Message())
	return nil
}
