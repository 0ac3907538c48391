package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/usersync/internal/config"
)

var errMigrationCancelled = errors.New("migration cancelled by user")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool",
	Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

func init() {
	migrateCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

// migrationTarget loads the configuration and returns its connection string
func migrationTarget() (*config.Config, string, func(), error) {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}

	if cfg.Database == nil {
		closeLog()
		return nil, "", nil, fmt.Errorf("database configuration is required")
	}

	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		closeLog()
		return nil, "", nil, fmt.Errorf("failed to build connection string: %w", err)
	}
	return cfg, connString, closeLog, nil
}

// confirmMigration asks before touching the schema unless --yes is set.
// Without a terminal on stdin there is nobody to ask, so it refuses.
func confirmMigration(cmd *cobra.Command, prompt string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) { // #nosec G115 -- file descriptors fit in int
		return fmt.Errorf("stdin is not a terminal, rerun with --yes to confirm")
	}

	if !confirm(cmd.OutOrStdout(), os.Stdin, prompt) {
		slog.Info("Migration cancelled")
		return errMigrationCancelled
	}
	return nil
}

// confirm prints prompt and reports whether the answer was yes
func confirm(out io.Writer, in io.Reader, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

func describeTarget(cfg *config.Config) string {
	return fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
}
