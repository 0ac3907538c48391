package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/usersync/internal/db"
	"github.com/stacklok/usersync/internal/store"
	"github.com/stacklok/usersync/internal/users"
)

const noUsersMessage = "No user data found in the database."

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored users with their address, company and credit card",
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	details, err := store.NewPostgresStore(conn.Pool).ListUsers(ctx)
	if err != nil {
		return err
	}

	return renderUsers(cmd.OutOrStdout(), details)
}

// renderUsers writes one table row per user
func renderUsers(w io.Writer, details []users.UserDetails) error {
	if len(details) == 0 {
		_, err := fmt.Fprintln(w, noUsersMessage)
		return err
	}

	rows := make([][]string, 0, len(details))
	for _, d := range details {
		card := "N/A"
		if d.CreditCard != nil {
			card = d.CreditCard.String()
		}
		rows = append(rows, []string{
			strconv.FormatInt(d.User.ID, 10),
			d.User.Name,
			d.User.Email,
			d.Address.String(),
			d.Company.String(),
			card,
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Email", "Address", "Company", "Credit Card")
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build user table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render user table: %w", err)
	}
	return nil
}
