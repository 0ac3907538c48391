package helpers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onsi/gomega"
)

// DatabaseSettings locates the test database
type DatabaseSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// RowCounts reports the number of rows per table
type RowCounts struct {
	Users       int
	Addresses   int
	Companies   int
	CreditCards int
}

// CountRows counts the rows of every user table
func CountRows(ctx context.Context, pool *pgxpool.Pool) RowCounts {
	var counts RowCounts
	err := pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM addresses),
			(SELECT count(*) FROM companies),
			(SELECT count(*) FROM credit_cards)
	`).Scan(&counts.Users, &counts.Addresses, &counts.Companies, &counts.CreditCards)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return counts
}

// ResetDatabase removes all users, their related rows and the sync status
func ResetDatabase(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx, `TRUNCATE users, addresses, companies, credit_cards, sync_status RESTART IDENTITY`)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
}
