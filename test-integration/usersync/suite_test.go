package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/stacklok/usersync/database"
	"github.com/stacklok/usersync/test-integration/usersync/helpers"
)

var (
	ctx    context.Context
	cancel context.CancelFunc

	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	dbSettings  helpers.DatabaseSettings
)

func TestUsersyncIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "Usersync Integration Suite")
}

var _ = BeforeSuite(func() {
	ctx, cancel = context.WithCancel(context.TODO())

	dbSettings = helpers.DatabaseSettings{
		User:     "usersync",
		Password: "usersync",
		Database: "users",
	}

	var err error
	pgContainer, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbSettings.Database),
		postgres.WithUsername(dbSettings.User),
		postgres.WithPassword(dbSettings.Password),
		postgres.BasicWaitStrategies(),
	)
	Expect(err).NotTo(HaveOccurred())

	dbSettings.Host, err = pgContainer.Host(ctx)
	Expect(err).NotTo(HaveOccurred())
	mappedPort, err := pgContainer.MappedPort(ctx, "5432/tcp")
	Expect(err).NotTo(HaveOccurred())
	dbSettings.Port = mappedPort.Int()

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	_, err = database.MigrateUp(connString)
	Expect(err).NotTo(HaveOccurred())

	pool, err = pgxpool.New(ctx, connString)
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if pool != nil {
		pool.Close()
	}
	if pgContainer != nil {
		Expect(tc.TerminateContainer(pgContainer)).To(Succeed())
	}
	if cancel != nil {
		cancel()
	}
})

// createTempDir creates a temporary directory for test files
func createTempDir(prefix string) string {
	dir, err := os.MkdirTemp("", prefix)
	Expect(err).NotTo(HaveOccurred())
	return dir
}

// cleanupTempDir removes a temporary directory
func cleanupTempDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		By(fmt.Sprintf("Warning: failed to cleanup temp dir %s: %v", dir, err))
	}
}
