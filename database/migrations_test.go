package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups), "every up migration needs a down migration")
}

func TestToPgx5URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected string
	}{
		{in: "postgres://u:p@localhost:5432/db?sslmode=disable", expected: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{in: "postgresql://u:p@localhost/db", expected: "pgx5://u:p@localhost/db"},
		{in: "pgx5://u:p@localhost/db", expected: "pgx5://u:p@localhost/db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, toPgx5URL(tt.in))
		})
	}
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	_, connStr := SetupTestDB(t)

	m, err := NewMigrator(connStr)
	require.NoError(t, err)
	defer func() {
		_, _ = m.Close()
	}()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(len(ups)), version)

	// Walk the full history down and back up again.
	require.NoError(t, m.Steps(-len(ups)))
	require.NoError(t, m.Steps(len(ups)))

	version, err = MigrateDown(connStr, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(len(ups)-1), version)

	version, err = MigrateUp(connStr)
	require.NoError(t, err)
	assert.Equal(t, uint(len(ups)), version)
}
