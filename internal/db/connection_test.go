package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/usersync/database"
	"github.com/stacklok/usersync/internal/config"
)

func TestPoolConfig(t *testing.T) {
	t.Parallel()

	valid := func() *config.DatabaseConfig {
		return &config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "usersync",
			Password: "secret",
			Database: "users",
			SSLMode:  "disable",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.DatabaseConfig) *config.DatabaseConfig
		wantErr string
	}{
		{name: "nil config", mutate: func(*config.DatabaseConfig) *config.DatabaseConfig { return nil }, wantErr: "database configuration is required"},
		{name: "missing host", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.Host = ""; return c }, wantErr: "database host is required"},
		{name: "missing port", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.Port = 0; return c }, wantErr: "database port is required"},
		{name: "missing user", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.User = ""; return c }, wantErr: "database user is required"},
		{name: "missing database", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.Database = ""; return c }, wantErr: "database name is required"},
		{name: "missing password", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.Password = ""; return c }, wantErr: "failed to get database password"},
		{name: "bad lifetime", mutate: func(c *config.DatabaseConfig) *config.DatabaseConfig { c.ConnMaxLifetime = "forever"; return c }, wantErr: "invalid connection max lifetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := PoolConfig(tt.mutate(valid()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := PoolConfig(valid())
		require.NoError(t, err)
		assert.Equal(t, int32(defaultMaxOpenConns), cfg.MaxConns)
		assert.Equal(t, int32(defaultMaxIdleConns), cfg.MinConns)
		assert.Equal(t, defaultConnMaxLifetime, cfg.MaxConnLifetime)
		assert.Equal(t, defaultConnectTimeout, cfg.ConnConfig.ConnectTimeout)
		assert.Equal(t, "localhost", cfg.ConnConfig.Host)
		assert.Equal(t, "secret", cfg.ConnConfig.Password)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.MaxOpenConns = 4
		c.MaxIdleConns = 10
		c.ConnMaxLifetime = "1h"

		cfg, err := PoolConfig(c)
		require.NoError(t, err)
		assert.Equal(t, int32(4), cfg.MaxConns)
		assert.Equal(t, int32(4), cfg.MinConns, "idle connections are capped by the pool size")
		assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	})
}

func TestNewConnection(t *testing.T) {
	t.Parallel()
	_, connStr := database.SetupTestDB(t)

	parsed, err := pgx.ParseConfig(connStr)
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := NewConnection(ctx, &config.DatabaseConfig{
		Host:     parsed.Host,
		Port:     int(parsed.Port),
		User:     parsed.User,
		Password: parsed.Password,
		Database: parsed.Database,
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Ping(ctx))

	count, err := conn.Queries.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
