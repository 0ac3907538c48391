// Package config provides configuration loading and management for the user sync service.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/usersync/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of every environment override, e.g. USERSYNC_DATABASE_HOST
	EnvPrefix = "USERSYNC"

	// DefaultDirectoryURL is the public JSONPlaceholder API
	DefaultDirectoryURL = "https://jsonplaceholder.typicode.com"

	// DefaultCreditCardURL is the public FakerAPI
	DefaultCreditCardURL = "https://fakerapi.it/api/v2"

	// DefaultSourceTimeout bounds every upstream request
	DefaultSourceTimeout = 15 * time.Second

	// DefaultSyncInterval is the time between two scheduled passes
	DefaultSyncInterval = time.Minute

	// DefaultRetryCooldown is the fixed wait between attempts of a failed pass
	DefaultRetryCooldown = 60 * time.Second

	// DefaultMaxRetries is the number of retries after the first failed attempt
	DefaultMaxRetries = 3

	// DefaultServerAddress is the listen address of the ops API
	DefaultServerAddress = ":8080"

	// DefaultLockKey is the Redis key guarding the sync pass
	DefaultLockKey = "usersync:sync-lock"

	// DefaultLockTTL is the Redis lock expiry
	DefaultLockTTL = 10 * time.Minute
)

const (
	// LockTypeLocal guards passes with an in-process mutex
	LockTypeLocal = "local"

	// LockTypeFile guards passes across processes on one host with a file lock
	LockTypeFile = "file"

	// LockTypeRedis guards passes across replicas with a Redis key
	LockTypeRedis = "redis"

	// DefaultLockFileName is created in the system temp directory when lock.file.path is unset
	DefaultLockFileName = "usersync.lock"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Sources   SourcesConfig     `yaml:"sources"`
	Sync      SyncConfig        `yaml:"sync"`
	Lock      LockConfig        `yaml:"lock"`
	Logging   LoggingConfig     `yaml:"logging"`
	Server    ServerConfig      `yaml:"server"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// Password is the database password. Prefer PasswordFile outside development.
	Password string `yaml:"password,omitempty"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// SourcesConfig locates the two upstream APIs
type SourcesConfig struct {
	// DirectoryURL is the base URL of the user directory; "/users" is appended
	DirectoryURL string `yaml:"directoryURL,omitempty"`

	// CreditCardURL is the base URL of the card generator; "/creditCards" is appended
	CreditCardURL string `yaml:"creditCardURL,omitempty"`

	// Timeout bounds each request (e.g., "15s")
	Timeout string `yaml:"timeout,omitempty"`
}

// SyncConfig defines the schedule and retry policy of sync passes
type SyncConfig struct {
	Interval      string `yaml:"interval,omitempty"`
	RetryCooldown string `yaml:"retryCooldown,omitempty"`
	MaxRetries    *int   `yaml:"maxRetries,omitempty"`
}

// LockConfig selects how concurrent passes are prevented
type LockConfig struct {
	// Type is "local" (default), "file" or "redis"
	Type  string          `yaml:"type,omitempty"`
	File  *FileLockConfig `yaml:"file,omitempty"`
	Redis *RedisConfig    `yaml:"redis,omitempty"`
}

// FileLockConfig locates the lock file shared by processes on one host
type FileLockConfig struct {
	Path string `yaml:"path,omitempty"`
}

// RedisConfig defines the broker used for the distributed pass lock
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
}

// LoggingConfig controls the log level and the rotating log file
type LoggingConfig struct {
	Debug bool `yaml:"debug,omitempty"`

	// Dir is where usersync.log is written. Empty logs to stderr only.
	Dir string `yaml:"dir,omitempty"`
}

// ServerConfig defines the ops HTTP server
type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. The Password field, which environment overrides also populate
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		// Trim whitespace (including newlines) from file content
		return strings.TrimSpace(string(data)), nil
	}

	if d.Password != "" {
		return d.Password, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile, password or the %s_DATABASE_PASSWORD environment variable",
		EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String(), nil
}

// GetConnMaxLifetime returns the parsed connection lifetime, or zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDurationOr(d.ConnMaxLifetime, 0)
}

// GetDirectoryURL returns the directory base URL without a trailing slash
func (s *SourcesConfig) GetDirectoryURL() string {
	if s.DirectoryURL == "" {
		return DefaultDirectoryURL
	}
	return strings.TrimRight(s.DirectoryURL, "/")
}

// GetCreditCardURL returns the card generator base URL without a trailing slash
func (s *SourcesConfig) GetCreditCardURL() string {
	if s.CreditCardURL == "" {
		return DefaultCreditCardURL
	}
	return strings.TrimRight(s.CreditCardURL, "/")
}

// GetTimeout returns the per-request timeout
func (s *SourcesConfig) GetTimeout() time.Duration {
	return parseDurationOr(s.Timeout, DefaultSourceTimeout)
}

// GetInterval returns the time between scheduled passes
func (s *SyncConfig) GetInterval() time.Duration {
	return parseDurationOr(s.Interval, DefaultSyncInterval)
}

// GetRetryCooldown returns the fixed wait between attempts
func (s *SyncConfig) GetRetryCooldown() time.Duration {
	return parseDurationOr(s.RetryCooldown, DefaultRetryCooldown)
}

// GetMaxRetries returns the retry budget of a pass. Zero disables retries.
func (s *SyncConfig) GetMaxRetries() int {
	if s.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *s.MaxRetries
}

// GetType returns the lock type, "local" when unset
func (l *LockConfig) GetType() string {
	if l.Type == "" {
		return LockTypeLocal
	}
	return l.Type
}

// GetPath returns the lock file path
func (f *FileLockConfig) GetPath() string {
	if f == nil || f.Path == "" {
		return filepath.Join(os.TempDir(), DefaultLockFileName)
	}
	return f.Path
}

// GetAddr returns the Redis address in host:port form
func (r *RedisConfig) GetAddr() string {
	port := r.Port
	if port == 0 {
		port = 6379
	}
	return net.JoinHostPort(r.Host, strconv.Itoa(port))
}

// GetKey returns the lock key
func (r *RedisConfig) GetKey() string {
	if r.Key == "" {
		return DefaultLockKey
	}
	return r.Key
}

// GetTTL returns the lock expiry
func (r *RedisConfig) GetTTL() time.Duration {
	return parseDurationOr(r.TTL, DefaultLockTTL)
}

// GetAddress returns the ops server listen address
func (s *ServerConfig) GetAddress() string {
	if s.Address == "" {
		return DefaultServerAddress
	}
	return s.Address
}

// LoadConfig loads configuration from an optional YAML file, applies
// environment overrides and validates the result
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		// Read the entire file into memory
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Database != nil {
		if err := validateDatabaseConfig(c.Database); err != nil {
			return err
		}
	}

	if err := validateSourcesConfig(&c.Sources); err != nil {
		return err
	}

	if err := validateSyncConfig(&c.Sync); err != nil {
		return err
	}

	if err := validateLockConfig(&c.Lock); err != nil {
		return err
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

// validateDatabaseConfig validates the database connection settings
func validateDatabaseConfig(db *DatabaseConfig) error {
	if db.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if db.Port <= 0 || db.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", db.Port)
	}
	if db.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if db.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if err := validateDuration("database.connMaxLifetime", db.ConnMaxLifetime); err != nil {
		return err
	}
	return nil
}

// validateSourcesConfig validates the upstream URLs and timeout
func validateSourcesConfig(s *SourcesConfig) error {
	for name, raw := range map[string]string{
		"sources.directoryURL":  s.DirectoryURL,
		"sources.creditCardURL": s.CreditCardURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s must use http or https, got %q", name, raw)
		}
	}
	return validateDuration("sources.timeout", s.Timeout)
}

// validateSyncConfig validates the schedule and retry policy
func validateSyncConfig(s *SyncConfig) error {
	if err := validateDuration("sync.interval", s.Interval); err != nil {
		return err
	}
	if s.Interval != "" && s.GetInterval() <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	if err := validateDuration("sync.retryCooldown", s.RetryCooldown); err != nil {
		return err
	}
	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return fmt.Errorf("sync.maxRetries cannot be negative, got %d", *s.MaxRetries)
	}
	return nil
}

// validateLockConfig validates the pass lock settings
func validateLockConfig(l *LockConfig) error {
	switch l.GetType() {
	case LockTypeLocal, LockTypeFile:
		return nil
	case LockTypeRedis:
		if l.Redis == nil || l.Redis.Host == "" {
			return fmt.Errorf("lock.redis.host is required when lock.type is %s", LockTypeRedis)
		}
		return validateDuration("lock.redis.ttl", l.Redis.TTL)
	default:
		return fmt.Errorf("lock.type must be %s, %s or %s, got %q", LockTypeLocal, LockTypeFile, LockTypeRedis, l.Type)
	}
}

func validateDuration(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '1m'): %w", name, err)
	}
	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
