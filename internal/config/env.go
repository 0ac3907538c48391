package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envOverride maps a config key to its environment variables. The prefixed
// name is always bound first; aliases are the legacy unprefixed names.
type envOverride struct {
	key     string
	aliases []string
	apply   func(c *Config, value string) error
}

var envOverrides = []envOverride{
	{"database.host", []string{"DB_HOST"}, stringField(func(c *Config) *string { return &c.database().Host })},
	{"database.port", []string{"DB_PORT"}, intField(func(c *Config) *int { return &c.database().Port })},
	{"database.user", []string{"DB_USER"}, stringField(func(c *Config) *string { return &c.database().User })},
	{"database.password", []string{"DB_PASSWORD"}, stringField(func(c *Config) *string { return &c.database().Password })},
	{"database.passwordFile", nil, stringField(func(c *Config) *string { return &c.database().PasswordFile })},
	{"database.database", []string{"DB_NAME"}, stringField(func(c *Config) *string { return &c.database().Database })},
	{"database.sslMode", nil, stringField(func(c *Config) *string { return &c.database().SSLMode })},

	{"sources.directoryURL", []string{"JSON_PLACEHOLDER_URL"}, stringField(func(c *Config) *string { return &c.Sources.DirectoryURL })},
	{"sources.creditCardURL", []string{"FAKERAPI_URL"}, stringField(func(c *Config) *string { return &c.Sources.CreditCardURL })},
	{"sources.timeout", nil, stringField(func(c *Config) *string { return &c.Sources.Timeout })},

	{"sync.interval", nil, stringField(func(c *Config) *string { return &c.Sync.Interval })},
	{"sync.retryCooldown", nil, stringField(func(c *Config) *string { return &c.Sync.RetryCooldown })},
	{"sync.maxRetries", nil, func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.Sync.MaxRetries = &n
		return nil
	}},

	{"lock.type", nil, stringField(func(c *Config) *string { return &c.Lock.Type })},
	{"lock.file.path", nil, stringField(func(c *Config) *string { return &c.lockFile().Path })},
	{"lock.redis.host", []string{"BROKER_HOST"}, stringField(func(c *Config) *string { return &c.redis().Host })},
	{"lock.redis.port", []string{"BROKER_PORT"}, intField(func(c *Config) *int { return &c.redis().Port })},
	{"lock.redis.username", []string{"BROKER_USER"}, stringField(func(c *Config) *string { return &c.redis().Username })},
	{"lock.redis.password", []string{"BROKER_PASSWORD"}, stringField(func(c *Config) *string { return &c.redis().Password })},
	{"lock.redis.key", nil, stringField(func(c *Config) *string { return &c.redis().Key })},

	{"logging.debug", []string{"DEBUG"}, boolField(func(c *Config) *bool { return &c.Logging.Debug })},
	{"logging.dir", []string{"LOG_DIR"}, stringField(func(c *Config) *string { return &c.Logging.Dir })},

	{"server.address", nil, stringField(func(c *Config) *string { return &c.Server.Address })},
}

// EnvName returns the prefixed environment variable for a config key,
// e.g. "database.sslMode" becomes USERSYNC_DATABASE_SSLMODE
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// applyEnvOverrides overwrites config values with any matching environment variable
func applyEnvOverrides(c *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, o := range envOverrides {
		names := append([]string{EnvName(o.key)}, o.aliases...)
		if err := v.BindEnv(append([]string{o.key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", o.key, err)
		}
	}

	for _, o := range envOverrides {
		if !v.IsSet(o.key) {
			continue
		}
		if err := o.apply(c, v.GetString(o.key)); err != nil {
			return fmt.Errorf("invalid value for %s: %w", o.key, err)
		}
	}
	return nil
}

func (c *Config) database() *DatabaseConfig {
	if c.Database == nil {
		c.Database = &DatabaseConfig{}
	}
	return c.Database
}

func (c *Config) lockFile() *FileLockConfig {
	if c.Lock.File == nil {
		c.Lock.File = &FileLockConfig{}
	}
	return c.Lock.File
}

func (c *Config) redis() *RedisConfig {
	if c.Lock.Redis == nil {
		c.Lock.Redis = &RedisConfig{}
	}
	return c.Lock.Redis
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
