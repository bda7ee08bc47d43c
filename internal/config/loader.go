package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// COMPLY_DATABASE_HOST overrides database.host.
const EnvPrefix = "COMPLY"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)
	return v
}

// registerDefaults makes every configuration key known to viper so that
// AutomaticEnv can resolve overrides during Unmarshal even without a config
// file present.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)

	v.SetDefault("database.host", DefaultDatabaseHost)
	v.SetDefault("database.port", DefaultDatabasePort)
	v.SetDefault("database.user", DefaultDatabaseUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", DefaultDatabaseName)
	v.SetDefault("database.ssl_mode", DefaultDatabaseSSLMode)
	v.SetDefault("database.max_open_conns", DefaultDatabaseMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDatabaseMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDatabaseConnMaxLifetime)
	v.SetDefault("database.migrations_path", DefaultDatabaseMigrationsPath)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", DefaultRedisDialTimeout)
	v.SetDefault("redis.read_timeout", DefaultRedisReadTimeout)
	v.SetDefault("redis.write_timeout", DefaultRedisWriteTimeout)
	v.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	v.SetDefault("redis.score_ttl", DefaultRedisScoreTTL)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.client_id", DefaultKafkaClientID)
	v.SetDefault("kafka.write_timeout", DefaultKafkaWriteTimeout)
	v.SetDefault("kafka.required_acks", DefaultKafkaRequiredAcks)
	v.SetDefault("kafka.enabled", false)

	v.SetDefault("logging.level", DefaultLoggingLevel)
	v.SetDefault("logging.format", DefaultLoggingFormat)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("engine.generation_interval", DefaultGenerationInterval)
	v.SetDefault("engine.upcoming_window_days", DefaultUpcomingWindowDays)
}

// Load reads configuration from path (a YAML file), applies environment
// overrides and defaults, and validates the result.  path may be empty, in
// which case only environment variables and defaults are used.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds configuration from environment variables and defaults
// alone.  Equivalent to Load("").
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// MustLoad is Load that panics on error.  Intended only for main functions
// where a configuration failure is unrecoverable.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch reloads the configuration whenever the file at path changes and
// invokes onChange with the freshly validated result.  Reload failures are
// reported through onError and the previous configuration stays in effect.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	if path == "" {
		return fmt.Errorf("config: watch requires a config file path")
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			if onError != nil {
				onError(fmt.Errorf("config: reload unmarshal failed: %w", err))
			}
			return
		}
		ApplyDefaults(cfg)
		if err := cfg.Validate(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
