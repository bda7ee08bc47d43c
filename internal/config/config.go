// Package config defines the engine configuration model and its loading
// logic.  Configuration is sourced from a YAML file with environment variable
// overrides (prefix COMPLY_), following a strict precedence: explicit file >
// environment > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object for all engine processes.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig holds the HTTP API server parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig holds Redis connection and cache parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	// ScoreTTL bounds how long a computed health score may be served from
	// cache before recomputation.
	ScoreTTL time.Duration `mapstructure:"score_ttl"`
}

// KafkaConfig holds Kafka producer parameters for obligation lifecycle events.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	// Enabled allows running without a broker (events are dropped with a
	// warning).  Useful for local development and the CLI.
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig mirrors logging.Config; kept separate so the config package
// does not depend on the logging package.
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// EngineConfig holds obligation engine tunables.
type EngineConfig struct {
	// GenerationInterval is how often the worker regenerates obligations for
	// all known entities.
	GenerationInterval time.Duration `mapstructure:"generation_interval"`
	// UpcomingWindowDays is the default look-ahead window for the upcoming
	// deadlines query when the caller does not specify one.
	UpcomingWindowDays int `mapstructure:"upcoming_window_days"`
}

// Validate checks the configuration for values that would prevent the engine
// from operating.  It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port must be in (0, 65535], got %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("config: database.name is required")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("config: database.max_idle_conns (%d) cannot exceed max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Redis.ScoreTTL < 0 {
		return fmt.Errorf("config: redis.score_ttl cannot be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers is required when kafka.enabled is true")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level %q is not one of debug|info|warn|error", c.Logging.Level)
	}
	if c.Engine.GenerationInterval < time.Minute {
		return fmt.Errorf("config: engine.generation_interval must be at least 1m, got %s", c.Engine.GenerationInterval)
	}
	if c.Engine.UpcomingWindowDays <= 0 {
		return fmt.Errorf("config: engine.upcoming_window_days must be positive, got %d", c.Engine.UpcomingWindowDays)
	}
	return nil
}
