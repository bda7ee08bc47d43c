package config

import "time"

// Default values applied to any configuration field left unset.  These are
// chosen so that a bare `apiserver` start against local docker-compose
// services works without a config file.
const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerIdleTimeout     = 60 * time.Second
	DefaultServerShutdownTimeout = 20 * time.Second

	DefaultDatabaseHost            = "localhost"
	DefaultDatabasePort            = 5432
	DefaultDatabaseUser            = "compliance"
	DefaultDatabaseName            = "compliance"
	DefaultDatabaseSSLMode         = "disable"
	DefaultDatabaseMaxOpenConns    = 25
	DefaultDatabaseMaxIdleConns    = 5
	DefaultDatabaseConnMaxLifetime = 30 * time.Minute
	DefaultDatabaseMigrationsPath  = "migrations"

	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolSize     = 10
	DefaultRedisScoreTTL     = 5 * time.Minute

	DefaultKafkaClientID     = "compliance-engine"
	DefaultKafkaWriteTimeout = 10 * time.Second
	DefaultKafkaRequiredAcks = 1

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	DefaultMetricsPath = "/metrics"

	DefaultGenerationInterval = 6 * time.Hour
	DefaultUpcomingWindowDays = 90
)

// ApplyDefaults fills in zero-valued fields on cfg.  Boolean fields are left
// alone: their zero value is a deliberate "off".
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultServerIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDatabaseHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDatabasePort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDatabaseUser
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = DefaultDatabaseName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDatabaseSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDatabaseMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDatabaseMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDatabaseConnMaxLifetime
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = DefaultDatabaseMigrationsPath
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.ScoreTTL == 0 {
		cfg.Redis.ScoreTTL = DefaultRedisScoreTTL
	}

	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = DefaultKafkaRequiredAcks
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Engine.GenerationInterval == 0 {
		cfg.Engine.GenerationInterval = DefaultGenerationInterval
	}
	if cfg.Engine.UpcomingWindowDays == 0 {
		cfg.Engine.UpcomingWindowDays = DefaultUpcomingWindowDays
	}
}
