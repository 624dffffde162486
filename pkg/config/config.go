package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Auth          AuthConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig selects the SQL driver and pool sizing
type DatabaseConfig struct {
	Driver          string // postgres or sqlite3
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SeedUsers       bool
}

// SessionConfig selects the session backend
type SessionConfig struct {
	Backend       string // memory or redis
	TTL           time.Duration
	MaxSessions   int
	RedisURL      string
	RedisPassword string
	RedisDB       int
	CookieName    string
	CookieSecure  bool
}

// AuthConfig configures the stub authenticator
type AuthConfig struct {
	SeedFile   string
	BcryptCost int

	// Login attempts allowed per client address and window
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// AuditConfig configures audit retention
type AuditConfig struct {
	RetentionDays int
	CronSchedule  string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Session:       loadSessionConfig(),
		Auth:          loadAuthConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("GM_HOST", "0.0.0.0"),
		Port:            getEnv("GM_PORT", "8080"),
		ReadTimeout:     getEnvDuration("GM_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("GM_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("GM_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("GM_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("GM_MAX_BODY_BYTES", 1<<20),
		HealthPort:      getEnv("GM_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          getEnv("GM_DB_DRIVER", "sqlite3"),
		URL:             getEnv("GM_DB_URL", "file:groupadmin.db?_foreign_keys=on"),
		MaxOpenConns:    getEnvInt("GM_DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getEnvInt("GM_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("GM_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		SeedUsers:       getEnvBool("GM_DB_SEED_USERS", true),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Backend:       strings.ToLower(getEnv("GM_SESSION_BACKEND", "memory")),
		TTL:           getEnvDuration("GM_SESSION_TTL", 8*time.Hour),
		MaxSessions:   getEnvInt("GM_SESSION_MAX", 10000),
		RedisURL:      getEnv("GM_REDIS_URL", ""),
		RedisPassword: getEnv("GM_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("GM_REDIS_DB", 0),
		CookieName:    getEnv("GM_SESSION_COOKIE", "gm_session"),
		CookieSecure:  getEnvBool("GM_SESSION_COOKIE_SECURE", false),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SeedFile:        getEnv("GM_AUTH_SEED_FILE", ""),
		BcryptCost:      getEnvInt("GM_AUTH_BCRYPT_COST", 10),
		LoginRateLimit:  getEnvInt("GM_LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("GM_LOGIN_RATE_WINDOW", time.Minute),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		RetentionDays: getEnvInt("GM_AUDIT_RETENTION_DAYS", 365),
		CronSchedule:  getEnv("GM_AUDIT_RETENTION_SCHEDULE", "0 3 * * *"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           ParseLogLevel(getEnv("GM_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("GM_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("GM_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("GM_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("GM_OTEL_SERVICE_NAME", "groupadmin"),
		OTelServiceVersion: getEnv("GM_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("GM_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("GM_OTEL_SAMPLE_RATIO", 1.0),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	switch c.Session.Backend {
	case "memory":
		if c.Session.MaxSessions <= 0 {
			return fmt.Errorf("session max must be positive for the memory backend")
		}
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be memory or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}
	if c.Auth.LoginRateLimit > 0 && c.Auth.LoginRateWindow <= 0 {
		return fmt.Errorf("login rate window must be positive when rate limiting is enabled")
	}

	if c.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit retention days must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// ListenAddr returns the API listen address
func (s ServerConfig) ListenAddr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns the health/metrics listen address
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// Retention returns the audit retention as a duration
func (a AuditConfig) Retention() time.Duration {
	return time.Duration(a.RetentionDays) * 24 * time.Hour
}

// OTel converts the observability settings into tracer options
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
		SampleRatio:    o.OTelSampleRatio,
	}
}

// ParseLogLevel parses a log level string
func ParseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
