package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezendesp/GroupManagement/pkg/observability"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("GM_TEST_STRING", "custom")
	t.Setenv("GM_TEST_BOOL", "1")
	t.Setenv("GM_TEST_INT", "42")
	t.Setenv("GM_TEST_BAD_INT", "forty-two")
	t.Setenv("GM_TEST_DURATION", "90s")
	t.Setenv("GM_TEST_FLOAT", "0.25")

	assert.Equal(t, "custom", getEnv("GM_TEST_STRING", "default"))
	assert.Equal(t, "default", getEnv("GM_TEST_UNSET", "default"))
	assert.True(t, getEnvBool("GM_TEST_BOOL", false))
	assert.Equal(t, 42, getEnvInt("GM_TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("GM_TEST_BAD_INT", 7))
	assert.Equal(t, int64(42), getEnvInt64("GM_TEST_INT", 0))
	assert.Equal(t, 90*time.Second, getEnvDuration("GM_TEST_DURATION", time.Second))
	assert.Equal(t, 0.25, getEnvFloat("GM_TEST_FLOAT", 1))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]observability.LogLevel{
		"debug":   observability.DebugLevel,
		"INFO":    observability.InfoLevel,
		"warning": observability.WarnLevel,
		"error":   observability.ErrorLevel,
		"bogus":   observability.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.Auth.LoginRateWindow)
	assert.Equal(t, 365, cfg.Audit.RetentionDays)
	assert.Equal(t, 365*24*time.Hour, cfg.Audit.Retention())
	assert.Equal(t, "groupadmin", cfg.Observability.OTel().ServiceName)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("GM_PORT", "8000")
	t.Setenv("GM_DB_DRIVER", "postgres")
	t.Setenv("GM_DB_URL", "postgres://localhost/groups?sslmode=disable")
	t.Setenv("GM_SESSION_BACKEND", "REDIS")
	t.Setenv("GM_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GM_AUDIT_RETENTION_DAYS", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.ListenAddr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", HealthPort: "9090"},
			Database: DatabaseConfig{Driver: "sqlite3", URL: ":memory:"},
			Session:  SessionConfig{Backend: "memory", TTL: time.Hour, MaxSessions: 10},
			Auth:     AuthConfig{BcryptCost: 10},
			Audit:    AuditConfig{RetentionDays: 365},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"same ports", func(c *Config) { c.Server.HealthPort = "8080" }, "must be different"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database driver"},
		{"missing db url", func(c *Config) { c.Database.URL = "" }, "database URL is required"},
		{"redis without url", func(c *Config) { c.Session.Backend = "redis" }, "redis URL is required"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "memcached" }, "invalid session backend"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session TTL"},
		{"bcrypt cost", func(c *Config) { c.Auth.BcryptCost = 2 }, "bcrypt cost"},
		{"rate window", func(c *Config) { c.Auth.LoginRateLimit = 5 }, "login rate window"},
		{"retention", func(c *Config) { c.Audit.RetentionDays = 0 }, "retention"},
		{"otel endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "groupadmin"
		}, "endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
