package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, "cinema-api", cfg.JWTIssuer)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.UnifyLoginErrors)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("AUTH_UNIFY_LOGIN_ERRORS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "changeme")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.True(t, cfg.UnifyLoginErrors)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ACCESS_TTL", "soon")
	t.Setenv("RATE_LIMIT_RPM", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 100, cfg.RateLimitRPM)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "too-short" }, "at least 32 bytes"},
		{"zero lifetime", func(c *Config) { c.JWTAccessTTL = 0 }, "JWT_ACCESS_TTL"},
		{"admin email without password", func(c *Config) { c.AdminPassword = ""; c.AdminEmail = "a@b.c" }, "set together"},
		{"pool bounds", func(c *Config) { c.DBMinConns = 50 }, "DB_MIN_CONNS"},
		{"weak argon2", func(c *Config) { c.Argon2MemoryKiB = 1024 }, "ARGON2"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
