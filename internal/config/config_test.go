package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DATABASE_URL", "REDIS_URL", "SENDGRID_API_KEY", "ALERTS_FROM_EMAIL",
	"ALERTS_MIN_INTERVAL_MINUTES", "CORS_ALLOWED_ORIGINS", "UPSTREAM_RPS", "UPSTREAM_BURST",
	"USER_AGENT", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "LOG_LEVEL", "LOG_JSON", "METRICS_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "weatherpulse.db", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.AlertsMinInterval)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5.0, cfg.UpstreamRPS)
	assert.Equal(t, 10, cfg.UpstreamBurst)
	assert.Equal(t, "WeatherPulse/1.0", cfg.UserAgent)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.MailEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://wp:wp@localhost/wp?sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("ALERTS_FROM_EMAIL", "alerts@example.com")
	t.Setenv("ALERTS_MIN_INTERVAL_MINUTES", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("UPSTREAM_RPS", "2.5")
	t.Setenv("UPSTREAM_BURST", "3")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("LOG_JSON", "1")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 90*time.Minute, cfg.AlertsMinInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.UpstreamRPS)
	assert.Equal(t, 3, cfg.UpstreamBurst)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.LogJSON)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.MailEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"UPSTREAM_RPS", "fast"},
		{"UPSTREAM_RPS", "0"},
		{"UPSTREAM_BURST", "-1"},
		{"ALERTS_MIN_INTERVAL_MINUTES", "half an hour"},
		{"ALERTS_MIN_INTERVAL_MINUTES", "-5"},
		{"ACCESS_TOKEN_TTL", "5"},
		{"REFRESH_TOKEN_TTL", "0s"},
		{"LOG_JSON", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	clearEnv(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	_, err = Load()
	assert.NoError(t, err)
}
