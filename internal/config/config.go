package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds settings read from the environment
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	SendGridAPIKey     string
	AlertsFromEmail    string
	AlertsMinInterval  time.Duration
	CORSAllowedOrigins []string
	UpstreamRPS        float64
	UpstreamBurst      int
	UserAgent          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	LogLevel           string
	LogJSON            bool
	MetricsEnabled     bool
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		DatabaseURL:     getEnvOrDefault("DATABASE_URL", "weatherpulse.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		AlertsFromEmail: os.Getenv("ALERTS_FROM_EMAIL"),
		UserAgent:       getEnvOrDefault("USER_AGENT", "WeatherPulse/1.0"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	minutes, err := getInt("ALERTS_MIN_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.AlertsMinInterval = time.Duration(minutes) * time.Minute

	if cfg.UpstreamRPS, err = getFloat("UPSTREAM_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.UpstreamBurst, err = getInt("UPSTREAM_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = getBool("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	if c.UpstreamRPS <= 0 {
		return errors.New("UPSTREAM_RPS must be positive")
	}
	if c.UpstreamBurst <= 0 {
		return errors.New("UPSTREAM_BURST must be positive")
	}
	if c.AlertsMinInterval < 0 {
		return errors.New("ALERTS_MIN_INTERVAL_MINUTES must not be negative")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// MailEnabled reports whether alert emails can be sent
func (c *Config) MailEnabled() bool {
	return c.SendGridAPIKey != "" && c.AlertsFromEmail != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s", key)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
