package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// returns the presence tuning used when nothing is configured
func DefaultPresenceConfig() PresenceConfig {
	return PresenceConfig{
		ActiveWindow:    5 * time.Minute,
		RetentionWindow: 24 * time.Hour,
		BatchSize:       25,
		BatchPause:      200 * time.Millisecond,
		BatchFetchCap:   1000,
	}
}

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CronSecret:     os.Getenv("CRON_SECRET"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimit:      getEnv("RATE_LIMIT", "300-M"),
	}

	var err error

	if cfg.AutoMigrate, err = getEnvBool("AUTO_MIGRATE", true); err != nil {
		return nil, err
	}

	if cfg.Presence, err = loadPresence(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks required settings and presence tuning invariants
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required for the redis store")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (want postgres, redis or memory)", c.StoreBackend)
	}

	return c.Presence.Validate()
}

func (p PresenceConfig) Validate() error {
	if p.ActiveWindow <= 0 {
		return fmt.Errorf("presence active window must be positive, got %s", p.ActiveWindow)
	}

	if p.RetentionWindow <= p.ActiveWindow {
		return fmt.Errorf("presence retention window (%s) must be longer than the active window (%s)",
			p.RetentionWindow, p.ActiveWindow)
	}

	if p.BatchSize <= 0 {
		return fmt.Errorf("presence batch size must be positive, got %d", p.BatchSize)
	}

	if p.BatchPause < 0 {
		return fmt.Errorf("presence batch pause must not be negative, got %s", p.BatchPause)
	}

	if p.BatchFetchCap <= 0 {
		return fmt.Errorf("presence batch fetch cap must be positive, got %d", p.BatchFetchCap)
	}

	if p.JanitorInterval < 0 {
		return fmt.Errorf("presence janitor interval must not be negative, got %s", p.JanitorInterval)
	}

	return nil
}

// maps presence tuning onto the sweep settings shared by the server and cmd/janitor
func (p PresenceConfig) Janitor() viewers.JanitorConfig {
	return viewers.JanitorConfig{
		ActiveWindow:    p.ActiveWindow,
		RetentionWindow: p.RetentionWindow,
		BatchSize:       p.BatchSize,
		BatchPause:      p.BatchPause,
		FetchCap:        p.BatchFetchCap,
	}
}

// defaults, then the optional YAML file, then individual env vars
func loadPresence() (PresenceConfig, error) {
	p := DefaultPresenceConfig()

	if path := os.Getenv("PRESENCE_CONFIG_FILE"); path != "" {
		if err := p.mergeFile(path); err != nil {
			return p, err
		}
	}

	var err error

	if p.ActiveWindow, err = getEnvDuration("PRESENCE_ACTIVE_WINDOW", p.ActiveWindow); err != nil {
		return p, err
	}

	if p.RetentionWindow, err = getEnvDuration("PRESENCE_RETENTION_WINDOW", p.RetentionWindow); err != nil {
		return p, err
	}

	if p.BatchSize, err = getEnvInt("PRESENCE_BATCH_SIZE", p.BatchSize); err != nil {
		return p, err
	}

	if p.BatchPause, err = getEnvDuration("PRESENCE_BATCH_PAUSE", p.BatchPause); err != nil {
		return p, err
	}

	if p.BatchFetchCap, err = getEnvInt("PRESENCE_BATCH_FETCH_CAP", p.BatchFetchCap); err != nil {
		return p, err
	}

	if p.JanitorInterval, err = getEnvDuration("PRESENCE_JANITOR_INTERVAL", p.JanitorInterval); err != nil {
		return p, err
	}

	return p, nil
}

// overlays values present in a YAML file; absent keys keep their current value
func (p *PresenceConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return fmt.Errorf("failed to read presence config file: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to parse presence config file %s: %w", path, err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return b, nil
}

// accepts Go durations ("5m") or bare milliseconds ("200")
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	return d, nil
}

func splitCSV(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
