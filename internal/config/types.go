package config

import "time"

// supported session store backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	Environment    string
	Port           string
	StoreBackend   string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	CronSecret     string
	AllowedOrigins []string
	RateLimit      string
	AutoMigrate    bool
	Presence       PresenceConfig
}

// tuning for the viewer presence tracker
type PresenceConfig struct {
	ActiveWindow    time.Duration `yaml:"active_window"`
	RetentionWindow time.Duration `yaml:"retention_window"`
	BatchSize       int           `yaml:"batch_size"`
	BatchPause      time.Duration `yaml:"batch_pause"`
	BatchFetchCap   int           `yaml:"batch_fetch_cap"`

	// zero disables the in-process janitor; an external scheduler calls the cron endpoint instead
	JanitorInterval time.Duration `yaml:"janitor_interval"`
}

type Flags struct {
	StatsOnly bool
}
