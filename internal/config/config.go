package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Worker  WorkerConfig
	Sources SourcesConfig
	Risk    RiskConfig
	SMTP    SMTPConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	EAEnabled      bool
	EAURL          string
	EAPollInterval time.Duration
}

type RiskConfig struct {
	// SearchRadiusKm bounds the closest-gauge lookup around a queried point.
	SearchRadiusKm float64
	// DistanceOverrideKm forces LOW risk beyond this distance from the
	// nearest gauge. 0 disables the override.
	DistanceOverrideKm float64
}

type SMTPConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	DigestSchedule string // cron expression, empty disables the daily digest
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 50),
		},
		Sources: SourcesConfig{
			EAEnabled:      getEnvBool("EA_ENABLED", true),
			EAURL:          getEnv("EA_URL", "https://environment.data.gov.uk/flood-monitoring/id/stations?parameter=level&_view=full"),
			EAPollInterval: getEnvDuration("EA_POLL_INTERVAL", 15*time.Minute),
		},
		Risk: RiskConfig{
			SearchRadiusKm:     getEnvFloat("RISK_SEARCH_RADIUS_KM", 25),
			DistanceOverrideKm: getEnvFloat("RISK_DISTANCE_OVERRIDE_KM", 5),
		},
		SMTP: SMTPConfig{
			Enabled:        getEnvBool("SMTP_ENABLED", false),
			Host:           getEnv("SMTP_HOST", "localhost"),
			Port:           getEnvInt("SMTP_PORT", 587),
			Username:       getEnv("SMTP_USERNAME", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			From:           getEnv("SMTP_FROM", "alerts@riverwatch.local"),
			DigestSchedule: getEnv("DIGEST_SCHEDULE", ""),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/flood-routes.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}
	if c.Sources.EAEnabled && c.Sources.EAPollInterval < time.Minute {
		return fmt.Errorf("EA poll interval must be at least 1 minute, got %v", c.Sources.EAPollInterval)
	}
	if c.Risk.SearchRadiusKm <= 0 {
		return fmt.Errorf("risk search radius must be positive, got %v", c.Risk.SearchRadiusKm)
	}
	if c.Risk.DistanceOverrideKm < 0 {
		return fmt.Errorf("risk distance override must not be negative, got %v", c.Risk.DistanceOverrideKm)
	}
	if c.SMTP.Enabled {
		if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP is enabled")
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
