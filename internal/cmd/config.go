package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server's YAML configuration. Every field has a default, so a
// missing file means "run with defaults"; env vars override the file.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Game struct {
		IdleTimeout   string `yaml:"idle_timeout"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"game"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Database struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8080")
	}
	if config.NATS.URL == "" {
		config.NATS.URL = getEnv("NATS_URL", "nats://localhost:4222")
	}
	if !config.NATS.Enabled {
		config.NATS.Enabled = getEnvAsBool("NATS_ENABLED", false)
	}
	if !config.Database.Enabled {
		config.Database.Enabled = getEnvAsBool("DB_ENABLED", false)
	}
	if config.Database.Host == "" {
		config.Database.Host = getEnv("DB_HOST", "localhost")
	}
	if config.Database.Port == 0 {
		config.Database.Port = getEnvAsInt("DB_PORT", 5432)
	}
	if config.Database.User == "" {
		config.Database.User = getEnv("DB_USER", "postgres")
	}
	if config.Database.Password == "" {
		config.Database.Password = getEnv("DB_PASSWORD", "postgres")
	}
	if config.Database.Name == "" {
		config.Database.Name = getEnv("DB_NAME", "feudexe")
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	}

	return &config, nil
}

// databaseDSN builds the Postgres connection URL from the database section.
func (c *Config) databaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.Name, c.Database.SSLMode,
	)
}

// idleTimeout returns the session eviction window.
func (c *Config) idleTimeout() time.Duration {
	return parseDuration(c.Game.IdleTimeout, 24*time.Hour)
}

// sweepInterval returns the eviction sweep cadence.
func (c *Config) sweepInterval() time.Duration {
	return parseDuration(c.Game.SweepInterval, time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
