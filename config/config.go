package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"roster/storage"
)

type Config struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	Backend         string        `yaml:"backend"`
	DBPath          string        `yaml:"db_path"`
	MySQLDSN        string        `yaml:"mysql_dsn"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	CORSOrigins     string        `yaml:"cors_origins"`
}

// Default returns the settings used when neither a file nor the environment says otherwise.
func Default() *Config {
	return &Config{
		Port:        "3000",
		Env:         "development",
		LogLevel:    "info",
		Backend:     string(storage.PrimaryBackend),
		DBPath:      "./data/roster.db",
		CORSOrigins: "*",
	}
}

// Load reads .env, then the optional YAML file named by ROSTER_CONFIG, then
// the environment. Later sources win. The result is not validated; command
// flags may still override it, so callers run Validate last.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("ROSTER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.Env = GetEnv("ENV", cfg.Env)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Backend = GetEnv("ROSTER_BACKEND", cfg.Backend)
	cfg.DBPath = GetEnv("DB_PATH", cfg.DBPath)
	cfg.MySQLDSN = GetEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.CORSOrigins = GetEnv("CORS_ORIGINS", cfg.CORSOrigins)

	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = d
	}

	return cfg, nil
}

// Validate checks the backend tag and that it has a datasource.
func (c *Config) Validate() error {
	backend, err := storage.ParseBackend(c.Backend)
	if err != nil {
		return err
	}
	if backend == storage.BackendMySQL && c.MySQLDSN == "" {
		return fmt.Errorf("MYSQL_DSN is required for the %s backend", backend)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative")
	}
	return nil
}

// StorageBackend returns the validated backend tag.
func (c *Config) StorageBackend() storage.Backend {
	backend, _ := storage.ParseBackend(c.Backend)
	return backend
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
