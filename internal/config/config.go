package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string

	APIBaseURL  string
	HTTPTimeout time.Duration

	PollInterval time.Duration
	PollMaxTicks int
	HexScale     float64

	// RedisURL selects the Redis snapshot store; empty means a local file.
	RedisURL     string
	SnapshotPath string

	// Keys overrides the default action key bindings, by action wire name.
	Keys map[string]string
}

// FileConfig is the optional YAML file named by CONFIG_FILE.
type FileConfig struct {
	Poll struct {
		Interval time.Duration `yaml:"interval"`
		MaxTicks int           `yaml:"max_ticks"`
	} `yaml:"poll"`
	Board struct {
		Scale float64 `yaml:"scale"`
	} `yaml:"board"`
	Keys map[string]string `yaml:"keys"`
}

// Load reads .env (if present), then the environment, then the optional
// config file. File values override environment values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", "piously-console.log"),
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:5000"),
		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		PollInterval: getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
		PollMaxTicks: getEnvAsInt("POLL_MAX_TICKS", 100),
		HexScale:     getEnvAsFloat("HEX_SCALE", 2),
		RedisURL:     getEnv("REDIS_URL", ""),
		SnapshotPath: getEnv("SNAPSHOT_PATH", defaultSnapshotPath()),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile overlays the non-zero values of a YAML config file.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Poll.Interval > 0 {
		c.PollInterval = fc.Poll.Interval
	}
	if fc.Poll.MaxTicks > 0 {
		c.PollMaxTicks = fc.Poll.MaxTicks
	}
	if fc.Board.Scale > 0 {
		c.HexScale = fc.Board.Scale
	}
	if len(fc.Keys) > 0 {
		c.Keys = fc.Keys
	}
	return nil
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.PollMaxTicks <= 0 {
		return fmt.Errorf("poll max ticks must be positive, got %d", c.PollMaxTicks)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSnapshotPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "piously-session.json"
	}
	return filepath.Join(dir, "piously", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
