package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fhtsuite/domain/fht"
	"fhtsuite/internal/errors"
	"fhtsuite/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Transform fht.Parameters `yaml:"transform"`
	Suite     SuiteConfig    `yaml:"suite"`
	Database  DatabaseConfig `yaml:"database"`
	Server    ServerConfig   `yaml:"server"`
	Output    OutputConfig   `yaml:"output"`
	LogLevel  string         `yaml:"log_level"`
}

// SuiteConfig holds the validation sweep settings
type SuiteConfig struct {
	Seed      int64    `yaml:"seed"`
	Workers   int      `yaml:"workers"`
	MaxWeight int64    `yaml:"max_weight"`
	Sizes     []int    `yaml:"sizes"`
	Patterns  []string `yaml:"patterns"`
}

// DatabaseConfig holds database connection settings. Driver is "sqlite3" or "postgres".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// OutputConfig holds export settings
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Transform: fht.DefaultParameters(),
		Suite: SuiteConfig{
			Seed:     42,
			Workers:  1,
			Sizes:    append([]int(nil), validation.DefaultSizes...),
			Patterns: append([]string(nil), validation.DefaultPatterns...),
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			URL:    "fhtsuite.db",
		},
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "debug",
		},
		Output: OutputConfig{
			Dir: "results",
		},
		LogLevel: "INFO",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// FHT_CONFIG (if any) and environment overrides, then validates it.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("FHT_CONFIG"); path != "" {
		if err := config.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to read environment configuration")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadFile reads a YAML configuration on top of the defaults without consulting the environment
func LoadFile(path string) (*Config, error) {
	config := Default()
	if err := config.mergeFile(path); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	if c.Transform.Alpha, err = getEnvFloat("FHT_ALPHA", c.Transform.Alpha); err != nil {
		return err
	}
	if c.Transform.Beta, err = getEnvFloat("FHT_BETA", c.Transform.Beta); err != nil {
		return err
	}
	if c.Transform.Epsilon, err = getEnvFloat("FHT_EPSILON", c.Transform.Epsilon); err != nil {
		return err
	}
	if c.Suite.Sizes, err = getEnvIntList("FHT_SIZES", c.Suite.Sizes); err != nil {
		return err
	}

	c.Suite.Seed = int64(getEnvIntOrDefault("FHT_SEED", int(c.Suite.Seed)))
	c.Suite.Workers = getEnvIntOrDefault("FHT_WORKERS", c.Suite.Workers)
	c.Suite.Patterns = getEnvListOrDefault("FHT_PATTERNS", c.Suite.Patterns)

	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	if strings.HasPrefix(c.Database.URL, "postgres://") || strings.HasPrefix(c.Database.URL, "postgresql://") {
		c.Database.Driver = "postgres"
	}
	c.Database.Driver = getEnvOrDefault("DB_DRIVER", c.Database.Driver)
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Output.Dir = getEnvOrDefault("OUTPUT_DIR", c.Output.Dir)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate fails on settings that would make every run meaningless
func (c *Config) Validate() error {
	if err := c.Transform.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if len(c.Suite.Sizes) == 0 {
		return errors.ConfigInvalid("at least one dataset size is required")
	}
	for _, size := range c.Suite.Sizes {
		if size <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("dataset size must be positive, got %d", size))
		}
	}
	if len(c.Suite.Patterns) == 0 {
		return errors.ConfigInvalid("at least one pattern is required")
	}
	if c.Suite.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Transform parameters and sizes fail loudly instead of falling back
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a number", key, value))
	}
	return f, nil
}

func getEnvIntList(key string, defaultValue []int) ([]int, error) {
	items := getEnvListOrDefault(key, nil)
	if items == nil {
		return defaultValue, nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an integer", key, item))
		}
		out = append(out, n)
	}
	return out, nil
}
