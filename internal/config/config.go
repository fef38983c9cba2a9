package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"duedate/internal/logging"
	"duedate/internal/schedule"
)

// DefaultPath is where init writes and commands look for the config file.
const DefaultPath = "./duedate.yaml"

// Config is the application's configuration model.
type Config struct {
	WorkHours schedule.WorkHours `yaml:"workHours"`
	Logging   LoggingConfig      `yaml:"logging"`
	Metrics   MetricsConfig      `yaml:"metrics"`
	Output    OutputConfig       `yaml:"output"`
}

type LoggingConfig struct {
	// trace, debug, info, warn, error
	Level string `yaml:"level"`
	// "json" or "console"
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	// Listen address for /metrics, e.g. ":9090". Empty disables the server.
	Addr string `yaml:"addr"`
}

type OutputConfig struct {
	// Go time layout used when printing due dates.
	Layout string `yaml:"layout"`
}

// Default returns the 09:00-17:00 configuration.
func Default() Config {
	return Config{
		WorkHours: schedule.DefaultWorkHours,
		Logging:   LoggingConfig{Level: "info", Format: logging.FormatJSON},
		Output:    OutputConfig{Layout: schedule.Layout},
	}
}

// dotenvPaths are tried in order; the first existing file is loaded.
var dotenvPaths = []string{".env", "../.env"}

func loadDotEnv() error {
	for _, p := range dotenvPaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return fmt.Errorf("load %s: %w", p, err)
			}
			return nil
		}
	}
	return nil
}

// ResolveEnv applies environment overrides; a set variable wins over the file.
func (c *Config) ResolveEnv() error {
	if v := os.Getenv("DUEDATE_WORK_START"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DUEDATE_WORK_START: %w", err)
		}
		c.WorkHours.Start = n
	}
	if v := os.Getenv("DUEDATE_WORK_END"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DUEDATE_WORK_END: %w", err)
		}
		c.WorkHours.End = n
	}
	if v := os.Getenv("DUEDATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DUEDATE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("DUEDATE_OUTPUT_LAYOUT"); v != "" {
		c.Output.Layout = v
	}
	if c.Output.Layout == "" {
		c.Output.Layout = schedule.Layout
	}
	return nil
}

// Validate checks the work window, log level and log format.
func (c Config) Validate() error {
	if err := c.WorkHours.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// Load reads YAML config from path, applies .env and environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg Config) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.ResolveEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
