// Package config loads inkwell settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "inkwell.yaml"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env     string        `yaml:"env"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// PermittedHosts lists accepted Host headers. Empty accepts any host.
	PermittedHosts  []string      `yaml:"permitted_hosts"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // badger or sqlite
	Path      string `yaml:"path"`
	BackupDir string `yaml:"backup_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is console or json. Empty picks console in development.
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Env: EnvDevelopment,
		HTTP: HTTPConfig{
			Addr:            ":4567",
			PermittedHosts:  []string{"127.0.0.1", "localhost"},
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:    "badger",
			Path:      "data/badger",
			BackupDir: "data/backups",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultFile is used if present. A .env file in the working directory is
// loaded into the environment without replacing variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	required := path != ""
	if path == "" {
		path = DefaultFile
	}
	if err := cfg.readFile(path, required); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("INKWELL_ENV", c.Env)
	c.HTTP.Addr = getEnv("INKWELL_HTTP_ADDR", c.HTTP.Addr)
	if hosts, ok := os.LookupEnv("PERMITTED_HOSTS"); ok {
		c.HTTP.PermittedHosts = splitList(hosts)
	}
	c.Storage.Driver = getEnv("INKWELL_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getEnv("INKWELL_STORAGE_PATH", c.Storage.Path)
	c.Log.Level = getEnv("INKWELL_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("INKWELL_LOG_FORMAT", c.Log.Format)
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	var problems []string

	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		problems = append(problems, fmt.Sprintf("unknown env %q", c.Env))
	}
	switch c.Storage.Driver {
	case "badger", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, "http addr is empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		problems = append(problems, "http shutdown_timeout must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the config targets local development.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// splitList parses a comma separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
