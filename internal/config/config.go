// Package config loads envask settings from defaults, an optional YAML file,
// a .env file and ENVASK_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the callers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServer   = "http://localhost:8000"
	DefaultListen   = ":8100"
	DefaultLogLevel = "info"
)

type Config struct {
	// Server is the base URL of the answering server; requests go to Server + "/ask".
	Server string `yaml:"server"`
	// Listen is the web form's listen address.
	Listen string `yaml:"listen"`
	// Journal is the sqlite path for the exchange journal. Empty disables it.
	Journal  string `yaml:"journal"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	RequestTimeout   time.Duration `yaml:"request_timeout"`
	CancelSuperseded bool          `yaml:"cancel_superseded"`
}

func Default() Config {
	return Config{
		Server:   DefaultServer,
		Listen:   DefaultListen,
		LogLevel: DefaultLogLevel,
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error, a missing .env is not.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"ENVASK_SERVER":    &cfg.Server,
		"ENVASK_LISTEN":    &cfg.Listen,
		"ENVASK_JOURNAL":   &cfg.Journal,
		"ENVASK_LOG_LEVEL": &cfg.LogLevel,
		"ENVASK_LOG_FILE":  &cfg.LogFile,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("ENVASK_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ENVASK_REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("ENVASK_CANCEL_SUPERSEDED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ENVASK_CANCEL_SUPERSEDED %q: %w", v, err)
		}
		cfg.CancelSuperseded = b
	}
	return nil
}

func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("server must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
