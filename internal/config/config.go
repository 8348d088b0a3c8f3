// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// SyncConfig tunes the scoring client's batch sync controller.
type SyncConfig struct {
	FlushInterval  time.Duration `yaml:"flush_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StateDir       string        `yaml:"state_dir"`
}

// LiveConfig tunes the public live feed.
type LiveConfig struct {
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Sync SyncConfig `yaml:"sync"`

	Live LiveConfig `yaml:"live"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.FlushInterval == 0 {
		c.Sync.FlushInterval = 15 * time.Second
	}
	if c.Sync.RequestTimeout == 0 {
		c.Sync.RequestTimeout = 10 * time.Second
	}
	if c.Sync.StateDir == "" {
		c.Sync.StateDir = filepath.Join(".", "data", "scoring")
	}
	if c.Live.BroadcastInterval == 0 {
		c.Live.BroadcastInterval = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Sync.FlushInterval < time.Second {
		return fmt.Errorf("sync flush interval must be at least one second")
	}
	if c.Sync.RequestTimeout <= 0 {
		return fmt.Errorf("sync request timeout must be positive")
	}

	return nil
}
