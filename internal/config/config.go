package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // report.timezone must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTimezone is returned when report.timezone is not a known IANA zone.
var ErrInvalidTimezone = errors.New("invalid report timezone")

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port                   string `yaml:"port"`
		Mode                   string `yaml:"mode"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Report   struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"report"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Metrics struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// DatabaseConfig selects and locates the contact store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, sqlite or mongo
	URL    string `yaml:"url"`
	Name   string `yaml:"name"` // mongo database name
}

// LoadConfig reads configuration from the specified YAML file. A .env file in
// the working directory, when present, is loaded into the environment first.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	config.Database.URL = os.ExpandEnv(config.Database.URL)

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "./data/crm.db"
	}
	if c.Database.Name == "" {
		c.Database.Name = "crm"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
}

// Location resolves report.timezone. An empty value means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, c.Report.Timezone, err)
	}
	return loc, nil
}

// ShutdownTimeout is the grace period given to in-flight requests.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// MetricsEnabled reports whether /metrics is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}
