// Package config assembles the process configuration from three
// layers: built-in defaults, an optional YAML file, and environment
// variables (a .env file is folded into the environment first).
// Later layers win.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the config file to load instead of the default
// rasoipos.yaml lookup.
const EnvConfigFile = "RASOIPOS_CONFIG"

// Duration lets config files and env vars say "5m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Port     string `yaml:"port"`
	TenantID string `yaml:"tenantId"`
	LogLevel string `yaml:"logLevel"`
	GinMode  string `yaml:"ginMode"`

	DB   DBConfig   `yaml:"db"`
	Sync SyncConfig `yaml:"sync"`
	Auth AuthConfig `yaml:"auth"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SyncConfig drives the replication engine. An empty GatewayURL
// disables the scheduler; the device then runs purely offline.
type SyncConfig struct {
	GatewayURL   string   `yaml:"gatewayUrl"`
	Interval     Duration `yaml:"interval"`
	ClassTimeout Duration `yaml:"classTimeout"`
	Secret       string   `yaml:"secret"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

// Default is the configuration of a fresh single-device install.
func Default() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		DB: DBConfig{
			Driver: "sqlite",
			DSN:    "rasoipos.db",
		},
		Sync: SyncConfig{
			Interval:     Duration(5 * time.Minute),
			ClassTimeout: Duration(30 * time.Second),
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named
// by RASOIPOS_CONFIG (or ./rasoipos.yaml when present), then the
// environment on top.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		if _, err := os.Stat("rasoipos.yaml"); err == nil {
			path = "rasoipos.yaml"
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.TenantID, "TENANT_ID")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.DSN, "DB_DSN")
	setString(&c.Sync.GatewayURL, "SYNC_GATEWAY_URL")
	setString(&c.Sync.Secret, "SYNC_SECRET")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	if err := setDuration(&c.Sync.Interval, "SYNC_INTERVAL"); err != nil {
		return err
	}
	return setDuration(&c.Sync.ClassTimeout, "SYNC_CLASS_TIMEOUT")
}

func (c *Config) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("tenant id is required (set TENANT_ID or tenantId)")
	}
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db dsn is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	*dst = Duration(parsed)
	return nil
}
