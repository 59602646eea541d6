// Package config loads the small bootstrap configuration this core
// needs: the database path and the sample interval. This is deliberately
// minimal — authentication and the HTTP API's own configuration surface
// are out of scope (§1) and are not modeled here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the bootstrap configuration for the hostwatch agent process.
type Config struct {
	DBPath         string        `yaml:"db_path"`
	SampleInterval time.Duration `yaml:"sample_interval"`
}

// Default returns the built-in defaults: a local "hostwatch.db" file and
// a 2-second sample interval, matching SAMPLE_INTERVAL's documented
// default.
func Default() Config {
	return Config{
		DBPath:         "hostwatch.db",
		SampleInterval: 2 * time.Second,
	}
}

// Load reads path (if it exists) over the defaults, then applies
// environment variable overrides, matching the env-override-then-file
// idiom the reference agent's own config loader uses.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOSTWATCH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HOSTWATCH_SAMPLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SampleInterval = d
		}
	}
}

// DefaultConfigPath mirrors the reference agent's search order: an
// explicit env var, then a few conventional system locations, falling
// back to the current working directory.
func DefaultConfigPath() string {
	if v := os.Getenv("HOSTWATCH_CONFIG_PATH"); v != "" {
		return v
	}
	for _, dir := range []string{"/etc/hostwatch", "/opt/hostwatch"} {
		candidate := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "hostwatch", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "config.yaml"
}
