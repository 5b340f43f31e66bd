// Package config carries the tunables of the netlist core. Callers
// usually run on defaults; YAML loading exists for deployments that
// need to override ground spellings or registry bounds.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration of the core.
type Config struct {
	// Ground is the canonical reference node identifier.
	Ground string `yaml:"ground"`
	// GroundAliases are extra spellings normalized onto Ground, on top
	// of the built-in ones (0, gnd, gnd!, earth).
	GroundAliases []string `yaml:"ground_aliases"`
	// SessionCapacity bounds the session registry.
	SessionCapacity int `yaml:"session_capacity"`
	// LogLevel is the minimum level emitted (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// MetricsEnabled wires a prometheus registry into new designs.
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Ground:          "0",
		SessionCapacity: 128,
		LogLevel:        "info",
	}
}

// FromYAML decodes a configuration document over the defaults.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads and decodes a configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	return FromYAML(data)
}

// Validate checks the configuration, collecting every problem rather
// than stopping at the first.
func (c Config) Validate() error {
	v := NewValidator("Config")
	v.Required("Ground", c.Ground)
	v.MinInt("SessionCapacity", c.SessionCapacity, 1)
	v.OneOf("LogLevel", c.LogLevel, "debug", "info", "warn", "error")
	return v.Err()
}
