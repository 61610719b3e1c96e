package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultPort     = 22
	DefaultInterval = 30 * time.Second
	DefaultKeyFile  = "~/.ssh/id_rsa"
	DefaultLogLevel = "info"
)

// DefaultScenes are the scene image subfolders shown on the status
// image when a case does not configure its own.
var DefaultScenes = []string{"Pressure", "Velocity"}

// Environment variable names.
const (
	EnvHost      = "STARWATCH_HOST"
	EnvOutputDir = "STARWATCH_OUTPUT_DIR"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:      DefaultPort,
		Interval:  DefaultInterval,
		OutputDir: ".",
		LogLevel:  DefaultLogLevel,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if host := os.Getenv(EnvHost); host != "" {
		c.Host = host
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
}
