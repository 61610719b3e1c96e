package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and derives remote paths.
func Validate(cfg *Config) error {
	if cfg.Host == "" {
		return errors.New("host: a remote host is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port: %d is not a valid port", cfg.Port)
	}

	if cfg.Interval <= 0 {
		return errors.New("interval: must be positive")
	}

	if len(cfg.Cases) == 0 {
		return errors.New("cases: at least one case is required")
	}

	for name, c := range cfg.Cases {
		if c == nil {
			return fmt.Errorf("cases[%s]: empty case entry", name)
		}
		if err := validateCase(c); err != nil {
			return fmt.Errorf("cases[%s]: %w", name, err)
		}
	}

	return nil
}

// CaseNames returns the configured case names for error messages.
func (c *Config) CaseNames() []string {
	names := make([]string, 0, len(c.Cases))
	for name := range c.Cases {
		names = append(names, name)
	}
	return names
}

// Case looks up a case by name.
func (c *Config) Case(name string) (*CaseConfig, error) {
	cc, ok := c.Cases[name]
	if !ok {
		return nil, fmt.Errorf("case %q not found (available: %s)",
			name, strings.Join(c.CaseNames(), ", "))
	}
	return cc, nil
}

// OutputPath returns the status image path for a case, derived from the
// simulation folder and case name. The same file is overwritten every
// cycle.
func (c *Config) OutputPath(caseName string) string {
	cc := c.Cases[caseName]
	name := fmt.Sprintf("status_%s_%s.png", cc.SimulationFolder, caseName)
	return filepath.Join(c.OutputDir, name)
}

func validateCase(c *CaseConfig) error {
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.BaseDir == "" {
		return errors.New("base_dir is required")
	}
	if c.SimulationFolder == "" {
		return errors.New("simulation_folder is required")
	}
	if c.Logfile == "" {
		return errors.New("logfile is required")
	}

	// Secrets may reference environment variables.
	c.Password = expandEnvVar(c.Password)

	if c.KeyFile == "" {
		c.KeyFile = DefaultKeyFile
	}

	if len(c.Scenes) == 0 {
		c.Scenes = append([]string{}, DefaultScenes...)
	}

	for _, tr := range c.TextReports {
		if !contains(c.Reports, tr) {
			return fmt.Errorf("text_reports entry %q is not listed in reports", tr)
		}
	}

	// Remote paths are always POSIX, regardless of the local OS.
	c.remoteLogPath = path.Join(c.BaseDir, c.SimulationFolder, c.Logfile)
	c.imageDir = path.Join(c.BaseDir, c.SimulationFolder)
	if c.CaseSubfolder != "" {
		c.imageDir = path.Join(c.imageDir, c.CaseSubfolder)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
