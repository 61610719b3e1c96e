// Package config provides configuration loading and validation for starwatch.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Host is the SSH server running the simulations.
	Host string `yaml:"host"`

	// Port is the SSH port. Defaults to 22.
	Port int `yaml:"port,omitempty"`

	// Interval is the wall-clock delay between poll cycles.
	Interval time.Duration `yaml:"interval,omitempty"`

	// OutputDir is where status images and temporary files are written.
	OutputDir string `yaml:"output_dir,omitempty"`

	// LogLevel controls monitor loop verbosity (debug|info|warn|error).
	LogLevel string `yaml:"log_level,omitempty"`

	// Cases maps case names to their monitoring configuration.
	Cases map[string]*CaseConfig `yaml:"cases"`
}

// CaseConfig describes one simulation case to monitor.
type CaseConfig struct {
	// User is the SSH login name.
	User string `yaml:"user"`

	// Password is the SSH password. Supports ${VAR} environment
	// expansion. When empty, key authentication is used instead.
	Password string `yaml:"password,omitempty"`

	// KeyFile is the SSH private key path for key authentication.
	// Defaults to ~/.ssh/id_rsa.
	KeyFile string `yaml:"key_file,omitempty"`

	// BaseDir is the remote directory holding simulation folders.
	BaseDir string `yaml:"base_dir"`

	// SimulationFolder is the remote folder of this simulation.
	SimulationFolder string `yaml:"simulation_folder"`

	// CaseSubfolder optionally nests scene images below the
	// simulation folder (e.g. "Grid0/05").
	CaseSubfolder string `yaml:"case_subfolder,omitempty"`

	// Logfile is the solver log file name inside SimulationFolder.
	Logfile string `yaml:"logfile"`

	// Reports lists the report columns to extract from the log. The
	// first entry gates report sampling.
	Reports []string `yaml:"reports,omitempty"`

	// TextReports names reports shown as a text readout on the status
	// image instead of a plotted line. Must be a subset of Reports.
	TextReports []string `yaml:"text_reports,omitempty"`

	// Scenes lists remote image subfolders to include on the status
	// image. Defaults to Pressure and Velocity.
	Scenes []string `yaml:"scenes,omitempty"`

	// Derived remote paths (populated during validation).
	remoteLogPath string
	imageDir      string
}

// RemoteLogPath returns the full remote path of the solver log.
func (c *CaseConfig) RemoteLogPath() string {
	return c.remoteLogPath
}

// ImageDir returns the remote directory holding scene image subfolders.
func (c *CaseConfig) ImageDir() string {
	return c.imageDir
}

// UseKeyAuth reports whether SSH key authentication should be used.
// Key auth is the fallback whenever no password is configured.
func (c *CaseConfig) UseKeyAuth() bool {
	return c.Password == ""
}
