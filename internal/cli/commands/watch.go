package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfdtools/starwatch/pkg/config"
	"github.com/cfdtools/starwatch/pkg/logging"
	"github.com/cfdtools/starwatch/pkg/monitor"
	"github.com/cfdtools/starwatch/pkg/remote"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	OutputDir string
	Host      string
	Interval  string
	LogJSON   bool
	Once      bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <config-file> <case>",
		Short: "Poll a remote simulation and refresh its status image",
		Long: `Monitor a simulation case defined in the configuration file.

Every interval the solver log is downloaded and parsed, the latest
scene images are fetched, and the status image is rewritten. Transient
connection failures are retried on the next interval; authentication
failures stop the monitor.

Exit codes:
  0 - Stopped by the operator
  2 - Configuration error or authentication failure`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for the status image (overrides config)")
	cmd.Flags().StringVar(&opts.Host, "host", "", "Remote host (overrides config)")
	cmd.Flags().StringVar(&opts.Interval, "interval", "", "Poll interval, e.g. 30s (overrides config)")
	cmd.Flags().BoolVar(&opts.LogJSON, "log-json", false, "Log as JSON instead of console lines")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Run a single cycle and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	configPath, caseName := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadWatchConfig(ctx, configPath, opts)
	if err != nil {
		return err
	}

	c, err := cfg.Case(caseName)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, JSON: opts.LogJSON})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dial := func() (monitor.FileSource, error) {
		return remote.Dial(remote.Options{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     c.User,
			Password: c.Password,
			KeyFile:  c.KeyFile,
		})
	}

	m, err := monitor.New(cfg, caseName, dial, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Once {
		return m.Cycle(ctx)
	}

	err = m.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		// Operator stop is a clean exit.
		return nil
	default:
		return err
	}
}

// loadWatchConfig loads the config and applies CLI overrides.
func loadWatchConfig(ctx context.Context, path string, opts *WatchOptions) (*config.Config, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.Interval != "" {
		d, err := parseInterval(opts.Interval)
		if err != nil {
			return nil, err
		}
		cfg.Interval = d
	}

	// Overrides bypass Load's validation.
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func parseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid interval %q: must be positive", s)
	}
	return d, nil
}
