package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cfdtools/starwatch/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a starwatch configuration file without connecting anywhere.

Checks:
  - YAML syntax
  - Required fields per case
  - Report and scene settings
  - Derived remote paths`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Host:     %s:%d\n", cfg.Host, cfg.Port)
	fmt.Printf("  Interval: %s\n", cfg.Interval)
	fmt.Printf("  Cases:    %d\n", len(cfg.Cases))

	names := cfg.CaseNames()
	sort.Strings(names)

	fmt.Printf("\nCases:\n")
	for i, name := range names {
		c := cfg.Cases[name]
		fmt.Printf("  %d. %s\n", i+1, name)
		fmt.Printf("     log:    %s\n", c.RemoteLogPath())
		fmt.Printf("     images: %s\n", c.ImageDir())
		if len(c.Reports) > 0 {
			fmt.Printf("     reports: %v (gating: %s)\n", c.Reports, c.Reports[0])
		}
		if c.UseKeyAuth() {
			fmt.Printf("     auth:   key (%s)\n", c.KeyFile)
		} else {
			fmt.Printf("     auth:   password\n")
		}
	}

	return nil
}
