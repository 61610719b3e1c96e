// Package cli provides the command-line interface for starwatch.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfdtools/starwatch/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starwatch",
		Short: "Monitor remote STAR-CCM+ simulations",
		Long: `starwatch monitors a running STAR-CCM+ simulation over SFTP.

It polls the solver log on a fixed interval, extracts residual and
report time series, fetches the latest rendered scene images, and
writes a composite status image that is refreshed every cycle.

Cases are defined in a YAML configuration file; see 'starwatch
validate' for checking one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
