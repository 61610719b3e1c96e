package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfdtools/starwatch/pkg/output"
	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output  string
	Reports []string
	Quiet   bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <logfile>",
		Short: "Parse a solver log and print a convergence summary",
		Long: `Parse a local solver log and summarize its convergence state:
iteration range, latest residual values and report samples.

Exit codes:
  0 - Iteration data found
  1 - Log parsed but contains no iteration data
  2 - Runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Reports, "report", nil, "Report column(s) to extract (can be repeated; first gates sampling)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	logPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := solverlog.NewParser(opts.Reports).ParseFile(logPath)
	if err != nil {
		return fmt.Errorf("parsing log: %w", err)
	}

	summary := output.NewSummary(res, logPath)

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, summary, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if !summary.HasData() {
		ExitCode = 1
	}
	return nil
}

func createFormatter(opts *InspectOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{Quiet: opts.Quiet}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}
