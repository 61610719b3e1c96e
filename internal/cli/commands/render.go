package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfdtools/starwatch/pkg/config"
	"github.com/cfdtools/starwatch/pkg/render"
	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// RenderOptions holds command-line options for the render command.
type RenderOptions struct {
	OutputDir string
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <config-file> <case> <logfile>",
		Short: "Render a status image from a local solver log",
		Long: `Render the composite status image from an already-downloaded solver
log, without connecting to the remote host. Scene panels show
placeholders since no images are fetched.

Useful for inspecting a finished run or testing report settings.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for the status image (overrides config)")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	configPath, caseName, logPath := args[0], args[1], args[2]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	c, err := cfg.Case(caseName)
	if err != nil {
		return err
	}

	res, err := solverlog.NewParser(c.Reports).ParseFile(logPath)
	if err != nil {
		return fmt.Errorf("parsing log: %w", err)
	}
	if res.Empty() {
		return fmt.Errorf("no iteration data found in %s", logPath)
	}

	snaps := make([]render.Snapshot, 0, len(c.Scenes))
	for _, scene := range c.Scenes {
		snaps = append(snaps, render.Snapshot{Name: scene})
	}

	in := render.Input{
		Data:        res,
		PlotReports: c.Reports,
		TextReports: c.TextReports,
		Snapshots:   snaps,
	}

	outPath := cfg.OutputPath(caseName)
	if err := render.NewRenderer().RenderFile(in, outPath); err != nil {
		return err
	}

	fmt.Printf("Status image written to %s\n", outPath)
	return nil
}
