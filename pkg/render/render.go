// Package render draws the composite status image: convergence curves,
// report trends and the latest scene snapshots on a 2x2 grid.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// Default canvas size, split into four equal panels.
const (
	DefaultWidth  = 1800
	DefaultHeight = 1000
)

// Snapshot is one scene image fetched from the remote host. A nil Image
// renders as a placeholder panel.
type Snapshot struct {
	// Name is the scene folder name (e.g. "Pressure").
	Name string

	// Image is the decoded snapshot, or nil when unavailable.
	Image image.Image

	// Caption is shown on the panel, typically the remote file name.
	Caption string
}

// Input carries everything one status image is built from. Every field
// may be empty; missing inputs render as placeholder panels, never as
// errors.
type Input struct {
	// Data is the parsed solver log.
	Data *solverlog.Result

	// PlotReports are the report fields drawn as lines against
	// physical time.
	PlotReports []string

	// TextReports are report fields shown as a latest-value readout
	// instead of a line.
	TextReports []string

	// Snapshots fill the bottom two panels, in order.
	Snapshots []Snapshot
}

// Renderer composes status images. Safe to reuse across cycles.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{width: DefaultWidth, height: DefaultHeight}
}

// Render writes the composite status image as PNG.
func (r *Renderer) Render(in Input, w io.Writer) error {
	pw, ph := r.width/2, r.height/2

	canvas := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	fill(canvas, colorBackground)

	panels := []struct {
		img image.Image
		at  image.Rectangle
	}{
		{r.residualPanel(in.Data, pw, ph), image.Rect(0, 0, pw, ph)},
		{r.reportPanel(in, pw, ph), image.Rect(pw, 0, r.width, ph)},
		{snapshotPanel(snapshotAt(in.Snapshots, 0), pw, ph), image.Rect(0, ph, pw, r.height)},
		{snapshotPanel(snapshotAt(in.Snapshots, 1), pw, ph), image.Rect(pw, ph, r.width, r.height)},
	}

	for _, p := range panels {
		xdraw.ApproxBiLinear.Scale(canvas, p.at, p.img, p.img.Bounds(), xdraw.Src, nil)
	}

	return png.Encode(w, canvas)
}

// RenderFile renders to path, creating parent directories. The file is
// written atomically so a failed cycle never clobbers the last good
// image.
func (r *Renderer) RenderFile(in Input, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".starwatch-*.png")
	if err != nil {
		return fmt.Errorf("creating temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.Render(in, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("rendering status image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing status image: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing status image: %w", err)
	}
	return nil
}

func snapshotAt(snaps []Snapshot, i int) Snapshot {
	if i < len(snaps) {
		return snaps[i]
	}
	return Snapshot{Name: "Scene"}
}
