// Package monitor runs the fetch, parse, render poll loop for one
// simulation case.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	// Snapshot decoders for the formats solver scenes are exported in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"go.uber.org/zap"

	"github.com/cfdtools/starwatch/pkg/config"
	"github.com/cfdtools/starwatch/pkg/remote"
	"github.com/cfdtools/starwatch/pkg/render"
	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// FileSource fetches files from the simulation host. One source is
// opened per poll cycle and closed before the next.
type FileSource interface {
	// FetchFile downloads remotePath to localPath.
	FetchFile(remotePath, localPath string) error

	// LatestImage returns the newest image in a remote folder, or an
	// error wrapping fs.ErrNotExist when none is available.
	LatestImage(dir string) (string, error)

	// Close releases the connection.
	Close() error
}

// Dialer opens a new FileSource. Connection failures should wrap
// remote.ErrConnect; authentication rejections remote.ErrAuth.
type Dialer func() (FileSource, error)

// Monitor polls one case on a fixed interval and keeps its status
// image up to date.
type Monitor struct {
	caseName string
	c        *config.CaseConfig

	dial       Dialer
	parser     *solverlog.Parser
	renderer   *render.Renderer
	log        *zap.Logger
	interval   time.Duration
	outputPath string

	cycles int
}

// New creates a monitor for the named case.
func New(cfg *config.Config, caseName string, dial Dialer, logger *zap.Logger) (*Monitor, error) {
	c, err := cfg.Case(caseName)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		caseName:   caseName,
		c:          c,
		dial:       dial,
		parser:     solverlog.NewParser(c.Reports),
		renderer:   render.NewRenderer(),
		log:        logger.With(zap.String("case", caseName)),
		interval:   cfg.Interval,
		outputPath: cfg.OutputPath(caseName),
	}, nil
}

// Run polls until ctx is cancelled or authentication fails. Transient
// failures (connection loss, missing files) are logged and retried on
// the next tick; the last successful status image is left untouched.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("starting monitor",
		zap.String("log", m.c.RemoteLogPath()),
		zap.String("images", m.c.ImageDir()),
		zap.String("output", m.outputPath),
		zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Cycle(ctx); err != nil {
			if errors.Is(err, remote.ErrAuth) {
				m.log.Error("authentication rejected, stopping", zap.Error(err))
				return err
			}
			m.log.Warn("cycle failed, will retry",
				zap.Error(err),
				zap.Duration("retry_in", m.interval))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle performs one fetch, parse, render pass. All temporary local
// copies are scoped to the cycle and removed on every exit path.
func (m *Monitor) Cycle(ctx context.Context) error {
	m.cycles++
	log := m.log.With(zap.Int("cycle", m.cycles))

	tmp, err := os.MkdirTemp("", "starwatch-")
	if err != nil {
		return fmt.Errorf("creating cycle temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	src, err := m.dial()
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	localLog := filepath.Join(tmp, "solver.log")
	if err := src.FetchFile(m.c.RemoteLogPath(), localLog); err != nil {
		return fmt.Errorf("fetching log %s: %w", m.c.RemoteLogPath(), err)
	}

	res, err := m.parser.ParseFile(localLog)
	if err != nil {
		log.Warn("log parse degraded", zap.Error(err))
	}
	if res.Empty() {
		log.Info("no iteration data in log yet")
		return nil
	}

	in := render.Input{
		Data:        res,
		PlotReports: m.c.Reports,
		TextReports: m.c.TextReports,
		Snapshots:   m.fetchSnapshots(log, src, tmp),
	}
	if err := m.renderer.RenderFile(in, m.outputPath); err != nil {
		return fmt.Errorf("writing status image: %w", err)
	}

	log.Info("status image updated",
		zap.String("path", m.outputPath),
		zap.Int("iterations", res.LastIteration()),
		zap.Int("report_samples", len(res.ReportIterations)))
	return nil
}

// fetchSnapshots downloads and decodes the newest image of each scene.
// A scene that is missing or fails to decode becomes an empty Snapshot,
// which renders as a placeholder panel.
func (m *Monitor) fetchSnapshots(log *zap.Logger, src FileSource, tmp string) []render.Snapshot {
	snaps := make([]render.Snapshot, 0, len(m.c.Scenes))
	for i, scene := range m.c.Scenes {
		snap := render.Snapshot{Name: scene}

		dir := path.Join(m.c.ImageDir(), scene)
		remotePath, err := src.LatestImage(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug("no scene image yet", zap.String("scene", scene))
		case err != nil:
			log.Warn("listing scene images failed",
				zap.String("scene", scene), zap.Error(err))
		default:
			local := filepath.Join(tmp, fmt.Sprintf("scene_%d%s", i, path.Ext(remotePath)))
			if img, err := fetchImage(src, remotePath, local); err != nil {
				log.Warn("fetching scene image failed",
					zap.String("scene", scene),
					zap.String("path", remotePath),
					zap.Error(err))
			} else {
				snap.Image = img
				snap.Caption = path.Base(remotePath)
			}
		}

		snaps = append(snaps, snap)
	}
	return snaps
}

func fetchImage(src FileSource, remotePath, localPath string) (image.Image, error) {
	if err := src.FetchFile(remotePath, localPath); err != nil {
		return nil, err
	}
	f, err := os.Open(localPath) // #nosec G304 -- cycle-scoped temp path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", remotePath, err)
	}
	return img, nil
}
