package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cfdtools/starwatch/pkg/config"
	"github.com/cfdtools/starwatch/pkg/remote"
)

const sampleLog = "TimeStep 1: Time 0.5\n" +
	"Iteration  Continuity  X-momentum  Drag (N)\n" +
	"1  1.0e-2  2.0e-2  10.0\n" +
	"2  5.0e-3  9.0e-3  11.5\n"

// fakeSource serves remote paths from memory.
type fakeSource struct {
	files  map[string][]byte // remote path -> content
	images map[string]string // remote dir -> remote image path
	closed bool
}

func (f *fakeSource) FetchFile(remotePath, localPath string) error {
	content, ok := f.files[remotePath]
	if !ok {
		return fmt.Errorf("open %s: %w", remotePath, fs.ErrNotExist)
	}
	return os.WriteFile(localPath, content, 0644)
}

func (f *fakeSource) LatestImage(dir string) (string, error) {
	p, ok := f.images[dir]
	if !ok {
		return "", fs.ErrNotExist
	}
	return p, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Host = "sim.example.com"
	cfg.Interval = 10 * time.Millisecond
	cfg.OutputDir = t.TempDir()
	cfg.Cases = map[string]*config.CaseConfig{
		"Grid0": {
			User:             "cfd",
			Password:         "pw",
			BaseDir:          "/sims",
			SimulationFolder: "wing",
			Logfile:          "run.log",
			Reports:          []string{"Drag (N)"},
		},
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestMonitor(t *testing.T, cfg *config.Config, src *fakeSource) *Monitor {
	t.Helper()
	dial := func() (FileSource, error) { return src, nil }
	m, err := New(cfg, "Grid0", dial, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCycle_WritesStatusImage(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{
		files: map[string][]byte{
			"/sims/wing/run.log":                 []byte(sampleLog),
			"/sims/wing/Pressure/scene_0001.png": pngBytes(t),
		},
		images: map[string]string{
			"/sims/wing/Pressure": "/sims/wing/Pressure/scene_0001.png",
		},
	}
	m := newTestMonitor(t, cfg, src)

	if err := m.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}

	out := cfg.OutputPath("Grid0")
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("status image not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("status image is not valid PNG: %v", err)
	}
	if !src.closed {
		t.Error("source not closed after cycle")
	}
}

func TestCycle_MissingLogKeepsLastImage(t *testing.T) {
	cfg := testConfig(t)
	good := &fakeSource{files: map[string][]byte{
		"/sims/wing/run.log": []byte(sampleLog),
	}}
	m := newTestMonitor(t, cfg, good)
	if err := m.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}
	out := cfg.OutputPath("Grid0")
	before, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}

	// Next cycle the log has vanished; the cycle fails but the
	// previous image survives.
	m.dial = func() (FileSource, error) {
		return &fakeSource{files: map[string][]byte{}}, nil
	}
	if err := m.Cycle(context.Background()); err == nil {
		t.Error("Cycle() expected error for missing log")
	}
	after, err := os.Stat(out)
	if err != nil {
		t.Fatalf("status image was removed on failed cycle: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("status image was modified by a failed cycle")
	}
}

func TestCycle_EmptyLogRendersNothing(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{files: map[string][]byte{
		"/sims/wing/run.log": []byte("solver starting up\n"),
	}}
	m := newTestMonitor(t, cfg, src)

	if err := m.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}
	if _, err := os.Stat(cfg.OutputPath("Grid0")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("no status image expected for a log without data")
	}
}

func TestCycle_CleansTempFiles(t *testing.T) {
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	cfg := testConfig(t)
	src := &fakeSource{files: map[string][]byte{
		"/sims/wing/run.log": []byte(sampleLog),
	}}
	m := newTestMonitor(t, cfg, src)

	if err := m.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}

	entries, err := os.ReadDir(tmpRoot)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "starwatch-") {
			t.Errorf("leftover cycle temp dir %s", e.Name())
		}
	}
}

func TestRun_AuthFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	dial := func() (FileSource, error) {
		return nil, fmt.Errorf("%w: bad credentials", remote.ErrAuth)
	}
	m, err := New(cfg, "Grid0", dial, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, remote.ErrAuth) {
			t.Errorf("Run() error = %v, want ErrAuth", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop on auth failure")
	}
}

func TestRun_ConnectFailureRetriesUntilCancel(t *testing.T) {
	cfg := testConfig(t)
	dials := 0
	dial := func() (FileSource, error) {
		dials++
		return nil, fmt.Errorf("%w: refused", remote.ErrConnect)
	}
	m, err := New(cfg, "Grid0", dial, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
	if dials < 2 {
		t.Errorf("dialed %d times, want retries", dials)
	}
}

func TestNew_UnknownCase(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg, "Nope", func() (FileSource, error) { return nil, nil }, zap.NewNop())
	if err == nil {
		t.Error("New() expected error for unknown case")
	}
}
