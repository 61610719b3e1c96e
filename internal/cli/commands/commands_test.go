package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testLog = `TimeStep 1: Time 0.5
Iteration  Continuity  X-momentum  Drag (N)
1  1.0e-2  2.0e-2  10.0
2  5.0e-3  9.0e-3  11.5
`

func writeTestConfig(t *testing.T, outputDir string) string {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	config := `host: sim.example.com
output_dir: ` + outputDir + `
cases:
  Grid0:
    user: cfd
    password: pw
    base_dir: /sims
    simulation_folder: wing
    logfile: run.log
    reports: ["Drag (N)"]
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	return configPath
}

func writeTestLog(t *testing.T, content string) string {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create log file: %v", err)
	}
	return logPath
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	if cmd.Use != "watch <config-file> <case>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	// Check flags exist
	flags := []string{"output-dir", "host", "interval", "log-json", "once"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()

	if cmd.Use != "inspect <logfile>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	for _, flag := range []string{"output", "report", "quiet"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
}

func TestRunValidate_Success(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "invalid.yaml")
	// Valid YAML, missing required fields
	if err := os.WriteFile(configPath, []byte("port: 22\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	cmd := NewValidateCommand()
	cmd.SetArgs([]string{"/nonexistent/config.yaml"})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunInspect_Success(t *testing.T) {
	defer func() { ExitCode = 0 }()

	logPath := writeTestLog(t, testLog)

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"--report", "Drag (N)", logPath})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestRunInspect_NoData(t *testing.T) {
	defer func() { ExitCode = 0 }()

	logPath := writeTestLog(t, "solver starting\n")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{logPath})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1 for log without data", ExitCode)
	}
}

func TestRunInspect_BadFormat(t *testing.T) {
	logPath := writeTestLog(t, testLog)

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"--output", "xml", logPath})

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v", err)
	}
}

func TestRunRender_Success(t *testing.T) {
	outDir := t.TempDir()
	configPath := writeTestConfig(t, outDir)
	logPath := writeTestLog(t, testLog)

	cmd := NewRenderCommand()
	cmd.SetArgs([]string{configPath, "Grid0", logPath})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	outPath := filepath.Join(outDir, "status_wing_Grid0.png")
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("status image not written: %v", err)
	}
}

func TestRunRender_UnknownCase(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())
	logPath := writeTestLog(t, testLog)

	cmd := NewRenderCommand()
	cmd.SetArgs([]string{configPath, "Missing", logPath})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for unknown case")
	}
}

func TestRunRender_EmptyLog(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())
	logPath := writeTestLog(t, "")

	cmd := NewRenderCommand()
	cmd.SetArgs([]string{configPath, "Grid0", logPath})

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected error for empty log")
	}
	if !strings.Contains(err.Error(), "no iteration data") {
		t.Errorf("error = %v", err)
	}
}

func TestRunWatch_MissingConfig(t *testing.T) {
	cmd := NewWatchCommand()
	cmd.SetArgs([]string{"/nonexistent/config.yaml", "Grid0"})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for missing config")
	}
}

func TestRunWatch_UnknownCase(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	cmd := NewWatchCommand()
	cmd.SetArgs([]string{configPath, "Missing"})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for unknown case")
	}
}

func TestRunWatch_InvalidInterval(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	cmd := NewWatchCommand()
	cmd.SetArgs([]string{"--interval", "bogus", configPath, "Grid0"})

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected error for invalid interval")
	}
	if !strings.Contains(err.Error(), "invalid interval") {
		t.Errorf("error = %v", err)
	}
}

func TestParseInterval(t *testing.T) {
	if _, err := parseInterval("-5s"); err == nil {
		t.Error("Expected error for negative interval")
	}
	d, err := parseInterval("45s")
	if err != nil {
		t.Fatalf("parseInterval() error = %v", err)
	}
	if d.Seconds() != 45 {
		t.Errorf("parseInterval() = %v", d)
	}
}
