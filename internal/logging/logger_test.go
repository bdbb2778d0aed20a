package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, ws, content string) {
	t.Helper()
	dir := filepath.Join(ws, ".forge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func resetState() {
	loggersMu.Lock()
	for k, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, k)
	}
	loggersMu.Unlock()

	configMu.Lock()
	config = loggingConfig{}
	configMu.Unlock()
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	if err := Initialize(""); err == nil {
		t.Fatal("expected error for empty workspace")
	}
}

func TestInitializeNoConfigStaysQuiet(t *testing.T) {
	defer resetState()
	ws := t.TempDir()

	if err := Initialize(ws); err != nil {
		t.Fatal(err)
	}
	if IsDebugMode() {
		t.Error("debug mode enabled without config")
	}
	if _, err := os.Stat(filepath.Join(ws, ".forge", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory created in production mode")
	}
}

func TestInitializeDebugModeWritesLogs(t *testing.T) {
	defer resetState()
	ws := t.TempDir()
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(ws); err != nil {
		t.Fatal(err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode not enabled")
	}

	Optimizer("round %d complete", 1)
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".forge", "logs"))
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "optimizer") {
			data, err := os.ReadFile(filepath.Join(ws, ".forge", "logs", e.Name()))
			if err != nil {
				t.Fatal(err)
			}
			if strings.Contains(string(data), "round 1 complete") {
				found = true
			}
		}
	}
	if !found {
		t.Error("optimizer log entry not written")
	}
}

func TestCategoryToggle(t *testing.T) {
	defer resetState()
	ws := t.TempDir()
	writeConfig(t, ws, "logging:\n  debug_mode: true\n  categories:\n    metric: false\n")

	if err := Initialize(ws); err != nil {
		t.Fatal(err)
	}

	if IsCategoryEnabled(CategoryMetric) {
		t.Error("disabled category reported enabled")
	}
	if !IsCategoryEnabled(CategoryOptimizer) {
		t.Error("unlisted category should default to enabled")
	}
}
