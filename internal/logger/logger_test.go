package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}

	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("resolve tmp dir symlink failed: %v", err)
	}
	realGot, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("resolve got dir symlink failed: %v", err)
	}
	expectedDir := filepath.Join(realTmpDir, defaultLogDirName)
	if realGot != expectedDir {
		t.Fatalf("unexpected log dir: got=%s expected=%s", realGot, expectedDir)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("expected log dir to be created: %v", err)
	}
}

func TestNewReleaseWritesToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Options{
		Dir:      tmpDir,
		Filename: "release.log",
	}
	log := New("release", cfg)
	log.Info("release-log-test")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	if !strings.Contains(string(content), "release-log-test") {
		t.Fatalf("expected log content to contain message, got=%s", string(content))
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Options{
		Dir:      tmpDir,
		Filename: "debug.log",
	}
	log := New("debug", cfg)
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestRunBindsRunIDField(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := L
	L = zap.New(core)
	t.Cleanup(func() {
		L = previous
	})

	Run("run-123").Infow("reconcile_run_finished", "users", 3)

	entries := logs.FilterMessage("reconcile_run_finished").All()
	if len(entries) != 1 {
		t.Fatalf("entries want 1 got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "run-123" {
		t.Fatalf("run_id want run-123 got %v", fields["run_id"])
	}
	if fields["users"] != int64(3) {
		t.Fatalf("users want 3 got %v", fields["users"])
	}
}

func TestRunWithoutIDFallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := L
	L = zap.New(core)
	t.Cleanup(func() {
		L = previous
	})

	Run("").Warnw("reconcile_run_degraded")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries want 1 got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["run_id"]; ok {
		t.Fatalf("run_id should not be bound when empty")
	}
}
