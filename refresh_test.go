package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/stylecache-mcp/index"
	"github.com/lexandro/stylecache-mcp/pass"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contentCompiler returns source files verbatim.
type contentCompiler struct{}

func (contentCompiler) Compile(path string, includePaths []string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func newTestRunner(t *testing.T, rootDir string) (*pass.Runner, *index.Store) {
	t.Helper()
	store := index.NewStore()
	runner := pass.NewRunner(pass.Options{
		Root:     rootDir,
		Compiler: contentCompiler{},
		Store:    store,
		Logger:   testLogger(),
	})
	return runner, store
}

func Test_refreshOnce_FirstCallCompiles(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "base.scss"), []byte(".a{}"), 0644)
	runner, store := newTestRunner(t, tmpDir)

	if !refreshOnce(runner, testLogger()) {
		t.Fatal("expected first refresh to compile")
	}
	if _, ok := store.Get("base"); !ok {
		t.Error("expected base to be cached")
	}
}

func Test_refreshOnce_SkipsUnchangedSources(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "base.scss"), []byte(".a{}"), 0644)
	runner, store := newTestRunner(t, tmpDir)
	runner.Run()

	if refreshOnce(runner, testLogger()) {
		t.Error("expected no recompile for unchanged sources")
	}
	if store.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", store.Generation())
	}
}

func Test_refreshOnce_IgnoresNonStylesheetChanges(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "base.scss"), []byte(".a{}"), 0644)
	runner, _ := newTestRunner(t, tmpDir)
	runner.Run()

	os.WriteFile(filepath.Join(tmpDir, "stylecache-mcp.log"), []byte("level=INFO\n"), 0644)

	if refreshOnce(runner, testLogger()) {
		t.Error("expected log file changes not to trigger a recompile")
	}
}

func Test_refreshOnce_RecompilesWhenPartialChanges(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "base.scss"), []byte(".a{}"), 0644)
	runner, store := newTestRunner(t, tmpDir)
	runner.Run()

	partial := filepath.Join(tmpDir, "_vars.scss")
	os.WriteFile(partial, []byte("$x: 1;"), 0644)

	if !refreshOnce(runner, testLogger()) {
		t.Error("expected a new partial to trigger a recompile")
	}
	if store.Generation() != 2 {
		t.Errorf("expected generation 2, got %d", store.Generation())
	}
}

func Test_refreshOnce_RemovedSourceLeavesCache(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "gone.scss")
	os.WriteFile(path, []byte(".g{}"), 0644)
	runner, store := newTestRunner(t, tmpDir)
	runner.Run()

	os.Remove(path)
	refreshOnce(runner, testLogger())

	if _, ok := store.Get("gone"); ok {
		t.Error("expected removed source to leave the cache after refresh")
	}
}

func Test_runPeriodicRefresh_Stops(t *testing.T) {
	runner, _ := newTestRunner(t, t.TempDir())
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		runPeriodicRefresh(10*time.Millisecond, runner, testLogger(), stop)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected refresh loop to stop")
	}
}

func Test_setupLogger_FallsBackToStderr(t *testing.T) {
	logger := setupLogger("debug", filepath.Join(t.TempDir(), "missing", "dir", "log.txt"))
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}
}
