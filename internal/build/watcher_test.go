package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gerunddev/postbridge/internal/state"
)

func TestWatcherRebuildsOnChange(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchDebounce = 20 * time.Millisecond
	writePost(t, cfg, "notes.md", notesPost)

	results := make(chan *Result, 8)
	w, err := NewWatcher(newBuilder(t, cfg, state.NewState()), func(r *Result, err error) {
		if err != nil {
			t.Errorf("build failed: %v", err)
			return
		}
		results <- r
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, Options{})
	}()

	waitForResult := func(desc string) *Result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", desc)
			return nil
		}
	}

	initial := waitForResult("initial build")
	if initial.PostsExtracted != 1 {
		t.Errorf("initial build extracted %d, want 1", initial.PostsExtracted)
	}

	writePost(t, cfg, "hello.md", helloPost)

	rebuilt := waitForResult("rebuild")
	if rebuilt.PostsExtracted < 1 {
		t.Errorf("rebuild extracted %d, want the new post", rebuilt.PostsExtracted)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, "hello.json")); err != nil {
		t.Errorf("new post not built: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostsDir = filepath.Join(t.TempDir(), "absent")

	if _, err := NewWatcher(newBuilder(t, cfg, state.NewState()), nil); err == nil {
		t.Error("Expected error for missing posts directory")
	}
}
