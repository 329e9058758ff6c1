package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type collector struct {
	mu    sync.Mutex
	paths map[string]int
}

func newCollector() *collector {
	return &collector{paths: make(map[string]int)}
}

func (c *collector) handle(_ context.Context, paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		c.paths[p]++
	}
}

func (c *collector) seen(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paths[path] > 0
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func testConfig() WatcherConfig {
	cfg := DefaultWatcherConfig()
	cfg.DebounceWindow = 50 * time.Millisecond
	return cfg
}

func rsOnly(path string) bool { return strings.HasSuffix(path, ".rs") }

func TestWatcherReportsChangedFiles(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(existing, []byte("fn a() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, testConfig(), rsOnly)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := newCollector()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, c.handle) }()

	if err := os.WriteFile(existing, []byte("fn b() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.seen(existing) })

	sub := filepath.Join(root, "nested", "deeper")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	created := filepath.Join(sub, "mod.rs")
	if err := os.WriteFile(created, []byte("fn c() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.seen(created) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherFilters(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "target"), 0755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, testConfig(), rsOnly)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newCollector()
	go w.Run(ctx, c.handle)

	ignored := []string{
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, ".hidden.rs"),
		filepath.Join(root, "target", "built.rs"),
	}
	for _, p := range ignored {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	marker := filepath.Join(root, "marker.rs")
	if err := os.WriteFile(marker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return c.seen(marker) })
	for _, p := range ignored {
		if c.seen(p) {
			t.Errorf("%s should have been filtered", p)
		}
	}
}

func TestShouldIgnore(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, DefaultWatcherConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	tests := []struct {
		path string
		want bool
	}{
		{root, false},
		{filepath.Join(root, "src", "lib.rs"), false},
		{filepath.Join(root, ".git", "HEAD"), true},
		{filepath.Join(root, "a", "target", "x.rs"), true},
		{filepath.Join(root, ".swp"), true},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
