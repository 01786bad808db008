package confloader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncboard.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	fired := make(chan string, 1)
	w.OnChange(func(p string) {
		select {
		case fired <- p:
		default:
		}
	})
	w.StartAsync()

	// Give the watcher a moment to be scheduled before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case p := <-fired:
		if filepath.Base(p) != "syncboard.yaml" {
			t.Errorf("callback path = %q, want the config file", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired for the config write")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syncboard.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	var fires atomic.Int32
	w.OnChange(func(string) { fires.Add(1) })
	w.StartAsync()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	time.Sleep(2 * debounceWindow)
	if got := fires.Load(); got != 0 {
		t.Errorf("watcher fired %d times for an unrelated file", got)
	}
}
