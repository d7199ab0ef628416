package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebouncerBatchesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)
	d.Start(ctx)

	for range 3 {
		input <- ChangeEvent{Path: "net.yaml", Count: 1, Timestamp: time.Now()}
	}

	select {
	case ev := <-d.Output():
		if ev.Count != 3 || ev.Path != "net.yaml" {
			t.Errorf("got %+v, want one event folding 3 writes", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced event")
	}

	select {
	case ev := <-d.Output():
		t.Errorf("unexpected second event %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 200*time.Millisecond, 100*time.Millisecond)
	d.Start(ctx)

	// Keep writing faster than the quiet period so only maxWait can fire
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case input <- ChangeEvent{Path: "net.yaml", Count: 1}:
				case <-stop:
					return
				}
			}
		}
	}()

	start := time.Now()
	select {
	case ev := <-d.Output():
		if ev.Count < 1 {
			t.Errorf("empty event %+v", ev)
		}
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Errorf("event took %v, max wait not honoured", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for max-wait flush")
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Path: "net.yaml", Count: 1}
	close(input)

	ev, ok := <-d.Output()
	if !ok || ev.Count != 1 {
		t.Fatalf("got %+v, %t, want pending event flushed", ev, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("output should close after input closes")
	}
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.yaml")
	if err := os.WriteFile(path, []byte("source: A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(path)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Neighbouring files are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("source: B\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	abs, _ := filepath.Abs(path)
	select {
	case ev := <-fw.Events():
		if ev.Path != abs {
			t.Errorf("event for %s, want %s", ev.Path, abs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file event")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-fw.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}
