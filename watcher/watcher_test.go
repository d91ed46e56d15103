package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// newTestWatcher returns a watcher tuned for fast tests, with debouncing
// disabled so events surface on the next poll.
func newTestWatcher() *Watcher {
	return New(WithInterval(10*time.Millisecond), WithDebounce(0))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcher_DetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.xml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher()
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	var mu sync.Mutex
	var got []Event
	w.OnChange(func(event Event) {
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
	})

	w.Start()
	defer w.Stop()

	// Force a newer modification time; coarse filesystem clocks can
	// otherwise hide a fast rewrite.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Op != OpWrite {
		t.Errorf("event op = %v, want write", got[0].Op)
	}
}

func TestWatcher_DetectsCreateAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.xml")

	w := newTestWatcher()
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	var mu sync.Mutex
	var ops []Operation
	w.OnChange(func(event Event) {
		mu.Lock()
		ops = append(ops, event.Op)
		mu.Unlock()
	})

	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ops) >= 1
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ops) >= 2
	})

	mu.Lock()
	defer mu.Unlock()
	if ops[0] != OpCreate {
		t.Errorf("first op = %v, want create", ops[0])
	}
	if ops[1] != OpRemove {
		t.Errorf("second op = %v, want remove", ops[1])
	}
}

func TestWatcher_Unwatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.xml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher()
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	if len(w.WatchedFiles()) != 1 {
		t.Fatalf("expected one watched file, got %d", len(w.WatchedFiles()))
	}

	if err := w.Unwatch(path); err != nil {
		t.Fatal(err)
	}
	if len(w.WatchedFiles()) != 0 {
		t.Errorf("expected no watched files after Unwatch")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w := newTestWatcher()

	if w.IsRunning() {
		t.Error("expected a fresh watcher to be stopped")
	}

	w.Start()
	if !w.IsRunning() {
		t.Error("expected the watcher to be running after Start")
	}
	// Starting again is a no-op.
	w.Start()

	w.Stop()
	if w.IsRunning() {
		t.Error("expected the watcher to stop")
	}
	// Stopping again is a no-op.
	w.Stop()
}

func TestWatcher_HandlerPanicIsContained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.xml")

	w := newTestWatcher()
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var sawEvent bool
	w.OnChange(func(Event) { panic("bad handler") })
	w.OnChange(func(Event) {
		mu.Lock()
		sawEvent = true
		mu.Unlock()
	})

	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return sawEvent
	})
}

func TestWatcher_DebounceCoalesces(t *testing.T) {
	w := New(WithInterval(10*time.Millisecond), WithDebounce(20*time.Millisecond))

	now := time.Now()
	w.queueEvent(Event{Path: "/f", Op: OpCreate, Time: now})
	w.queueEvent(Event{Path: "/f", Op: OpWrite, Time: now})

	w.pendingMu.Lock()
	pending := w.pending["/f"]
	w.pendingMu.Unlock()
	if pending.op != OpCreate {
		t.Errorf("pending op = %v, want create to stick through writes", pending.op)
	}

	w.queueEvent(Event{Path: "/f", Op: OpRemove, Time: now})
	w.pendingMu.Lock()
	pending = w.pending["/f"]
	w.pendingMu.Unlock()
	if pending.op != OpRemove {
		t.Errorf("pending op = %v, want remove to take precedence", pending.op)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
