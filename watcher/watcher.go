// Package watcher monitors configuration files for changes.
//
// The watcher polls modification times and invokes handlers when a watched
// file is written, created or removed, debouncing rapid successive changes
// into a single event.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is a file change notification.
type Event struct {
	// Path is the absolute path of the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the change was observed.
	Time time.Time
}

// Operation is the kind of file change.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file appeared.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a watched file changes.
type Handler func(event Event)

// Watcher polls a set of files for modification-time changes.
type Watcher struct {
	mu       sync.RWMutex
	files    map[string]time.Time
	handlers []Handler
	interval time.Duration
	running  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debounce  time.Duration
	pendingMu sync.Mutex
	pending   map[string]pendingEvent
}

type pendingEvent struct {
	op   Operation
	time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets how long a file must stay quiet before its coalesced
// event is delivered. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher with a 500ms poll interval and 100ms debounce.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]time.Time),
		interval: 500 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]pendingEvent),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch adds a file to the watch list. A file that doesn't exist yet is
// watched for creation.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.files[absPath] = time.Time{}
			return nil
		}
		return err
	}

	w.files[absPath] = info.ModTime()
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, absPath)
	return nil
}

// OnChange registers a handler for change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins polling. Starting a running watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop()

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop()
	}
}

// Stop stops polling and waits for in-flight deliveries to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning reports whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedFiles returns the watched file paths.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

func (w *Watcher) pollLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkFiles()
		}
	}
}

func (w *Watcher) checkFiles() {
	w.mu.RLock()
	files := make(map[string]time.Time, len(w.files))
	for path, modTime := range w.files {
		files[path] = modTime
	}
	w.mu.RUnlock()

	for path, lastMod := range files {
		event := w.checkFile(path, lastMod)
		if event == nil {
			continue
		}
		if w.debounce > 0 {
			w.queueEvent(*event)
		} else {
			w.emitEvent(*event)
		}
	}
}

func (w *Watcher) checkFile(path string, lastMod time.Time) *Event {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		if lastMod.IsZero() {
			return nil
		}
		w.setModTime(path, time.Time{})
		return &Event{Path: path, Op: OpRemove, Time: time.Now()}
	}
	if err != nil {
		return nil
	}

	currentMod := info.ModTime()

	if lastMod.IsZero() {
		w.setModTime(path, currentMod)
		return &Event{Path: path, Op: OpCreate, Time: time.Now()}
	}

	if !currentMod.Equal(lastMod) {
		w.setModTime(path, currentMod)
		return &Event{Path: path, Op: OpWrite, Time: time.Now()}
	}

	return nil
}

func (w *Watcher) setModTime(path string, t time.Time) {
	w.mu.Lock()
	if _, ok := w.files[path]; ok {
		w.files[path] = t
	}
	w.mu.Unlock()
}

// queueEvent coalesces rapid changes to one file: a remove replaces
// anything pending, a create sticks through subsequent writes, and writes
// only refresh the timestamp.
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pending[event.Path]
	switch {
	case !exists, event.Op == OpRemove:
		w.pending[event.Path] = pendingEvent{op: event.Op, time: event.Time}
	case existing.op == OpCreate:
		w.pending[event.Path] = pendingEvent{op: OpCreate, time: event.Time}
	default:
		w.pending[event.Path] = pendingEvent{op: existing.op, time: event.Time}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending emits events for files that have been quiet for at least a
// full debounce window.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	threshold := time.Now().Add(-w.debounce)

	var ready []Event
	for path, pending := range w.pending {
		if pending.time.Before(threshold) {
			ready = append(ready, Event{Path: path, Op: pending.op, Time: pending.time})
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, event := range ready {
		w.emitEvent(event)
	}
}

func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		callHandler(handler, event)
	}
}

// callHandler isolates handler panics so one bad handler can't kill the
// polling goroutine.
func callHandler(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}
