// Package notify delivers configuration change notifications.
//
// Components subscribe for all changes or for a dotted-path subtree and
// receive a callback whenever a variable is set or removed, or the whole
// configuration is reloaded. Subscriptions follow an explicit
// acquire/release discipline: a subscriber that goes away must call
// Unsubscribe, there is no implicit cleanup.
package notify

import "sync"

// ChangeType represents the kind of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a variable was set or updated.
	ChangeSet ChangeType = iota

	// ChangeRemove indicates a variable was removed.
	ChangeRemove

	// ChangeReload indicates the entire configuration was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeRemove:
		return "remove"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is a configuration change event. Changes are immutable: one is
// constructed per mutation and handed to every matching observer.
type Change struct {
	// Path is the fully qualified dotted name of the changed variable.
	// Empty for reload events.
	Path string

	// Type is the kind of change.
	Type ChangeType

	// OldValue is the previous value, empty if the variable was unset.
	OldValue string

	// NewValue is the new value, empty for removals.
	NewValue string

	// Source identifies where the change came from, such as "set", "load"
	// or the path of a reloaded file.
	Source string
}

// Observer is called when a configuration change occurs.
type Observer func(change Change)

// Subscription is an active observer registration. Callers must keep it and
// call Unsubscribe when the observer's lifetime ends.
type Subscription struct {
	id       uint64
	path     string
	notifier *Notifier
}

// Unsubscribe releases the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages change subscriptions and fan-out.
type Notifier struct {
	mu sync.RWMutex

	globalObservers map[uint64]Observer
	pathObservers   map[string]map[uint64]Observer
	nextID          uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery through a buffered channel.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a Notifier. Delivery is synchronous unless WithAsync is given.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		pathObservers:   make(map[string]map[uint64]Observer),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribePath registers an observer for changes within a dotted-path
// subtree. Subscribing to "ui" receives changes to "ui.theme.color".
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.pathObservers[path] == nil {
		n.pathObservers[path] = make(map[uint64]Observer)
	}
	n.pathObservers[path][id] = observer

	return &Subscription{id: id, path: path, notifier: n}
}

// Notify delivers a change to all matching observers. Observers registered
// during an in-flight delivery may or may not see that change.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliver(change)
}

// NotifySet is a convenience for set changes.
func (n *Notifier) NotifySet(path, oldValue, newValue, source string) {
	n.Notify(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyRemove is a convenience for removals.
func (n *Notifier) NotifyRemove(path, oldValue, source string) {
	n.Notify(Change{Path: path, Type: ChangeRemove, OldValue: oldValue, Source: source})
}

// NotifyReload is a convenience for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// Close shuts the notifier down. Safe to call multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for path, observers := range n.pathObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.pathObservers, path)
		}
	}
}

// deliver collects the matching observers under the lock and calls them
// outside it, so an observer may subscribe or unsubscribe reentrantly.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()

	var observers []Observer
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}

	if change.Path != "" {
		if pathObs, ok := n.pathObservers[change.Path]; ok {
			for _, obs := range pathObs {
				observers = append(observers, obs)
			}
		}
		for path, pathObs := range n.pathObservers {
			if isParentPath(path, change.Path) {
				for _, obs := range pathObs {
					observers = append(observers, obs)
				}
			}
		}
	} else {
		// Reload reaches path observers too.
		for _, pathObs := range n.pathObservers {
			for _, obs := range pathObs {
				observers = append(observers, obs)
			}
		}
	}

	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			// Drain whatever is still buffered.
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// isParentPath reports whether parent names a section containing child,
// e.g. "ui" is a parent path of "ui.theme.color".
func isParentPath(parent, child string) bool {
	if len(parent) >= len(child) {
		return false
	}
	if parent == "" {
		return true
	}
	return child[:len(parent)] == parent && child[len(parent)] == '.'
}

// Batch accumulates changes and delivers them as a group. The configuration
// loader uses one to collect per-variable changes during a bulk read and
// commit them after the tree lock has been released.
type Batch struct {
	notifier *Notifier
	mu       sync.Mutex
	changes  []Change
}

// NewBatch creates a batch bound to the notifier.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add appends a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Set appends a set change to the batch.
func (b *Batch) Set(path, oldValue, newValue, source string) {
	b.Add(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// Commit delivers all batched changes in order and empties the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard empties the batch without delivering anything.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
