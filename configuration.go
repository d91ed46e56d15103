package conf

import (
	"io"
	"strings"
	"sync"

	"github.com/dotpath/conf/notify"
)

// Configuration is the facade over a configuration tree. Variables are
// addressed by fully qualified dotted names; all tree-touching operations
// are serialized by one coarse lock, while the source and the reader and
// writer factories each have an independent lock so reconfiguring one never
// blocks the others.
//
// Change events are delivered after the tree lock is released, so observers
// may call back into the Configuration.
type Configuration struct {
	mu   sync.Mutex
	root *Section

	sourceMu sync.Mutex
	source   Source

	readerMu      sync.Mutex
	readerFactory ReaderFactory

	writerMu      sync.Mutex
	writerFactory WriterFactory

	notifier *notify.Notifier
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithSource sets the source the configuration loads from and saves to.
func WithSource(s Source) Option {
	return func(c *Configuration) {
		c.source = s
	}
}

// WithReaderFactory sets the factory producing reader instances.
func WithReaderFactory(f ReaderFactory) Option {
	return func(c *Configuration) {
		c.readerFactory = f
	}
}

// WithWriterFactory sets the factory producing writer instances.
func WithWriterFactory(f WriterFactory) Option {
	return func(c *Configuration) {
		c.writerFactory = f
	}
}

// WithNotifier shares an existing notifier between configurations. Without
// it, each Configuration owns its own.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Configuration) {
		c.notifier = n
	}
}

// New creates an empty configuration.
func New(opts ...Option) *Configuration {
	c := &Configuration{root: NewSection()}

	for _, opt := range opts {
		opt(c)
	}

	if c.notifier == nil {
		c.notifier = notify.New()
	}

	return c
}

// Close shuts down the configuration's notifier.
func (c *Configuration) Close() {
	c.notifier.Close()
}

// Root returns the root section of the tree. The returned section is not
// synchronized; direct access races with concurrent facade calls.
func (c *Configuration) Root() *Section {
	return c.root
}

// SetSource replaces the configuration source.
func (c *Configuration) SetSource(s Source) {
	c.sourceMu.Lock()
	defer c.sourceMu.Unlock()
	c.source = s
}

// Source returns the current configuration source.
func (c *Configuration) Source() Source {
	c.sourceMu.Lock()
	defer c.sourceMu.Unlock()
	return c.source
}

// SetReaderFactory replaces the reader factory.
func (c *Configuration) SetReaderFactory(f ReaderFactory) {
	c.readerMu.Lock()
	defer c.readerMu.Unlock()
	c.readerFactory = f
}

// ReaderFactory returns the current reader factory.
func (c *Configuration) ReaderFactory() ReaderFactory {
	c.readerMu.Lock()
	defer c.readerMu.Unlock()
	return c.readerFactory
}

// SetWriterFactory replaces the writer factory.
func (c *Configuration) SetWriterFactory(f WriterFactory) {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	c.writerFactory = f
}

// WriterFactory returns the current writer factory.
func (c *Configuration) WriterFactory() WriterFactory {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	return c.writerFactory
}

// reader returns a reader instance, falling back to the built-in XML format
// when no factory is configured.
func (c *Configuration) reader() Reader {
	if f := c.ReaderFactory(); f != nil {
		return f()
	}
	return NewXMLReader()
}

// writer returns a writer instance, falling back to the built-in XML format
// when no factory is configured.
func (c *Configuration) writer() Writer {
	if f := c.WriterFactory(); f != nil {
		return f()
	}
	return NewXMLWriter()
}

// Subscribe registers an observer for all configuration changes.
func (c *Configuration) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes within a dotted-path
// subtree.
func (c *Configuration) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

// Notifier returns the configuration's change notifier.
func (c *Configuration) Notifier() *notify.Notifier {
	return c.notifier
}

// Set stores a value for the named variable, creating intermediate sections
// as needed, and returns whether the stored value changed. A change fires
// one event. Names have no escaping syntax: a variable name containing '.'
// is always interpreted as extra path segments.
func (c *Configuration) Set(name, value string) bool {
	c.mu.Lock()
	explorer := NewExplorer(c.root)
	leaf, ok := moveToParent(explorer, name, true)
	if !ok {
		c.mu.Unlock()
		return false
	}
	old, _ := explorer.Section().Get(leaf)
	changed := explorer.Section().Set(leaf, value)
	c.mu.Unlock()

	if changed {
		c.notifier.NotifySet(name, old, value, "set")
	}
	return changed
}

// SetInt stores an int using its canonical textual form.
func (c *Configuration) SetInt(name string, value int) bool {
	return c.Set(name, formatInt(value))
}

// SetInt64 stores an int64 using its canonical textual form.
func (c *Configuration) SetInt64(name string, value int64) bool {
	return c.Set(name, formatInt64(value))
}

// SetFloat64 stores a float64 using its canonical textual form.
func (c *Configuration) SetFloat64(name string, value float64) bool {
	return c.Set(name, formatFloat64(value))
}

// SetBool stores a bool using its canonical textual form.
func (c *Configuration) SetBool(name string, value bool) bool {
	return c.Set(name, formatBool(value))
}

// Get returns the value of the named variable. Missing path segments yield
// absent without side effects.
func (c *Configuration) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	explorer := NewExplorer(c.root)
	leaf, ok := moveToParent(explorer, name, false)
	if !ok {
		return "", false
	}
	return explorer.Section().Get(leaf)
}

// GetDefault returns the value of the named variable, setting it to def
// first (and firing a change event) when it is unset. Repeated calls with
// the same default are idempotent.
func (c *Configuration) GetDefault(name, def string) string {
	c.mu.Lock()
	explorer := NewExplorer(c.root)
	leaf, ok := moveToParent(explorer, name, true)
	if !ok {
		c.mu.Unlock()
		return def
	}
	if value, set := explorer.Section().Get(leaf); set {
		c.mu.Unlock()
		return value
	}
	explorer.Section().Set(leaf, def)
	c.mu.Unlock()

	c.notifier.NotifySet(name, "", def, "default")
	return def
}

// GetInt returns the variable parsed as an int, or 0 when unset.
func (c *Configuration) GetInt(name string) (int, error) {
	value, ok := c.Get(name)
	if !ok {
		return 0, nil
	}
	return parseInt(name, value)
}

// GetInt64 returns the variable parsed as an int64, or 0 when unset.
func (c *Configuration) GetInt64(name string) (int64, error) {
	value, ok := c.Get(name)
	if !ok {
		return 0, nil
	}
	return parseInt64(name, value)
}

// GetFloat64 returns the variable parsed as a float64, or 0 when unset.
func (c *Configuration) GetFloat64(name string) (float64, error) {
	value, ok := c.Get(name)
	if !ok {
		return 0, nil
	}
	return parseFloat64(name, value)
}

// GetBool returns the variable parsed as a bool, or false when unset.
func (c *Configuration) GetBool(name string) (bool, error) {
	value, ok := c.Get(name)
	if !ok {
		return false, nil
	}
	return parseBool(name, value)
}

// GetIntDefault returns the variable parsed as an int, applying def when it
// is unset.
func (c *Configuration) GetIntDefault(name string, def int) (int, error) {
	return parseInt(name, c.GetDefault(name, formatInt(def)))
}

// GetInt64Default returns the variable parsed as an int64, applying def
// when it is unset.
func (c *Configuration) GetInt64Default(name string, def int64) (int64, error) {
	return parseInt64(name, c.GetDefault(name, formatInt64(def)))
}

// GetFloat64Default returns the variable parsed as a float64, applying def
// when it is unset.
func (c *Configuration) GetFloat64Default(name string, def float64) (float64, error) {
	return parseFloat64(name, c.GetDefault(name, formatFloat64(def)))
}

// GetBoolDefault returns the variable parsed as a bool, applying def when
// it is unset.
func (c *Configuration) GetBoolDefault(name string, def bool) (bool, error) {
	return parseBool(name, c.GetDefault(name, formatBool(def)))
}

// IsSet reports whether the named variable is set.
func (c *Configuration) IsSet(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes the named variable and returns its previous value. A
// removal fires one event carrying an empty new value. Missing path
// segments yield absent without side effects.
func (c *Configuration) Remove(name string) (string, bool) {
	c.mu.Lock()
	explorer := NewExplorer(c.root)
	leaf, found := moveToParent(explorer, name, false)
	if !found {
		c.mu.Unlock()
		return "", false
	}
	old, ok := explorer.Section().Remove(leaf)
	c.mu.Unlock()

	if ok {
		c.notifier.NotifyRemove(name, old, "remove")
	}
	return old, ok
}

// RemoveInt removes the variable and returns its previous value parsed as
// an int, or 0 when it wasn't set.
func (c *Configuration) RemoveInt(name string) (int, error) {
	value, ok := c.Remove(name)
	if !ok {
		return 0, nil
	}
	return parseInt(name, value)
}

// RemoveInt64 removes the variable and returns its previous value parsed
// as an int64, or 0 when it wasn't set.
func (c *Configuration) RemoveInt64(name string) (int64, error) {
	value, ok := c.Remove(name)
	if !ok {
		return 0, nil
	}
	return parseInt64(name, value)
}

// RemoveFloat64 removes the variable and returns its previous value parsed
// as a float64, or 0 when it wasn't set.
func (c *Configuration) RemoveFloat64(name string) (float64, error) {
	value, ok := c.Remove(name)
	if !ok {
		return 0, nil
	}
	return parseFloat64(name, value)
}

// RemoveBool removes the variable and returns its previous value parsed as
// a bool, or false when it wasn't set.
func (c *Configuration) RemoveBool(name string) (bool, error) {
	value, ok := c.Remove(name)
	if !ok {
		return false, nil
	}
	return parseBool(name, value)
}

// Rename moves the value of from to to, firing up to two events: one for
// the removal and one for the set. When from is unset, Rename is a no-op
// and the destination is left untouched.
func (c *Configuration) Rename(from, to string) bool {
	value, ok := c.Remove(from)
	if !ok {
		return false
	}
	c.Set(to, value)
	return true
}

// Build walks the tree depth-first in pre-order and replays it on the
// builder: variables of a section first, then its non-empty subsections in
// sorted order. Sections with neither variables nor subsections produce no
// events at all.
func (c *Configuration) Build(b Builder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := b.StartConfiguration(); err != nil {
		return err
	}
	if err := buildSection(b, c.root); err != nil {
		return err
	}
	return b.EndConfiguration()
}

func buildSection(b Builder, s *Section) error {
	for _, name := range s.VariableNames() {
		value, _ := s.Get(name)
		if err := b.AddVariable(name, value); err != nil {
			return err
		}
	}

	for _, name := range s.SectionNames() {
		child := s.Section(name)
		if !child.HasVariables() && !child.HasSections() {
			continue
		}
		if err := b.StartSection(name); err != nil {
			return err
		}
		if err := buildSection(b, child); err != nil {
			return err
		}
		if err := b.EndSection(name); err != nil {
			return err
		}
	}
	return nil
}

// LoadWith reads configuration from r using the given reader, merging the
// stream's variables into the tree. Each variable whose value changes
// produces one event; events are delivered after the read completes. A
// failed read leaves the tree in an unspecified state and delivers no
// events.
func (c *Configuration) LoadWith(r io.Reader, reader Reader) error {
	batch := c.notifier.NewBatch()

	c.mu.Lock()
	err := reader.Read(r, newTreeLoader(c.root, batch))
	c.mu.Unlock()

	if err != nil {
		batch.Discard()
		return err
	}
	batch.Commit()
	return nil
}

// LoadFrom reads configuration from r using the configured reader factory,
// or the built-in XML format when none is set.
func (c *Configuration) LoadFrom(r io.Reader) error {
	return c.LoadWith(r, c.reader())
}

// Load reads configuration from the configured source. The source's stream
// is closed on every exit path; close errors are suppressed so they never
// mask a read error.
func (c *Configuration) Load() error {
	src := c.Source()
	if src == nil {
		return ErrNoSource
	}

	in, err := src.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	return c.LoadFrom(in)
}

// SaveWith writes the configuration to w using the given writer.
func (c *Configuration) SaveWith(w io.Writer, writer Writer) error {
	writer.SetOutput(w)
	return c.Build(writer)
}

// SaveTo writes the configuration to w using the configured writer factory,
// or the built-in XML format when none is set.
func (c *Configuration) SaveTo(w io.Writer) error {
	return c.SaveWith(w, c.writer())
}

// Save writes the configuration to the configured source. The source's
// stream is closed on every exit path; close errors are suppressed unless
// the write itself succeeded.
func (c *Configuration) Save() error {
	src := c.Source()
	if src == nil {
		return ErrNoSource
	}

	out, err := src.Create()
	if err != nil {
		return err
	}

	if err := c.SaveTo(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// moveToParent walks the explorer to the parent section of the named
// variable and returns the variable name trimmed of section information.
// Empty path segments are skipped. Without create, a missing section yields
// false.
func moveToParent(explorer *Explorer, name string, create bool) (string, bool) {
	segments := splitName(name)
	if len(segments) == 0 {
		return "", false
	}

	for _, segment := range segments[:len(segments)-1] {
		if !explorer.MoveTo(segment, create) {
			return "", false
		}
	}
	return segments[len(segments)-1], true
}

// splitName splits a fully qualified name on dots, dropping empty segments.
func splitName(name string) []string {
	var segments []string
	for _, segment := range strings.Split(name, ".") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
