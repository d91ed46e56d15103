package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrAlreadyRegistered is returned when registering a duplicate setting path.
var ErrAlreadyRegistered = errors.New("setting already registered")

// Store is the configuration surface the registry seeds defaults into.
// *conf.Configuration satisfies it.
type Store interface {
	// GetDefault returns the value of the named variable, setting it to def
	// first when it is unset.
	GetDefault(name, def string) string
}

// Registry holds all known setting definitions, indexed by path and by
// top-level section.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]*Setting
	sections map[string][]*Setting
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		settings: make(map[string]*Setting),
		sections: make(map[string][]*Setting),
	}
}

// Register adds a setting definition. Registering the same path twice is an
// error.
func (r *Registry) Register(setting Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[setting.Path]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, setting.Path)
	}

	s := &setting
	r.settings[setting.Path] = s

	section := topSection(setting.Path)
	r.sections[section] = append(r.sections[section], s)

	return nil
}

// MustRegister registers a setting and panics on error. Intended for
// registering built-in settings at init time.
func (r *Registry) MustRegister(setting Setting) {
	if err := r.Register(setting); err != nil {
		panic(err)
	}
}

// Get returns the definition for the given path, or nil if unregistered.
func (r *Registry) Get(path string) *Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[path]
}

// Has reports whether a setting is registered.
func (r *Registry) Has(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.settings[path]
	return exists
}

// All returns every registered setting sorted by path.
func (r *Registry) All() []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Setting, 0, len(r.settings))
	for _, s := range r.settings {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result
}

// Section returns the settings whose paths start in the given top-level
// section.
func (r *Registry) Section(name string) []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings := r.sections[name]
	result := make([]*Setting, len(settings))
	copy(result, settings)
	return result
}

// Sections returns all top-level section names, sorted.
func (r *Registry) Sections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.sections))
	for section := range r.sections {
		result = append(result, section)
	}
	sort.Strings(result)
	return result
}

// Validate checks a value against the registered definition for path.
// Unregistered paths pass: unknown settings are allowed so applications can
// carry values the registry doesn't describe.
func (r *Registry) Validate(path, value string) error {
	r.mu.RLock()
	s, ok := r.settings[path]
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return s.Validate(value)
}

// ApplyDefaults seeds every registered default into the store. Variables
// already set keep their values. Defaults are applied in path order so the
// store's change events fire deterministically.
func (r *Registry) ApplyDefaults(store Store) {
	for _, s := range r.All() {
		if s.Default == "" {
			continue
		}
		store.GetDefault(s.Path, s.Default)
	}
}

// topSection extracts the first path segment.
func topSection(path string) string {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}
