// Package format provides pluggable wire formats for configuration trees.
//
// Each format implements the conf.Reader and conf.Writer contracts on top
// of the builder protocol: writers accumulate build events into a nested
// map and marshal it when the configuration ends, readers unmarshal a
// stream into a nested map and replay it as build events. TOML and YAML are
// provided; the built-in XML format lives in the conf package itself.
package format

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dotpath/conf"
)

// mapBuilder collects build events into a nested map, the common write-side
// half of the map-based formats.
type mapBuilder struct {
	root    map[string]any
	stack   []map[string]any
	names   []string
	current map[string]any
}

func (m *mapBuilder) StartConfiguration() error {
	m.root = make(map[string]any)
	m.stack = m.stack[:0]
	m.names = m.names[:0]
	m.current = m.root
	return nil
}

func (m *mapBuilder) EndConfiguration() error {
	if len(m.stack) > 0 {
		return &conf.StructuralError{Message: "not all sections have been closed"}
	}
	return nil
}

func (m *mapBuilder) StartSection(name string) error {
	child, ok := m.current[name].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m.current[name] = child
	}
	m.stack = append(m.stack, m.current)
	m.names = append(m.names, name)
	m.current = child
	return nil
}

func (m *mapBuilder) EndSection(name string) error {
	if len(m.stack) == 0 {
		return &conf.StructuralError{Section: name, Message: "section was already closed"}
	}
	if m.names[len(m.names)-1] != name {
		return &conf.StructuralError{Section: name, Message: "not the currently opened section"}
	}
	m.current = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.names = m.names[:len(m.names)-1]
	return nil
}

func (m *mapBuilder) AddVariable(name, value string) error {
	m.current[name] = value
	return nil
}

// replayMap walks a nested map in sorted key order and drives the builder:
// nested maps become sections, everything else becomes a variable in its
// canonical textual form.
func replayMap(b conf.Builder, data map[string]any) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Variables first, then sections, matching the build walk order.
	for _, key := range keys {
		if _, isMap := data[key].(map[string]any); isMap {
			continue
		}
		if err := b.AddVariable(key, scalarString(data[key])); err != nil {
			return err
		}
	}

	for _, key := range keys {
		child, isMap := data[key].(map[string]any)
		if !isMap {
			continue
		}
		if len(child) == 0 {
			continue
		}
		if err := b.StartSection(key); err != nil {
			return err
		}
		if err := replayMap(b, child); err != nil {
			return err
		}
		if err := b.EndSection(key); err != nil {
			return err
		}
	}

	return nil
}

// scalarString converts an unmarshaled scalar to the canonical textual form
// used by the typed accessors, so a value written as TOML integer 42 reads
// back as "42".
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
