package conf

import "sort"

// Section is a node in the configuration tree. It holds a flat set of
// variables and a set of named child sections. Sections are not safe for
// concurrent use on their own; the Configuration facade serializes access.
type Section struct {
	variables map[string]string
	sections  map[string]*Section
}

// NewSection creates an empty section.
func NewSection() *Section {
	return &Section{
		variables: make(map[string]string),
		sections:  make(map[string]*Section),
	}
}

// Get returns the value of the named variable.
func (s *Section) Get(name string) (string, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Set stores a value for the named variable. It returns true only if the
// stored value actually changed, which is what the facade uses to decide
// whether a change event should fire.
func (s *Section) Set(name, value string) bool {
	old, ok := s.variables[name]
	if ok && old == value {
		return false
	}
	s.variables[name] = value
	return true
}

// Remove deletes the named variable and returns its previous value.
func (s *Section) Remove(name string) (string, bool) {
	old, ok := s.variables[name]
	if ok {
		delete(s.variables, name)
	}
	return old, ok
}

// AddSection returns the named child section, creating it if necessary.
func (s *Section) AddSection(name string) *Section {
	if child, ok := s.sections[name]; ok {
		return child
	}
	child := NewSection()
	s.sections[name] = child
	return child
}

// Section returns the named child section, or nil if it doesn't exist.
func (s *Section) Section(name string) *Section {
	return s.sections[name]
}

// HasVariables reports whether the section holds at least one variable.
func (s *Section) HasVariables() bool {
	return len(s.variables) > 0
}

// HasSections reports whether the section has at least one child section.
func (s *Section) HasSections() bool {
	return len(s.sections) > 0
}

// VariableNames returns a sorted snapshot of the section's variable names.
func (s *Section) VariableNames() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SectionNames returns a sorted snapshot of the child section names.
func (s *Section) SectionNames() []string {
	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
