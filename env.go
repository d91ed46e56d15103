package conf

import (
	"os"
	"strings"
)

// EnvLoader overlays environment variables onto a configuration. Variables
// are matched by prefix and mapped onto dotted names: with prefix "APP_",
// APP_UI_FONT_SIZE becomes "ui.fontSize". Explicit mappings override the
// derived name for variables that don't fit the scheme.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
}

// NewEnvLoader creates a loader for environment variables carrying the
// given prefix. The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
	}
}

// AddMapping maps an environment variable to an explicit dotted name.
func (l *EnvLoader) AddMapping(envVar, name string) {
	l.mapping[envVar] = name
}

// RemoveMapping removes an explicit mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// Apply sets every matching environment variable on the configuration
// through the facade, so normal change events fire. It returns the number
// of variables whose value changed. Empty environment values are applied
// as-is, not treated as unset.
func (l *EnvLoader) Apply(c *Configuration) int {
	changed := 0

	for env, name := range l.mapping {
		if value, ok := os.LookupEnv(env); ok {
			if c.Set(name, value) {
				changed++
			}
		}
	}

	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, l.prefix) {
			continue
		}

		env, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, mapped := l.mapping[env]; mapped {
			continue
		}

		name := l.envToName(env)
		if name == "" {
			continue
		}
		if c.Set(name, value) {
			changed++
		}
	}

	return changed
}

// envToName converts APP_UI_FONT_SIZE to "ui.fontSize": the first segment
// after the prefix is the section, the remaining segments form a camelCase
// variable name.
func (l *EnvLoader) envToName(env string) string {
	trimmed := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(trimmed, "_")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}

	if len(parts) == 1 {
		return strings.ToLower(parts[0])
	}

	variable := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		variable += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}

	return strings.ToLower(parts[0]) + "." + variable
}
