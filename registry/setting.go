// Package registry maintains definitions of known configuration settings.
//
// A Setting describes a dotted-path variable: its expected type, default
// value, allowed range or enumeration, and documentation. The Registry
// validates candidate values against these definitions and can seed a
// configuration store with every registered default.
package registry

import (
	"fmt"
	"regexp"
	"strconv"
)

// SettingType is the expected data type of a setting's textual value.
type SettingType int

const (
	// TypeString accepts any text.
	TypeString SettingType = iota

	// TypeInt accepts integer text.
	TypeInt

	// TypeFloat accepts floating-point text.
	TypeFloat

	// TypeBool accepts boolean text.
	TypeBool

	// TypeEnum accepts one of the values listed in Enum.
	TypeEnum
)

// String returns the type name.
func (t SettingType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Setting defines a configuration setting and its constraints. Values are
// textual, matching the configuration tree's string model; constraints are
// checked against the parsed form.
type Setting struct {
	// Path is the fully qualified dotted name (e.g. "ui.theme.color").
	Path string

	// Type is the setting's expected data type.
	Type SettingType

	// Default is the default value in canonical textual form.
	Default string

	// Description is human-readable documentation.
	Description string

	// Enum lists the allowed values for enum settings.
	Enum []string

	// Minimum for numeric settings (nil means no minimum).
	Minimum *float64

	// Maximum for numeric settings (nil means no maximum).
	Maximum *float64

	// Pattern is a regular expression string values must match.
	Pattern string

	compiledPattern *regexp.Regexp
}

// MinValue returns a pointer suitable for Setting.Minimum.
func MinValue(v float64) *float64 { return &v }

// MaxValue returns a pointer suitable for Setting.Maximum.
func MaxValue(v float64) *float64 { return &v }

// Validate checks whether a textual value satisfies the setting.
func (s *Setting) Validate(value string) error {
	switch s.Type {
	case TypeString:
		if s.Pattern != "" {
			return s.validatePattern(value)
		}
		return nil

	case TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", s.Path, value)
		}
		return s.validateRange(float64(n), value)

	case TypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: expected a number, got %q", s.Path, value)
		}
		return s.validateRange(f, value)

	case TypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s: expected a boolean, got %q", s.Path, value)
		}
		return nil

	case TypeEnum:
		for _, allowed := range s.Enum {
			if value == allowed {
				return nil
			}
		}
		return fmt.Errorf("%s: value %q must be one of %v", s.Path, value, s.Enum)

	default:
		return fmt.Errorf("%s: unknown setting type", s.Path)
	}
}

func (s *Setting) validateRange(f float64, value string) error {
	if s.Minimum != nil && f < *s.Minimum {
		return fmt.Errorf("%s: value %s is below the minimum %v", s.Path, value, *s.Minimum)
	}
	if s.Maximum != nil && f > *s.Maximum {
		return fmt.Errorf("%s: value %s is above the maximum %v", s.Path, value, *s.Maximum)
	}
	return nil
}

func (s *Setting) validatePattern(value string) error {
	if s.compiledPattern == nil {
		compiled, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", s.Path, s.Pattern, err)
		}
		s.compiledPattern = compiled
	}
	if !s.compiledPattern.MatchString(value) {
		return fmt.Errorf("%s: value %q does not match pattern %q", s.Path, value, s.Pattern)
	}
	return nil
}
