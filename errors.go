package conf

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrStructure indicates a malformed builder call sequence during a read.
	ErrStructure = errors.New("malformed configuration structure")

	// ErrConversion indicates a stored value could not be parsed as the
	// requested type.
	ErrConversion = errors.New("value conversion failed")

	// ErrNoSource indicates Load or Save was called without a configured source.
	ErrNoSource = errors.New("no configuration source")
)

// StructuralError reports an unbalanced or out-of-order builder call
// sequence, such as closing a section that isn't open or ending the
// configuration with sections still open. A read that fails with a
// StructuralError leaves the tree in an unspecified state; callers must
// discard it.
type StructuralError struct {
	// Section is the section name involved, if any.
	Section string
	// Message describes the structural problem.
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("structural error in section %q: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

// Is implements error matching for StructuralError.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructure
}

// ConversionError is returned by typed accessors when the stored text can't
// be parsed as the requested type. The stored value is left untouched.
type ConversionError struct {
	// Name is the fully qualified variable name.
	Name string
	// Value is the stored text that failed to parse.
	Value string
	// Target is the requested type name.
	Target string
	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s value %q to %s: %v", e.Name, e.Value, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for ConversionError.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
