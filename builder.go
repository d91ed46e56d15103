package conf

import "io"

// Builder receives configuration build events. It is the single contract
// between the tree representation and any wire format: writing drives a
// depth-first walk of the tree into a Builder, and reading drives a
// format-specific parser that replays a stream into a Builder.
type Builder interface {
	// StartConfiguration begins a build sequence.
	StartConfiguration() error

	// EndConfiguration ends a build sequence. Implementations fail with a
	// StructuralError if sections remain open.
	EndConfiguration() error

	// StartSection opens a named section nested in the current one.
	StartSection(name string) error

	// EndSection closes the named section. Implementations fail with a
	// StructuralError if no matching section is open.
	EndSection(name string) error

	// AddVariable adds a variable to the innermost open section.
	AddVariable(name, value string) error
}

// Reader parses configuration data from a stream and replays it as build
// events on a Builder.
type Reader interface {
	Read(r io.Reader, b Builder) error
}

// Writer formats build events into a stream. The output must be set before
// the Builder methods are driven.
type Writer interface {
	Builder
	SetOutput(w io.Writer)
}

// ReaderFactory produces reader instances. A nil factory on a Configuration
// selects the built-in XML format.
type ReaderFactory func() Reader

// WriterFactory produces writer instances. A nil factory on a Configuration
// selects the built-in XML format.
type WriterFactory func() Writer
