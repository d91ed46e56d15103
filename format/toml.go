package format

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/dotpath/conf"
)

// TOMLWriter formats a configuration tree as TOML. Sections become TOML
// tables; variables become string values.
type TOMLWriter struct {
	mapBuilder
	out io.Writer
}

// NewTOMLWriter creates a TOML writer.
func NewTOMLWriter() *TOMLWriter {
	return &TOMLWriter{}
}

// SetOutput directs the writer's output to w.
func (t *TOMLWriter) SetOutput(w io.Writer) {
	t.out = w
}

// EndConfiguration marshals the accumulated tree and writes it out.
func (t *TOMLWriter) EndConfiguration() error {
	if err := t.mapBuilder.EndConfiguration(); err != nil {
		return err
	}

	data, err := toml.Marshal(t.root)
	if err != nil {
		return fmt.Errorf("encoding TOML configuration: %w", err)
	}
	_, err = t.out.Write(data)
	return err
}

// TOMLReader parses TOML and replays it on a Builder. Non-string scalars
// are converted to their canonical textual forms.
type TOMLReader struct{}

// NewTOMLReader creates a TOML reader.
func NewTOMLReader() *TOMLReader {
	return &TOMLReader{}
}

// Read decodes the stream and drives the builder.
func (t *TOMLReader) Read(r io.Reader, b conf.Builder) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading TOML configuration: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing TOML configuration: %w", err)
	}

	if err := b.StartConfiguration(); err != nil {
		return err
	}
	if err := replayMap(b, tree); err != nil {
		return err
	}
	return b.EndConfiguration()
}
