package format

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dotpath/conf"
)

// YAMLWriter formats a configuration tree as YAML. Sections become nested
// mappings; variables become string values.
type YAMLWriter struct {
	mapBuilder
	out io.Writer
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter() *YAMLWriter {
	return &YAMLWriter{}
}

// SetOutput directs the writer's output to w.
func (y *YAMLWriter) SetOutput(w io.Writer) {
	y.out = w
}

// EndConfiguration marshals the accumulated tree and writes it out.
func (y *YAMLWriter) EndConfiguration() error {
	if err := y.mapBuilder.EndConfiguration(); err != nil {
		return err
	}

	data, err := yaml.Marshal(y.root)
	if err != nil {
		return fmt.Errorf("encoding YAML configuration: %w", err)
	}
	_, err = y.out.Write(data)
	return err
}

// YAMLReader parses YAML and replays it on a Builder. Non-string scalars
// are converted to their canonical textual forms.
type YAMLReader struct{}

// NewYAMLReader creates a YAML reader.
func NewYAMLReader() *YAMLReader {
	return &YAMLReader{}
}

// Read decodes the stream and drives the builder.
func (y *YAMLReader) Read(r io.Reader, b conf.Builder) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading YAML configuration: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing YAML configuration: %w", err)
	}

	if err := b.StartConfiguration(); err != nil {
		return err
	}
	if err := replayMap(b, tree); err != nil {
		return err
	}
	return b.EndConfiguration()
}
