package conf

import (
	"io"
	"os"
)

// Source produces the byte streams a Configuration loads from and saves to.
// Opening either stream may fail with an I/O error; the facade closes the
// stream on every exit path of a single Load or Save call.
type Source interface {
	// Open returns a readable stream positioned at the start of the
	// configuration data.
	Open() (io.ReadCloser, error)

	// Create returns a writable stream that replaces the configuration data.
	Create() (io.WriteCloser, error)
}

// FileSource is a Source backed by a file on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the given file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file path backing the source.
func (s *FileSource) Path() string {
	return s.path
}

// Open opens the backing file for reading.
func (s *FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.path)
}

// Create truncates and opens the backing file for writing.
func (s *FileSource) Create() (io.WriteCloser, error) {
	return os.Create(s.path)
}
