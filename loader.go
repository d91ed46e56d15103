package conf

import (
	"github.com/dotpath/conf/notify"
)

// treeLoader is the Builder used during a read to materialize a Section
// tree from a stream. It tracks the stack of open sections so it can reject
// malformed call sequences and build fully qualified names for change
// events, which it collects into a batch for delivery after the read.
type treeLoader struct {
	current  *Section
	parents  []*Section
	prefixes []string
	batch    *notify.Batch
}

func newTreeLoader(root *Section, batch *notify.Batch) *treeLoader {
	return &treeLoader{current: root, batch: batch}
}

// StartConfiguration resets the section stack.
func (l *treeLoader) StartConfiguration() error {
	l.parents = l.parents[:0]
	l.prefixes = l.prefixes[:0]
	return nil
}

// EndConfiguration verifies that every opened section was closed.
func (l *treeLoader) EndConfiguration() error {
	if len(l.parents) > 0 {
		return &StructuralError{Message: "not all sections have been closed"}
	}
	return nil
}

// StartSection opens the named child of the current section, creating it
// if necessary.
func (l *treeLoader) StartSection(name string) error {
	child := l.current.AddSection(name)
	l.parents = append(l.parents, l.current)
	if len(l.prefixes) == 0 {
		l.prefixes = append(l.prefixes, name+".")
	} else {
		l.prefixes = append(l.prefixes, l.prefixes[len(l.prefixes)-1]+name+".")
	}
	l.current = child
	return nil
}

// EndSection closes the named section, verifying it is the one currently
// open.
func (l *treeLoader) EndSection(name string) error {
	if len(l.parents) == 0 {
		return &StructuralError{Section: name, Message: "section was already closed"}
	}

	parent := l.parents[len(l.parents)-1]
	if parent.Section(name) != l.current {
		return &StructuralError{Section: name, Message: "not the currently opened section"}
	}

	l.parents = l.parents[:len(l.parents)-1]
	l.prefixes = l.prefixes[:len(l.prefixes)-1]
	l.current = parent
	return nil
}

// AddVariable sets the variable on the innermost open section and records a
// change event when the stored value actually changed.
func (l *treeLoader) AddVariable(name, value string) error {
	old, _ := l.current.Get(name)
	if l.current.Set(name, value) {
		path := name
		if len(l.prefixes) > 0 {
			path = l.prefixes[len(l.prefixes)-1] + name
		}
		l.batch.Set(path, old, value, "load")
	}
	return nil
}
