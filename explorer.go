package conf

// Explorer is a cursor over the configuration tree. It descends one section
// name at a time and never outlives a single path resolution.
type Explorer struct {
	current *Section
}

// NewExplorer creates an explorer positioned at root.
func NewExplorer(root *Section) *Explorer {
	return &Explorer{current: root}
}

// MoveTo advances the cursor into the named child section. With create set,
// the child is created if missing and MoveTo always succeeds. Without it,
// MoveTo returns false when the child doesn't exist and the cursor must not
// be used further.
func (e *Explorer) MoveTo(name string, create bool) bool {
	if create {
		e.current = e.current.AddSection(name)
		return true
	}
	child := e.current.Section(name)
	if child == nil {
		return false
	}
	e.current = child
	return true
}

// Section returns the section the cursor is currently positioned at.
func (e *Explorer) Section() *Section {
	return e.current
}
