package conf

import (
	"errors"
	"testing"

	"github.com/dotpath/conf/notify"
)

func newTestLoader() (*treeLoader, *Section, *notify.Batch) {
	n := notify.New()
	batch := n.NewBatch()
	root := NewSection()
	return newTreeLoader(root, batch), root, batch
}

func TestTreeLoader_BuildsTree(t *testing.T) {
	l, root, _ := newTestLoader()

	steps := []error{
		l.StartConfiguration(),
		l.AddVariable("top", "1"),
		l.StartSection("ui"),
		l.StartSection("theme"),
		l.AddVariable("color", "blue"),
		l.EndSection("theme"),
		l.EndSection("ui"),
		l.EndConfiguration(),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	if v, _ := root.Get("top"); v != "1" {
		t.Errorf("top = %q, want %q", v, "1")
	}
	theme := root.Section("ui").Section("theme")
	if theme == nil {
		t.Fatal("expected nested sections to be created")
	}
	if v, _ := theme.Get("color"); v != "blue" {
		t.Errorf("color = %q, want %q", v, "blue")
	}
}

func TestTreeLoader_EndConfigurationWithOpenSection(t *testing.T) {
	l, _, _ := newTestLoader()

	_ = l.StartConfiguration()
	_ = l.StartSection("ui")

	err := l.EndConfiguration()
	if err == nil {
		t.Fatal("expected a structural error")
	}
	if !errors.Is(err, ErrStructure) {
		t.Errorf("expected error to match ErrStructure, got %v", err)
	}
}

func TestTreeLoader_EndSectionWithNoneOpen(t *testing.T) {
	l, _, _ := newTestLoader()

	_ = l.StartConfiguration()

	err := l.EndSection("x")
	if err == nil {
		t.Fatal("expected a structural error")
	}
	if !errors.Is(err, ErrStructure) {
		t.Errorf("expected error to match ErrStructure, got %v", err)
	}

	var structErr *StructuralError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected a *StructuralError, got %T", err)
	}
	if structErr.Section != "x" {
		t.Errorf("StructuralError.Section = %q, want %q", structErr.Section, "x")
	}
}

func TestTreeLoader_EndSectionMismatch(t *testing.T) {
	l, _, _ := newTestLoader()

	_ = l.StartConfiguration()
	_ = l.StartSection("ui")

	err := l.EndSection("files")
	if !errors.Is(err, ErrStructure) {
		t.Errorf("expected ErrStructure for a mismatched section name, got %v", err)
	}
}

func TestTreeLoader_VariableEventsCarryFullPath(t *testing.T) {
	n := notify.New()
	defer n.Close()

	var events []notify.Change
	sub := n.Subscribe(func(change notify.Change) { events = append(events, change) })
	defer sub.Unsubscribe()

	batch := n.NewBatch()
	l := newTreeLoader(NewSection(), batch)

	_ = l.StartConfiguration()
	_ = l.AddVariable("top", "1")
	_ = l.StartSection("ui")
	_ = l.StartSection("theme")
	_ = l.AddVariable("color", "blue")
	_ = l.EndSection("theme")
	_ = l.EndSection("ui")
	_ = l.EndConfiguration()

	// Events are batched until the read completes.
	if len(events) != 0 {
		t.Fatalf("expected no events before Commit, got %d", len(events))
	}
	batch.Commit()

	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Path != "top" {
		t.Errorf("first event path = %q, want %q", events[0].Path, "top")
	}
	if events[1].Path != "ui.theme.color" {
		t.Errorf("second event path = %q, want %q", events[1].Path, "ui.theme.color")
	}
}

func TestTreeLoader_UnchangedVariableNoEvent(t *testing.T) {
	n := notify.New()
	defer n.Close()

	batch := n.NewBatch()
	root := NewSection()
	root.Set("k", "v")

	l := newTreeLoader(root, batch)
	_ = l.StartConfiguration()
	_ = l.AddVariable("k", "v")
	_ = l.EndConfiguration()

	if batch.Len() != 0 {
		t.Errorf("expected no batched event for an unchanged value, got %d", batch.Len())
	}
}
