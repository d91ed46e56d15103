package conf

import (
	"reflect"
	"testing"
)

func TestSection_SetGet(t *testing.T) {
	s := NewSection()

	if !s.Set("color", "blue") {
		t.Error("expected first Set to report a change")
	}

	v, ok := s.Get("color")
	if !ok {
		t.Fatal("expected variable to be set")
	}
	if v != "blue" {
		t.Errorf("Get = %q, want %q", v, "blue")
	}
}

func TestSection_SetUnchanged(t *testing.T) {
	s := NewSection()

	s.Set("color", "blue")
	if s.Set("color", "blue") {
		t.Error("expected Set with the same value to report no change")
	}
	if !s.Set("color", "red") {
		t.Error("expected Set with a new value to report a change")
	}
}

func TestSection_Remove(t *testing.T) {
	s := NewSection()
	s.Set("color", "blue")

	old, ok := s.Remove("color")
	if !ok {
		t.Fatal("expected Remove to find the variable")
	}
	if old != "blue" {
		t.Errorf("Remove = %q, want %q", old, "blue")
	}

	if _, ok := s.Get("color"); ok {
		t.Error("expected variable to be gone after Remove")
	}

	if _, ok := s.Remove("color"); ok {
		t.Error("expected Remove on an unset variable to report absent")
	}
}

func TestSection_AddSectionIdempotent(t *testing.T) {
	s := NewSection()

	first := s.AddSection("ui")
	second := s.AddSection("ui")
	if first != second {
		t.Error("expected AddSection to return the existing child")
	}

	if s.Section("ui") != first {
		t.Error("expected Section to return the created child")
	}
	if s.Section("missing") != nil {
		t.Error("expected nil for a missing child section")
	}
}

func TestSection_HasVariablesAndSections(t *testing.T) {
	s := NewSection()

	if s.HasVariables() || s.HasSections() {
		t.Error("expected a fresh section to be empty")
	}

	s.Set("a", "1")
	if !s.HasVariables() {
		t.Error("expected HasVariables after Set")
	}

	s.AddSection("child")
	if !s.HasSections() {
		t.Error("expected HasSections after AddSection")
	}
}

func TestSection_NamesSortedAndRestartable(t *testing.T) {
	s := NewSection()
	s.Set("b", "2")
	s.Set("a", "1")
	s.Set("c", "3")
	s.AddSection("y")
	s.AddSection("x")

	want := []string{"a", "b", "c"}
	if got := s.VariableNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("VariableNames = %v, want %v", got, want)
	}
	// Repeated calls yield the current snapshot, not a spent cursor.
	if got := s.VariableNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("second VariableNames = %v, want %v", got, want)
	}

	wantSections := []string{"x", "y"}
	if got := s.SectionNames(); !reflect.DeepEqual(got, wantSections) {
		t.Errorf("SectionNames = %v, want %v", got, wantSections)
	}
}
