package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dotpath/conf"
)

func TestYAML_RoundTrip(t *testing.T) {
	c := conf.New()
	defer c.Close()

	c.Set("ui.theme.color", "blue")
	c.Set("ui.fontSize", "14")
	c.Set("top", "1")

	var buf bytes.Buffer
	if err := c.SaveWith(&buf, NewYAMLWriter()); err != nil {
		t.Fatalf("SaveWith failed: %v", err)
	}

	fresh := conf.New()
	defer fresh.Close()
	if err := fresh.LoadWith(&buf, NewYAMLReader()); err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}

	for _, tt := range []struct{ name, want string }{
		{"ui.theme.color", "blue"},
		{"ui.fontSize", "14"},
		{"top", "1"},
	} {
		if v, ok := fresh.Get(tt.name); !ok || v != tt.want {
			t.Errorf("%s = %q set=%v, want %q", tt.name, v, ok, tt.want)
		}
	}
}

func TestYAMLReader_NativeScalars(t *testing.T) {
	input := `
count: 42
ratio: 2.5
enabled: true
ui:
  theme: dark
`
	c := conf.New()
	defer c.Close()

	if err := c.LoadWith(strings.NewReader(input), NewYAMLReader()); err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}

	if v, err := c.GetInt("count"); err != nil || v != 42 {
		t.Errorf("count = %d, %v, want 42", v, err)
	}
	if v, err := c.GetFloat64("ratio"); err != nil || v != 2.5 {
		t.Errorf("ratio = %v, %v, want 2.5", v, err)
	}
	if v, err := c.GetBool("enabled"); err != nil || !v {
		t.Errorf("enabled = %v, %v, want true", v, err)
	}
	if v, _ := c.Get("ui.theme"); v != "dark" {
		t.Errorf("ui.theme = %q, want %q", v, "dark")
	}
}

func TestYAMLReader_Malformed(t *testing.T) {
	c := conf.New()
	defer c.Close()

	err := c.LoadWith(strings.NewReader("{ broken: [yaml"), NewYAMLReader())
	if err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestCrossFormat_TOMLToYAML(t *testing.T) {
	// The builder protocol decouples tree and format: a tree loaded from
	// TOML writes out as YAML with the same variables.
	c := conf.New()
	defer c.Close()

	toml := "[ui]\ntheme = \"dark\"\n"
	if err := c.LoadWith(strings.NewReader(toml), NewTOMLReader()); err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}

	var buf bytes.Buffer
	if err := c.SaveWith(&buf, NewYAMLWriter()); err != nil {
		t.Fatalf("SaveWith failed: %v", err)
	}

	fresh := conf.New()
	defer fresh.Close()
	if err := fresh.LoadWith(&buf, NewYAMLReader()); err != nil {
		t.Fatalf("LoadWith failed: %v", err)
	}
	if v, _ := fresh.Get("ui.theme"); v != "dark" {
		t.Errorf("ui.theme = %q, want %q", v, "dark")
	}
}
