package configwriter

import (
	"strings"
	"testing"

	"github.com/beaconhq/zonecore/internal/valuetree"
)

func TestEscapeIcingaString(t *testing.T) {
	got := EscapeIcingaString("line1\nline2\t\"quoted\"\\end")
	want := `line1\nline2\t\"quoted\"\\end`
	if got != want {
		t.Errorf("EscapeIcingaString = %q, want %q", got, want)
	}
}

func TestEmitConfigItem(t *testing.T) {
	var w Writer
	attrs := valuetree.Dict{
		"address":        "10.0.0.1",
		"check_interval":  60.0,
		"vars.os":         "Linux",
	}
	if err := w.EmitConfigItem("Host", "h1", false, []string{"generic-host"}, attrs); err != nil {
		t.Fatalf("EmitConfigItem: %v", err)
	}
	out := w.String()

	if !strings.HasPrefix(out, `object Host "h1" {`) {
		t.Errorf("expected object header, got: %s", out)
	}
	if !strings.Contains(out, `import "generic-host"`) {
		t.Errorf("expected import line, got: %s", out)
	}
	if !strings.Contains(out, `address = "10.0.0.1"`) {
		t.Errorf("expected address assignment, got: %s", out)
	}
	if !strings.Contains(out, `vars["os"] = "Linux"`) {
		t.Errorf("expected dotted key rendered as index, got: %s", out)
	}
	if !strings.HasSuffix(out, "}") {
		t.Errorf("expected closing brace, got: %s", out)
	}
}

func TestEmitIdentifierKeywordEscape(t *testing.T) {
	var w Writer
	if err := w.EmitIdentifier("import", false); err != nil {
		t.Fatalf("EmitIdentifier: %v", err)
	}
	if w.String() != "@import" {
		t.Errorf("expected @-escaped keyword, got %q", w.String())
	}
}

func TestEmitIdentifierInvalidOutsideAssignment(t *testing.T) {
	var w Writer
	if err := w.EmitIdentifier("not an identifier", false); err == nil {
		t.Errorf("expected error for invalid identifier outside assignment")
	}
}
