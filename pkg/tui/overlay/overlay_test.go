package overlay

import (
	"strings"
	"testing"

	"tableflip.dev/planner/pkg/tui/uiutil"
)

func TestComposeCentersForeground(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 10)+"\n", 4) + strings.Repeat(".", 10)
	out := uiutil.StripANSI(Compose(bg, 10, 5, "ab\ncd", Placement{}))
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[1] != "....ab...." || lines[2] != "....cd...." {
		t.Fatalf("got\n%s", out)
	}
	if lines[0] != ".........." {
		t.Fatalf("background row changed: %q", lines[0])
	}
}

func TestComposeLeftAnchor(t *testing.T) {
	out := uiutil.StripANSI(Compose("0123456789", 10, 2, "XY", Placement{Anchor: Left}))
	lines := strings.Split(out, "\n")
	if lines[0] != "XY23456789" {
		t.Fatalf("row = %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("padding row = %q", lines[1])
	}
}

func TestComposeKeepsStyledSuffix(t *testing.T) {
	bg := "\x1b[31mabcdef\x1b[0m"
	out := Compose(bg, 6, 1, "X", Placement{Anchor: Left, MarginX: 2})
	if uiutil.StripANSI(out) != "abXdef" {
		t.Fatalf("plain = %q", uiutil.StripANSI(out))
	}
	if !strings.Contains(out, "\x1b[31m") {
		t.Fatalf("style dropped: %q", out)
	}
}

func TestComposeEmptyForeground(t *testing.T) {
	out := uiutil.StripANSI(Compose("abc", 5, 2, "", Placement{}))
	if out != "abc  \n     " {
		t.Fatalf("out = %q", out)
	}
}
