package help

import (
	"strings"
	"testing"

	"tableflip.dev/planner/pkg/tui/uiutil"
)

func TestHelpRendersKeyTable(t *testing.T) {
	m := New(80, 30)
	view := uiutil.StripANSI(m.View())
	for _, want := range []string{"Kanban board", "Quit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("help missing %q:\n%s", want, view)
		}
	}
}
