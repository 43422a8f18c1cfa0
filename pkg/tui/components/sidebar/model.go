// Package sidebar renders the view switcher and the signed-in account.
package sidebar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Entry is one selectable view.
type Entry struct {
	Key   string
	Label string
}

// SelectMsg is emitted when an entry is chosen from the sidebar.
type SelectMsg struct {
	Index int
}

func (m SelectMsg) Describe() string { return fmt.Sprintf(`index:%d`, m.Index) }

// Model renders a framed list of entries with the active one highlighted.
type Model struct {
	entries []Entry
	active  int
	cursor  int
	account string
	width   int
	height  int
	theme   theme.PanelTheme
}

// New returns a sidebar for entries.
func New(th theme.PanelTheme, entries []Entry) *Model {
	return &Model{theme: th, entries: entries}
}

// SetSize sets the outer size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetActive marks the current view and moves the cursor to it.
func (m *Model) SetActive(i int) {
	m.active = i
	m.cursor = i
}

// SetAccount sets the footer line, usually the signed-in email.
func (m *Model) SetAccount(s string) { m.account = s }

// Update moves the cursor and selects entries.
func (m *Model) Update(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		i := m.cursor
		return func() tea.Msg { return SelectMsg{Index: i} }
	}
	return nil
}

// View renders the sidebar.
func (m *Model) View() string {
	inner := max(m.width-m.theme.Frame.GetHorizontalFrameSize(), 4)
	lines := []string{m.theme.Title.Render("planner"), ""}
	for i, e := range m.entries {
		label := uiutil.Truncate(fmt.Sprintf("%s %s", e.Key, e.Label), inner-2)
		marker := "  "
		if i == m.cursor {
			marker = "› "
		}
		style := m.theme.Inactive
		if i == m.active {
			style = m.theme.Active
		}
		lines = append(lines, marker+style.Render(label))
	}
	if m.account != "" {
		lines = append(lines, "", m.theme.Inactive.Render(uiutil.Truncate(m.account, inner)))
	}
	frame := m.theme.Frame.Width(m.width)
	if m.height > 0 {
		frame = frame.Height(max(m.height-m.theme.Frame.GetVerticalFrameSize(), 1))
	}
	return frame.Render(lipgloss.NewStyle().MaxWidth(inner).Render(strings.Join(lines, "\n")))
}
