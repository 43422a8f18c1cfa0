// Package kanban renders tasks as status columns.
package kanban

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Component identifies kanban intents.
const Component events.ComponentID = "kanban"

// OtherStatus labels the column holding tasks with an unrecognized status.
const OtherStatus task.Status = "other"

// Column is one status lane.
type Column struct {
	Status task.Status
	Label  string
	Tasks  []task.Task
}

// Partition splits tasks into the todo, in_progress and done columns in
// collection order. Tasks with any other status go to a trailing "Other"
// column that is present only when it has tasks.
func Partition(tasks []task.Task) []Column {
	cols := make([]Column, 0, 4)
	index := map[task.Status]int{}
	for _, s := range task.AllStatuses() {
		index[s] = len(cols)
		cols = append(cols, Column{Status: s, Label: s.Label()})
	}
	var other []task.Task
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
			continue
		}
		other = append(other, t)
	}
	if len(other) > 0 {
		cols = append(cols, Column{Status: OtherStatus, Label: "Other", Tasks: other})
	}
	return cols
}

// Model tracks the focused column and card.
type Model struct {
	theme  theme.BoardTheme
	width  int
	height int
	col    int
	row    int
}

// New returns a kanban renderer.
func New(th theme.BoardTheme) *Model {
	return &Model{theme: th}
}

// SetSize sets the drawing area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the focused column and card indexes.
func (m *Model) Cursor() (int, int) { return m.col, m.row }

func (m *Model) clamp(cols []Column) {
	if m.col >= len(cols) {
		m.col = len(cols) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	n := len(cols[m.col].Tasks)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// Selected returns the focused card.
func (m *Model) Selected(tasks []task.Task) (task.Task, bool) {
	cols := Partition(tasks)
	m.clamp(cols)
	col := cols[m.col]
	if len(col.Tasks) == 0 {
		return task.Task{}, false
	}
	return col.Tasks[m.row], true
}

// Update turns a key press into cursor movement or an intent.
func (m *Model) Update(msg tea.KeyPressMsg, tasks []task.Task) tea.Cmd {
	cols := Partition(tasks)
	m.clamp(cols)
	switch msg.String() {
	case "h", "left":
		if m.col > 0 {
			m.col--
		}
		m.clamp(cols)
	case "l", "right":
		if m.col < len(cols)-1 {
			m.col++
		}
		m.clamp(cols)
	case "j", "down":
		if m.row < len(cols[m.col].Tasks)-1 {
			m.row++
		}
	case "k", "up":
		if m.row > 0 {
			m.row--
		}
	case "n":
		return events.NewTaskCmd(Component, nil)
	case "enter", "e":
		if t, ok := m.Selected(tasks); ok {
			return events.EditTaskCmd(Component, t)
		}
	case "s":
		if t, ok := m.Selected(tasks); ok {
			return events.StatusChangeCmd(Component, t.ID, t.Status.Next())
		}
	case "d":
		if t, ok := m.Selected(tasks); ok {
			return events.DeleteTaskCmd(Component, t)
		}
	}
	return nil
}

// View renders the columns side by side.
func (m *Model) View(tasks []task.Task, focused bool) string {
	cols := Partition(tasks)
	m.clamp(cols)

	width := max(m.width, 20)
	colWidth := max(width/len(cols), 12)
	frameX := m.theme.Column.GetHorizontalFrameSize()
	inner := max(colWidth-frameX, 4)

	rendered := make([]string, len(cols))
	for i, col := range cols {
		var b strings.Builder
		b.WriteString(m.theme.Header.Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks))))
		b.WriteString("\n")
		if len(col.Tasks) == 0 {
			b.WriteString(m.theme.Muted.Render("No tasks"))
		}
		for j, t := range col.Tasks {
			if j > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.card(t, inner, focused && i == m.col && j == m.row))
		}
		style := m.theme.Column
		if focused && i == m.col {
			style = m.theme.ColumnFocused
		}
		rendered[i] = style.Width(colWidth).Render(b.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) card(t task.Task, width int, selected bool) string {
	style := m.theme.Card
	if selected {
		style = m.theme.CardSelected
	}
	text := width - style.GetHorizontalFrameSize()
	lines := []string{uiutil.Truncate(t.Title, text)}
	if d := t.DescriptionText(); d != "" {
		lines = append(lines, m.theme.Muted.Render(uiutil.Truncate(uiutil.FirstLine(d), text)))
	}
	if t.DueAt != nil {
		lines = append(lines, m.theme.Muted.Render("due "+task.FormatDate(t.DueAt)))
	}
	if t.Source == task.SourceAI {
		lines = append(lines, m.theme.Muted.Render("✦ ai"))
	}
	return style.Render(strings.Join(lines, "\n"))
}
