// Package list renders tasks as a table with inline editing.
package list

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Component identifies list intents.
const Component events.ComponentID = "list"

// Inline edit fields, in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldCount
)

// Model holds the cursor, the optional filter and the single inline edit.
type Model struct {
	theme  theme.BoardTheme
	width  int
	height int
	row    int
	offset int

	editingID string
	inputs    [fieldCount]textinput.Model
	field     int
	editErr   string

	filtering bool
	filter    textinput.Model
}

// New returns a list renderer.
func New(th theme.BoardTheme) *Model {
	m := &Model{theme: th}
	placeholders := [fieldCount]string{"Title", "Description", "YYYY-MM-DD"}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		m.inputs[i] = in
	}
	m.filter = textinput.New()
	m.filter.Prompt = "/"
	m.filter.Placeholder = "filter titles"
	return m
}

// SetSize sets the drawing area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	cols := m.columns()
	m.inputs[fieldTitle].SetWidth(cols.title)
	m.inputs[fieldDescription].SetWidth(cols.desc)
	m.inputs[fieldDue].SetWidth(cols.due)
	m.filter.SetWidth(max(width-2, 8))
}

// EditingID returns the row in inline edit, or "".
func (m *Model) EditingID() string { return m.editingID }

// Capturing reports whether text input owns the keyboard.
func (m *Model) Capturing() bool { return m.editingID != "" || m.filtering }

// Filter returns the active filter query.
func (m *Model) Filter() string { return m.filter.Value() }

// Visible returns the rows shown for tasks: all of them, or those whose title
// fuzzy-matches the filter, in collection order.
func (m *Model) Visible(tasks []task.Task) []task.Task {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return tasks
	}
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	matches := fuzzy.Find(query, titles)
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	sort.Ints(idx)
	out := make([]task.Task, 0, len(idx))
	for _, i := range idx {
		out = append(out, tasks[i])
	}
	return out
}

// Selected returns the row under the cursor.
func (m *Model) Selected(tasks []task.Task) (task.Task, bool) {
	rows := m.Visible(tasks)
	m.clamp(len(rows))
	if len(rows) == 0 {
		return task.Task{}, false
	}
	return rows[m.row], true
}

func (m *Model) clamp(n int) {
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// StartEdit seeds the inline buffers from t. Any other edit in progress is
// discarded.
func (m *Model) StartEdit(t task.Task) tea.Cmd {
	m.CancelEdit()
	m.editingID = t.ID
	m.inputs[fieldTitle].SetValue(t.Title)
	m.inputs[fieldDescription].SetValue(t.DescriptionText())
	m.inputs[fieldDue].SetValue(task.FormatDate(t.DueAt))
	return m.focusField(fieldTitle)
}

// CancelEdit discards the inline buffers.
func (m *Model) CancelEdit() {
	m.editingID = ""
	m.editErr = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
}

func (m *Model) focusField(f int) tea.Cmd {
	m.field = f
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[f].Focus()
}

var errBadDue = errors.New("due date must be YYYY-MM-DD")

// save builds the patch for the row in edit. Status is never part of it.
func (m *Model) save(orig task.Task) (task.Patch, error) {
	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	if title == "" {
		return task.Patch{}, task.ErrTitleRequired
	}
	due, err := task.ParseDate(m.inputs[fieldDue].Value())
	if err != nil {
		return task.Patch{}, errBadDue
	}
	var p task.Patch
	if title != orig.Title {
		p.Title = &title
	}
	desc := strings.TrimSpace(m.inputs[fieldDescription].Value())
	switch {
	case desc == "" && orig.Description != nil:
		p.ClearDescription = true
	case desc != "" && desc != orig.DescriptionText():
		p.Description = &desc
	}
	switch {
	case due == nil && orig.DueAt != nil:
		p.ClearDue = true
	case due != nil && task.FormatDate(due) != task.FormatDate(orig.DueAt):
		p.DueAt = due
	}
	return p, nil
}

// Update handles a key press against the current rows.
func (m *Model) Update(msg tea.KeyPressMsg, tasks []task.Task) tea.Cmd {
	switch {
	case m.filtering:
		return m.updateFilter(msg)
	case m.editingID != "":
		return m.updateEdit(msg, tasks)
	}

	rows := m.Visible(tasks)
	m.clamp(len(rows))
	switch msg.String() {
	case "j", "down":
		if m.row < len(rows)-1 {
			m.row++
		}
	case "k", "up":
		if m.row > 0 {
			m.row--
		}
	case "g", "home":
		m.row = 0
	case "G", "end":
		m.row = max(len(rows)-1, 0)
	case "/":
		m.filtering = true
		return m.filter.Focus()
	case "esc":
		m.filter.SetValue("")
	case "n":
		return events.NewTaskCmd(Component, nil)
	}
	if len(rows) == 0 {
		return nil
	}
	t := rows[m.row]
	switch msg.String() {
	case "enter", "i":
		return m.StartEdit(t)
	case "e":
		return events.EditTaskCmd(Component, t)
	case "s", "space":
		return events.StatusChangeCmd(Component, t.ID, t.Status.Next())
	case "d":
		return events.DeleteTaskCmd(Component, t)
	}
	return nil
}

func (m *Model) updateFilter(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return nil
	case "esc":
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.row = 0
	return cmd
}

func (m *Model) updateEdit(msg tea.KeyPressMsg, tasks []task.Task) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.CancelEdit()
		return nil
	case "tab":
		return m.focusField((m.field + 1) % fieldCount)
	case "shift+tab":
		return m.focusField((m.field + fieldCount - 1) % fieldCount)
	case "up", "down":
		rows := m.Visible(tasks)
		if msg.String() == "up" && m.row > 0 {
			m.row--
		}
		if msg.String() == "down" && m.row < len(rows)-1 {
			m.row++
		}
		m.clamp(len(rows))
		if len(rows) > 0 && rows[m.row].ID != m.editingID {
			return m.StartEdit(rows[m.row])
		}
		return nil
	case "enter":
		orig, ok := find(tasks, m.editingID)
		if !ok {
			m.CancelEdit()
			return nil
		}
		p, err := m.save(orig)
		if err != nil {
			m.editErr = err.Error()
			return nil
		}
		id := m.editingID
		m.CancelEdit()
		if p.Empty() {
			return nil
		}
		return events.PatchTaskCmd(Component, id, p)
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return cmd
}

func find(tasks []task.Task, id string) (task.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

type columns struct {
	title, status, due, desc int
}

func (m *Model) columns() columns {
	width := max(m.width, 40)
	c := columns{status: 13, due: 11}
	rest := width - c.status - c.due - 6
	c.title = max(rest*2/5, 10)
	c.desc = max(rest-c.title, 8)
	return c
}

// View renders the table.
func (m *Model) View(tasks []task.Task, focused bool) string {
	rows := m.Visible(tasks)
	m.clamp(len(rows))
	cols := m.columns()

	var b strings.Builder
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	header := fmt.Sprintf("%s  %s  %s  %s",
		uiutil.Pad("Title", cols.title), uiutil.Pad("Status", cols.status),
		uiutil.Pad("Due", cols.due), "Description")
	b.WriteString(m.theme.Header.Render(header))
	if len(rows) == 0 {
		b.WriteString("\n")
		if len(tasks) == 0 {
			b.WriteString(m.theme.Muted.Render("No tasks yet. Press n to add one."))
		} else {
			b.WriteString(m.theme.Muted.Render("No tasks match the filter."))
		}
		return b.String()
	}

	visible := max(m.height-3, 1)
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+visible {
		m.offset = m.row - visible + 1
	}
	end := min(len(rows), m.offset+visible)
	for i := m.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(rows[i], cols, focused && i == m.row))
	}
	if m.editErr != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Other.Render(m.editErr))
	}
	return b.String()
}

func (m *Model) renderRow(t task.Task, cols columns, selected bool) string {
	status := m.theme.Status(t.Status).Render(uiutil.Truncate(t.Status.Label(), cols.status-2))
	status = uiutil.Pad(status, cols.status)
	marker := "  "
	if selected {
		marker = "> "
	}
	if t.ID == m.editingID {
		return m.theme.Editing.Render(marker) + fmt.Sprintf("%s  %s  %s  %s",
			uiutil.Pad(m.inputs[fieldTitle].View(), cols.title-2), status,
			uiutil.Pad(m.inputs[fieldDue].View(), cols.due), m.inputs[fieldDescription].View())
	}
	line := fmt.Sprintf("%s  %s  %s  %s",
		uiutil.Pad(t.Title, cols.title-2), status,
		uiutil.Pad(task.FormatDate(t.DueAt), cols.due),
		uiutil.Truncate(uiutil.FirstLine(t.DescriptionText()), cols.desc))
	if selected {
		return m.theme.Header.Render(marker + line)
	}
	return marker + line
}
