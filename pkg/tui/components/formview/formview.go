// Package formview draws the create/edit dialog on top of a form.Form.
package formview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/form"
	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
)

// Component identifies form intents.
const Component events.ComponentID = "form"

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldDue
	fieldStatus
	fieldPrompt
)

// SubmitMsg carries a validated submission to the root model.
type SubmitMsg struct {
	Submission form.Submission
}

func (m SubmitMsg) Describe() string {
	return fmt.Sprintf(`session:%d id:%q create:%t`, m.Submission.Session, m.Submission.ID, m.Submission.Create != nil)
}

// CancelMsg reports that the user dismissed the dialog.
type CancelMsg struct{}

func (CancelMsg) Describe() string { return "cancel" }

// Model renders and edits an open form.
type Model struct {
	form  *form.Form
	theme theme.ModalTheme
	board theme.BoardTheme
	width int

	rev     uint64
	session uint64
	inputs  map[field]*textinput.Model
	focus   field
	err     string
}

// New binds a view to f.
func New(f *form.Form, th theme.Theme) *Model {
	m := &Model{form: f, theme: th.Modal, board: th.Board, inputs: map[field]*textinput.Model{}}
	for _, fl := range []field{fieldTitle, fieldDescription, fieldDue, fieldPrompt} {
		in := textinput.New()
		in.Prompt = ""
		m.inputs[fl] = &in
	}
	m.inputs[fieldTitle].Placeholder = "What needs doing?"
	m.inputs[fieldDescription].Placeholder = "Optional details"
	m.inputs[fieldDue].Placeholder = "YYYY-MM-DD"
	m.inputs[fieldPrompt].Placeholder = "Describe the task in your own words"
	return m
}

// SetWidth sets the dialog width.
func (m *Model) SetWidth(width int) {
	m.width = width
	inner := max(width-m.theme.Frame.GetHorizontalFrameSize()-14, 10)
	for _, in := range m.inputs {
		in.SetWidth(inner)
	}
}

// Sync copies the form buffers into the inputs when the form was reopened or
// filled programmatically. It returns the focus command for a new session.
func (m *Model) Sync() tea.Cmd {
	if m.form.Session() != m.session {
		m.session = m.form.Session()
		m.err = ""
		m.rev = 0
		m.inputs[fieldPrompt].SetValue("")
		if m.form.IsOpen() {
			m.loadFields()
			return m.setFocus(fieldTitle)
		}
	}
	if m.form.Revision() != m.rev {
		m.loadFields()
	}
	return nil
}

func (m *Model) loadFields() {
	f := m.form.Fields()
	m.inputs[fieldTitle].SetValue(f.Title)
	m.inputs[fieldDescription].SetValue(f.Description)
	m.inputs[fieldDue].SetValue(f.Due)
	m.rev = m.form.Revision()
}

func (m *Model) order() []field {
	fields := []field{fieldTitle, fieldDescription, fieldDue, fieldStatus}
	if m.form.GenerateOpen() {
		fields = append([]field{fieldPrompt}, fields...)
	}
	return fields
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	for fl, in := range m.inputs {
		if fl == f {
			cmd = in.Focus()
			continue
		}
		in.Blur()
	}
	return cmd
}

func (m *Model) step(delta int) tea.Cmd {
	order := m.order()
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	return m.setFocus(order[idx])
}

// Update handles a key press while the dialog is open.
func (m *Model) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !m.form.IsOpen() {
		return nil
	}
	if m.form.Alert() != "" {
		switch msg.String() {
		case "enter", "esc", "space":
			m.form.DismissAlert()
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		m.form.Cancel()
		return func() tea.Msg { return CancelMsg{} }
	case "tab", "down":
		return m.step(1)
	case "shift+tab", "up":
		return m.step(-1)
	case "ctrl+g":
		if err := m.form.ToggleGenerate(); err != nil {
			m.err = "AI fill is only available for new tasks."
			return nil
		}
		if m.form.GenerateOpen() {
			return m.setFocus(fieldPrompt)
		}
		return m.setFocus(fieldTitle)
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == fieldPrompt {
			m.form.SetPrompt(m.inputs[fieldPrompt].Value())
			return m.form.Generate()
		}
		return m.submit()
	}

	if m.focus == fieldStatus {
		switch msg.String() {
		case "space", "right", "l":
			m.form.CycleStatus()
		case "left", "h":
			s := m.form.Fields().Status
			m.form.SetStatus(s.Next().Next())
		}
		return nil
	}

	in := m.inputs[m.focus]
	next, cmd := in.Update(msg)
	*in = next
	switch m.focus {
	case fieldTitle:
		m.form.SetTitle(in.Value())
	case fieldDescription:
		m.form.SetDescription(in.Value())
	case fieldDue:
		m.form.SetDue(in.Value())
	case fieldPrompt:
		m.form.SetPrompt(in.Value())
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	sub, err := m.form.Submit()
	switch {
	case errors.Is(err, form.ErrTitleRequired):
		m.err = "Title is required."
		return m.setFocus(fieldTitle)
	case errors.Is(err, form.ErrInvalidDue):
		m.err = "Due date must be YYYY-MM-DD."
		return m.setFocus(fieldDue)
	case err != nil:
		m.err = err.Error()
		return nil
	}
	m.err = ""
	return func() tea.Msg { return SubmitMsg{Submission: sub} }
}

// View renders the dialog.
func (m *Model) View() string {
	if !m.form.IsOpen() {
		return ""
	}
	title := "New task"
	if t, ok := m.form.Target(); ok {
		title = "Edit task · " + t.Title
	}

	var rows []string
	rows = append(rows, m.theme.Title.Render(title), "")
	if m.form.GenerateOpen() {
		label := "AI fill"
		if m.form.Generating() {
			label = "AI fill …"
		}
		rows = append(rows, m.row(fieldPrompt, label, m.inputs[fieldPrompt].View()), "")
	}
	rows = append(rows,
		m.row(fieldTitle, "Title", m.inputs[fieldTitle].View()),
		m.row(fieldDescription, "Description", m.inputs[fieldDescription].View()),
		m.row(fieldDue, "Due", m.inputs[fieldDue].View()),
		m.row(fieldStatus, "Status", m.statusSelector()),
	)
	if m.err != "" {
		rows = append(rows, "", m.theme.Alert.Render(m.err))
	}
	if alert := m.form.Alert(); alert != "" {
		rows = append(rows, "", m.theme.Alert.Render(alert+" (enter to dismiss)"))
	}
	hint := "enter save · esc cancel · tab next field"
	if m.form.Mode() == form.ModeCreate {
		hint += " · ctrl+g AI fill"
	}
	rows = append(rows, "", m.board.Muted.Render(hint))

	frame := m.theme.Frame
	if m.width > 0 {
		frame = frame.Width(m.width)
	}
	return frame.Render(strings.Join(rows, "\n"))
}

func (m *Model) row(f field, label, value string) string {
	marker := "  "
	if m.focus == f {
		marker = "> "
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, marker, lipgloss.NewStyle().Width(12).Render(label), value)
}

func (m *Model) statusSelector() string {
	current := m.form.Fields().Status
	var parts []string
	for _, s := range task.AllStatuses() {
		label := s.Label()
		if s == current {
			parts = append(parts, m.board.Status(s).Render(label))
			continue
		}
		parts = append(parts, m.board.Muted.Render(label))
	}
	return strings.Join(parts, " ")
}
