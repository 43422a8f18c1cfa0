// Package chat renders the assistant panel: the transcript, the input box,
// the suggested items and the interpretation history picker.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"

	"tableflip.dev/planner/pkg/api"
	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/review"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Component identifies chat intents.
const Component events.ComponentID = "chat"

type zone int

const (
	zoneInput zone = iota
	zoneItems
	zoneHistory
)

// Editable item fields, in tab order.
var itemFields = []string{
	interpretation.KeyTitle,
	interpretation.KeyDescription,
	interpretation.KeyDueAt,
	interpretation.KeyTags,
}

// Model is the assistant view.
type Model struct {
	ctl   *review.Controller
	theme theme.Theme

	width  int
	height int

	zone  zone
	input textinput.Model

	item      int
	editing   bool
	field     int
	editInput textinput.Model

	historyRow    int
	historyOffset int

	renderer      *glamour.TermRenderer
	rendererWidth int
	rendered      map[string]string
}

// New binds a view to the controller.
func New(ctl *review.Controller, th theme.Theme) *Model {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "Tell me what you need to do…"
	edit := textinput.New()
	edit.Prompt = ""
	return &Model{
		ctl:       ctl,
		theme:     th,
		input:     in,
		editInput: edit,
		rendered:  map[string]string{},
	}
}

// SetSize sets the drawing area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-4, 10))
	m.editInput.SetWidth(max(width-18, 10))
}

// Focus puts the cursor in the input box.
func (m *Model) Focus() tea.Cmd {
	m.zone = zoneInput
	return m.input.Focus()
}

// Blur releases the keyboard.
func (m *Model) Blur() {
	m.input.Blur()
	m.editInput.Blur()
	m.editing = false
}

// Capturing reports whether text input owns the keyboard.
func (m *Model) Capturing() bool {
	return (m.zone == zoneInput && m.input.Focused()) || m.editing || m.zone == zoneHistory
}

// Reset clears local state after a sign-out.
func (m *Model) Reset() {
	m.input.SetValue("")
	m.item = 0
	m.editing = false
	m.zone = zoneInput
	m.rendered = map[string]string{}
}

// Update handles a key press.
func (m *Model) Update(msg tea.KeyPressMsg) tea.Cmd {
	switch m.zone {
	case zoneHistory:
		return m.updateHistory(msg)
	case zoneItems:
		if m.editing {
			return m.updateEdit(msg)
		}
		return m.updateItems(msg)
	}
	return m.updateInput(msg)
}

func (m *Model) updateInput(msg tea.KeyPressMsg) tea.Cmd {
	if !m.input.Focused() {
		switch msg.String() {
		case "i", "enter":
			return m.input.Focus()
		case "tab":
			if len(m.ctl.Items()) > 0 {
				m.zone = zoneItems
			}
		case "ctrl+r", "H":
			return m.OpenHistory()
		}
		return nil
	}
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return nil
	case "enter":
		cmd, err := m.ctl.Submit(m.input.Value())
		switch {
		case errors.Is(err, review.ErrEmpty):
			return nil
		case errors.Is(err, review.ErrBusy):
			return events.NotifyCmd(Component, events.NotifyInfo, "Still waiting for the previous answer.")
		case err != nil:
			return events.NotifyCmd(Component, events.NotifyError, err.Error())
		}
		m.input.SetValue("")
		return cmd
	case "tab":
		if len(m.ctl.Items()) == 0 {
			return nil
		}
		m.input.Blur()
		m.zone = zoneItems
		return nil
	case "ctrl+r":
		return m.OpenHistory()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// OpenHistory shows the picker and loads the first page.
func (m *Model) OpenHistory() tea.Cmd {
	m.input.Blur()
	m.zone = zoneHistory
	m.historyRow = 0
	m.historyOffset = 0
	return m.ctl.History(api.DefaultPageSize, 0)
}

func (m *Model) selectedItem() (interpretation.Item, bool) {
	items := m.ctl.Items()
	if len(items) == 0 {
		return interpretation.Item{}, false
	}
	m.item = min(max(m.item, 0), len(items)-1)
	return items[m.item], true
}

func (m *Model) updateItems(msg tea.KeyPressMsg) tea.Cmd {
	items := m.ctl.Items()
	switch msg.String() {
	case "tab", "esc":
		m.zone = zoneInput
		return m.input.Focus()
	case "j", "down":
		if m.item < len(items)-1 {
			m.item++
		}
		m.field = 0
	case "k", "up":
		if m.item > 0 {
			m.item--
		}
		m.field = 0
	case "A":
		return m.ctl.ApproveAll()
	case "r":
		return m.ctl.LoadItems(m.ctl.Active())
	}
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}
	switch msg.String() {
	case "a", "enter":
		cmd, err := m.ctl.Approve(item.ID)
		if err != nil {
			return events.NotifyCmd(Component, events.NotifyInfo, approveHint(err))
		}
		return cmd
	case "f":
		m.field = (m.field + 1) % len(itemFields)
	case "e":
		if !item.Editable() {
			return events.NotifyCmd(Component, events.NotifyInfo, "This suggestion was already created.")
		}
		m.editing = true
		m.editInput.SetValue(fieldValue(m.ctl.Draft(item.ID), itemFields[m.field]))
		return m.editInput.Focus()
	case "ctrl+s":
		cmd, err := m.ctl.Save(item.ID)
		if err != nil {
			return events.NotifyCmd(Component, events.NotifyInfo, err.Error())
		}
		return cmd
	}
	return nil
}

func approveHint(err error) string {
	switch {
	case errors.Is(err, review.ErrNotPending):
		return "This suggestion was already created."
	case errors.Is(err, review.ErrInFlight):
		return "Approval already in progress."
	}
	return err.Error()
}

func fieldValue(d interpretation.Data, key string) string {
	switch key {
	case interpretation.KeyTags:
		return strings.Join(d.Tags(), ", ")
	case interpretation.KeyDueAt:
		if due := d.DueAt(); due != nil {
			return due.Format("2006-01-02")
		}
		return ""
	}
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

func (m *Model) updateEdit(msg tea.KeyPressMsg) tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		m.editing = false
		return nil
	}
	switch msg.String() {
	case "esc":
		m.editing = false
		m.editInput.Blur()
		return nil
	case "enter":
		key := itemFields[m.field]
		raw := strings.TrimSpace(m.editInput.Value())
		var value any = raw
		if key == interpretation.KeyTags {
			value = interpretation.SplitTags(raw)
		}
		m.editing = false
		m.editInput.Blur()
		if err := m.ctl.SetField(item.ID, key, value); err != nil {
			return events.NotifyCmd(Component, events.NotifyError, err.Error())
		}
		return nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return cmd
}

func (m *Model) updateHistory(msg tea.KeyPressMsg) tea.Cmd {
	page := m.ctl.HistoryPage()
	rows := page.Interpretations
	switch msg.String() {
	case "esc", "q":
		m.zone = zoneInput
		return m.input.Focus()
	case "j", "down":
		if m.historyRow < len(rows)-1 {
			m.historyRow++
		}
	case "k", "up":
		if m.historyRow > 0 {
			m.historyRow--
		}
	case "n", "right":
		if page.HasMore() {
			m.historyOffset = page.Offset + len(rows)
			m.historyRow = 0
			return m.ctl.History(api.DefaultPageSize, m.historyOffset)
		}
	case "p", "left":
		if page.Offset > 0 {
			m.historyOffset = max(page.Offset-api.DefaultPageSize, 0)
			m.historyRow = 0
			return m.ctl.History(api.DefaultPageSize, m.historyOffset)
		}
	case "enter":
		if m.historyRow < len(rows) {
			id := rows[m.historyRow].ID
			m.zone = zoneItems
			m.item = 0
			return m.ctl.Open(id)
		}
	}
	return nil
}

func (m *Model) markdown(content string, width int) string {
	if width != m.rendererWidth || m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width, 20)),
		)
		if err != nil {
			return content
		}
		m.renderer = r
		m.rendererWidth = width
		m.rendered = map[string]string{}
	}
	if out, ok := m.rendered[content]; ok {
		return out
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	m.rendered[content] = out
	return out
}

// View renders the panel.
func (m *Model) View() string {
	if m.zone == zoneHistory {
		return m.historyView()
	}
	width := max(m.width, 30)
	itemsView := m.itemsView(width)
	itemLines := strings.Count(itemsView, "\n") + 1
	if itemsView == "" {
		itemLines = 0
	}
	transcriptHeight := max(m.height-itemLines-3, 3)

	var sections []string
	sections = append(sections, m.transcript(width, transcriptHeight))
	if itemsView != "" {
		sections = append(sections, itemsView)
	}
	input := m.input.View()
	if m.ctl.Submitting() {
		input = m.theme.Chat.Pending.Render("Thinking…")
	}
	sections = append(sections, input)
	return strings.Join(sections, "\n")
}

func (m *Model) transcript(width, height int) string {
	msgs := m.ctl.Messages()
	if len(msgs) == 0 {
		return m.theme.Board.Muted.Render("Ask the assistant to plan something, e.g. \"submit the report by tomorrow\".")
	}
	var lines []string
	for _, msg := range msgs {
		switch msg.Role {
		case review.RoleUser:
			who := m.theme.Chat.User.Render("You")
			body := msg.Content
			switch msg.State {
			case review.StatePending:
				body = m.theme.Chat.Pending.Render(body + " (sending…)")
			case review.StateFailed:
				body = m.theme.Chat.Failed.Render(body) + " " + m.theme.Modal.Alert.Render("(failed)")
			}
			lines = append(lines, who+" "+msg.Timestamp.Format("15:04"))
			lines = append(lines, uiutil.Wrap(body, width, 20)...)
		case review.RoleAI:
			lines = append(lines, m.theme.Chat.AI.Render("Assistant")+" "+msg.Timestamp.Format("15:04"))
			lines = append(lines, strings.Split(m.markdown(msg.Content, width), "\n")...)
		}
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) itemsView(width int) string {
	items := m.ctl.Items()
	if len(items) == 0 {
		return ""
	}
	focused := m.zone == zoneItems
	var lines []string
	header := fmt.Sprintf("Suggestions (%d)", len(items))
	if focused {
		header += m.theme.Board.Muted.Render("  a approve · A approve all · e edit · f next field · ctrl+s save · tab back")
	}
	lines = append(lines, m.theme.Panel.Title.Render(header))
	for i, item := range items {
		draft := m.ctl.Draft(item.ID)
		title := draft.Title()
		if title == "" {
			title = item.Data.Title()
		}
		state := "pending"
		style := m.theme.Chat.Item
		switch {
		case item.Status == interpretation.ItemCreated:
			state = "created"
			style = m.theme.Chat.Created
		case m.ctl.Approving(item.ID):
			state = "approving…"
		}
		if focused && i == m.item {
			style = m.theme.Chat.Selected
		}
		lines = append(lines, style.Render(uiutil.Truncate(fmt.Sprintf("[%s] %s · %s", state, item.ResourceType, title), width-2)))
		if focused && i == m.item {
			lines = append(lines, m.fields(item, draft, width)...)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) fields(item interpretation.Item, draft interpretation.Data, width int) []string {
	if !item.Editable() {
		draft = item.Data
	}
	var lines []string
	for i, key := range itemFields {
		value := fieldValue(draft, key)
		if m.editing && i == m.field {
			value = m.editInput.View()
		} else {
			value = uiutil.Truncate(value, width-18)
		}
		marker := "   "
		if i == m.field {
			marker = " › "
		}
		lines = append(lines, marker+m.theme.Chat.FieldName.Render(key)+value)
	}
	return lines
}

func (m *Model) historyView() string {
	page := m.ctl.HistoryPage()
	var lines []string
	lines = append(lines, m.theme.Modal.Title.Render("History"))
	if len(page.Interpretations) == 0 {
		lines = append(lines, m.theme.Board.Muted.Render("No previous requests."))
	}
	for i, in := range page.Interpretations {
		marker := "  "
		if i == m.historyRow {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s  %s", marker, in.CreatedAt.Local().Format("2006-01-02 15:04"), uiutil.Truncate(in.InputText, max(m.width-22, 10)))
		if i == m.historyRow {
			line = m.theme.Chat.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	footer := fmt.Sprintf("%d–%d of %d · enter open · n/p page · esc close",
		min(page.Offset+1, page.Total), page.Offset+len(page.Interpretations), page.Total)
	lines = append(lines, "", m.theme.Board.Muted.Render(footer))
	return strings.Join(lines, "\n")
}
