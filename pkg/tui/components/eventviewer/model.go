// Package eventviewer logs the intents planner components emit, newest
// first, with a running tally per component. The testbed docks it under the
// view being previewed.
package eventviewer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/tui/events"
)

// Runtime attributes messages that no planner component emitted, such as
// key presses and resizes.
const Runtime events.ComponentID = "tea"

// Level grades an entry.
type Level int

const (
	LevelInfo Level = iota
	// LevelWarn marks destructive intents such as deletes.
	LevelWarn
	// LevelError marks error notifications.
	LevelError
)

// Entry is one logged message.
type Entry struct {
	At        time.Time
	Component events.ComponentID
	Kind      string
	Detail    string
	Level     Level
}

// Model renders the log inside a bordered viewport.
type Model struct {
	viewport viewport.Model
	entries  []Entry
	limit    int
	tally    map[events.ComponentID]int
	only     events.ComponentID

	width  int
	height int
	now    func() time.Time

	styles Styles
}

// Styles controls the log's presentation.
type Styles struct {
	Frame     lipgloss.Style
	Header    lipgloss.Style
	Tally     lipgloss.Style
	Info      lipgloss.Style
	Warn      lipgloss.Style
	Error     lipgloss.Style
	Timestamp lipgloss.Style
	Component lipgloss.Style
}

// DefaultStyles returns the stock styling.
func DefaultStyles() Styles {
	return Styles{
		Frame:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
		Tally:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Component: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
	}
}

// NewModel returns a viewer that keeps at most limit entries.
func NewModel(limit int) *Model {
	if limit <= 0 {
		limit = 200
	}
	return &Model{
		viewport: viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		limit:    limit,
		tally:    map[events.ComponentID]int{},
		now:      time.Now,
		styles:   DefaultStyles(),
	}
}

// SetSize resizes the viewport while keeping the header and border intact.
func (m *Model) SetSize(width, height int) {
	width = max(width, 4)
	height = max(height, 3)
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height
	m.viewport.SetWidth(max(1, width-2))
	m.viewport.SetHeight(max(1, height-3))
	m.refresh()
}

// Record logs msg under the component that emitted it.
func (m *Model) Record(msg tea.Msg) {
	component, ok := Source(msg)
	if !ok {
		component = Runtime
	}
	m.tally[component]++
	m.entries = append([]Entry{{
		At:        m.now(),
		Component: component,
		Kind:      kind(msg),
		Detail:    Describe(msg),
		Level:     levelOf(msg),
	}}, m.entries...)
	if len(m.entries) > m.limit {
		m.entries = m.entries[:m.limit]
	}
	m.refresh()
	m.viewport.SetYOffset(0)
}

// Only restricts the visible entries to one component; "" shows all.
func (m *Model) Only(c events.ComponentID) {
	m.only = c
	m.refresh()
}

// Filter returns the component entries are restricted to, or "".
func (m *Model) Filter() events.ComponentID { return m.only }

// Components returns every component seen so far, sorted.
func (m *Model) Components() []events.ComponentID {
	out := make([]events.ComponentID, 0, len(m.tally))
	for c := range m.tally {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns how many messages component has emitted.
func (m *Model) Count(c events.ComponentID) int { return m.tally[c] }

// Entries returns the retained entries, newest first.
func (m *Model) Entries() []Entry { return m.entries }

// Clear drops every entry and count.
func (m *Model) Clear() {
	m.entries = nil
	m.tally = map[events.ComponentID]int{}
	m.refresh()
}

// View renders the header with per-component counts above the log.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View())
	return m.styles.Frame.Width(m.width).Height(m.height).Render(body)
}

func (m *Model) header() string {
	title := "Events"
	if m.only != "" {
		title = fmt.Sprintf("Events [%s]", m.only)
	}
	parts := make([]string, 0, len(m.tally))
	for _, c := range m.Components() {
		parts = append(parts, fmt.Sprintf("%s %d", c, m.tally[c]))
	}
	if len(parts) == 0 {
		return m.styles.Header.Render(title)
	}
	return m.styles.Header.Render(title) + "  " + m.styles.Tally.Render(strings.Join(parts, " · "))
}

func (m *Model) refresh() {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if m.only != "" && e.Component != m.only {
			continue
		}
		lines = append(lines, m.render(e))
	}
	if len(lines) == 0 {
		lines = append(lines, m.styles.Timestamp.Render("No events yet"))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) render(e Entry) string {
	text := e.Kind
	if e.Detail != "" {
		text += " " + e.Detail
	}
	switch e.Level {
	case LevelWarn:
		text = m.styles.Warn.Render(text)
	case LevelError:
		text = m.styles.Error.Render(text)
	default:
		text = m.styles.Info.Render(text)
	}
	return fmt.Sprintf("%s %s %s",
		m.styles.Timestamp.Render(e.At.Format("15:04:05.000")),
		m.styles.Component.Render(string(e.Component)),
		text)
}

// Describe renders the interesting part of a message.
func Describe(msg tea.Msg) string {
	if d, ok := msg.(events.Describer); ok {
		return d.Describe()
	}
	switch v := msg.(type) {
	case tea.KeyPressMsg:
		return fmt.Sprintf("key=%q", v.String())
	case tea.WindowSizeMsg:
		return fmt.Sprintf("size=%dx%d", v.Width, v.Height)
	default:
		return ""
	}
}

// Source returns the component that emitted an intent message.
func Source(msg tea.Msg) (events.ComponentID, bool) {
	switch v := msg.(type) {
	case events.NewTaskMsg:
		return v.Component, true
	case events.EditTaskMsg:
		return v.Component, true
	case events.DeleteTaskMsg:
		return v.Component, true
	case events.StatusChangeMsg:
		return v.Component, true
	case events.PatchTaskMsg:
		return v.Component, true
	case events.TaskCreatedMsg:
		return v.Component, true
	case events.NotifyMsg:
		return v.Component, true
	case events.FocusMsg:
		return v.Component, true
	case events.BlurMsg:
		return v.Component, true
	case events.DebugMsg:
		return v.Component, true
	default:
		return "", false
	}
}

// kind names a message without its package, "StatusChangeMsg" becoming
// "status-change".
func kind(msg tea.Msg) string {
	name := fmt.Sprintf("%T", msg)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "Msg")
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func levelOf(msg tea.Msg) Level {
	switch v := msg.(type) {
	case events.DeleteTaskMsg:
		return LevelWarn
	case events.NotifyMsg:
		if v.Level == events.NotifyError {
			return LevelError
		}
	}
	return LevelInfo
}
