// Package calendar renders tasks on a month grid keyed by due date.
package calendar

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Component identifies calendar intents.
const Component events.ComponentID = "calendar"

// MaxChips is how many tasks a day cell lists before "+N more".
const MaxChips = 3

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DaysIn returns the number of days in a month.
func DaysIn(month time.Time) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return first.AddDate(0, 1, -1).Day()
}

// Midnight truncates t to the start of its local day.
func Midnight(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// MonthGrid returns every day of the Sunday-started weeks that intersect the
// month of cursor. The length is always a multiple of 7.
func MonthGrid(cursor time.Time) []time.Time {
	cursor = Midnight(cursor)
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.Local)
	last := time.Date(cursor.Year(), cursor.Month(), DaysIn(cursor), 0, 0, 0, 0, time.Local)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// TasksOn returns the tasks due on the same local date as day, in collection
// order.
func TasksOn(tasks []task.Task, day time.Time) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.DueOn(day) {
			out = append(out, t)
		}
	}
	return out
}

// ShiftMonth moves t by n calendar months, clamping the day to the length of
// the target month.
func ShiftMonth(t time.Time, n int) time.Time {
	t = Midnight(t)
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.Local)
	day := min(t.Day(), DaysIn(first))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.Local)
}

// Model holds the day cursor and the focused chip on that day.
type Model struct {
	theme  theme.CalendarTheme
	width  int
	height int
	now    func() time.Time
	cursor time.Time
	chip   int
}

// New returns a calendar positioned on today.
func New(th theme.CalendarTheme) *Model {
	m := &Model{theme: th, now: time.Now, chip: -1}
	m.cursor = Midnight(m.now())
	return m
}

// SetSize sets the drawing area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetNow replaces the clock and moves the cursor to the new today.
func (m *Model) SetNow(now func() time.Time) {
	m.now = now
	m.Today()
}

// Cursor returns the selected day.
func (m *Model) Cursor() time.Time { return m.cursor }

// FocusedChip returns the index of the focused chip, or -1.
func (m *Model) FocusedChip() int { return m.chip }

// Today moves the cursor to the current day.
func (m *Model) Today() {
	m.setCursor(Midnight(m.now()))
}

func (m *Model) setCursor(day time.Time) {
	m.cursor = Midnight(day)
	m.chip = -1
}

// Update turns a key press into navigation or exactly one intent.
func (m *Model) Update(msg tea.KeyPressMsg, tasks []task.Task) tea.Cmd {
	onDay := TasksOn(tasks, m.cursor)
	if m.chip >= min(len(onDay), MaxChips) {
		m.chip = -1
	}
	switch msg.String() {
	case "h", "left":
		m.setCursor(m.cursor.AddDate(0, 0, -1))
	case "l", "right":
		m.setCursor(m.cursor.AddDate(0, 0, 1))
	case "k", "up":
		m.setCursor(m.cursor.AddDate(0, 0, -7))
	case "j", "down":
		m.setCursor(m.cursor.AddDate(0, 0, 7))
	case "[":
		m.setCursor(ShiftMonth(m.cursor, -1))
	case "]":
		m.setCursor(ShiftMonth(m.cursor, 1))
	case "t":
		m.Today()
	case "tab":
		visible := min(len(onDay), MaxChips)
		if visible == 0 {
			m.chip = -1
			break
		}
		m.chip++
		if m.chip >= visible {
			m.chip = -1
		}
	case "shift+tab":
		visible := min(len(onDay), MaxChips)
		switch {
		case visible == 0:
			m.chip = -1
		case m.chip < 0:
			m.chip = visible - 1
		default:
			m.chip--
		}
	case "esc":
		m.chip = -1
	case "enter":
		if m.chip >= 0 {
			return events.EditTaskCmd(Component, onDay[m.chip])
		}
		due := m.cursor
		return events.NewTaskCmd(Component, &due)
	case "n":
		due := m.cursor
		return events.NewTaskCmd(Component, &due)
	case "s":
		if m.chip >= 0 {
			t := onDay[m.chip]
			return events.StatusChangeCmd(Component, t.ID, t.Status.Next())
		}
	case "d":
		if m.chip >= 0 {
			return events.DeleteTaskCmd(Component, onDay[m.chip])
		}
	}
	return nil
}

// View renders the month of the cursor.
func (m *Model) View(tasks []task.Task, focused bool) string {
	grid := MonthGrid(m.cursor)
	today := Midnight(m.now())
	cellWidth := max((max(m.width, 35)-7)/7, 4)

	var header []string
	for _, d := range weekdays {
		header = append(header, m.theme.Header.Render(uiutil.Pad(d, cellWidth)))
	}

	lines := []string{
		m.theme.Header.Render(m.cursor.Format("January 2006")),
		strings.Join(header, " "),
	}
	for week := 0; week < len(grid)/7; week++ {
		cells := make([]string, 7)
		for i := 0; i < 7; i++ {
			day := grid[week*7+i]
			cells[i] = m.cell(day, TasksOn(tasks, day), cellWidth, focused, task.SameDay(day, today))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, interleave(cells, " ")...))
	}
	return strings.Join(lines, "\n")
}

func interleave(cells []string, sep string) []string {
	out := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, c)
	}
	return out
}

func (m *Model) cell(day time.Time, onDay []task.Task, width int, focused, isToday bool) string {
	selected := task.SameDay(day, m.cursor)

	label := fmt.Sprintf("%2d", day.Day())
	style := m.theme.Day
	if day.Month() != m.cursor.Month() {
		style = m.theme.OutsideMonth
	}
	if isToday {
		style = style.Inherit(m.theme.Today)
	}
	if selected && focused && m.chip < 0 {
		style = m.theme.Selected
	}
	lines := []string{style.Render(uiutil.Pad(label, width))}

	for i, t := range onDay {
		if i == MaxChips {
			break
		}
		chip := m.theme.Chip
		if selected && focused && i == m.chip {
			chip = m.theme.ChipFocused
		}
		lines = append(lines, chip.Render(uiutil.Pad("• "+t.Title, width)))
	}
	if extra := len(onDay) - MaxChips; extra > 0 {
		lines = append(lines, m.theme.More.Render(uiutil.Pad(fmt.Sprintf("+%d more", extra), width)))
	}
	for len(lines) < MaxChips+2 {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
