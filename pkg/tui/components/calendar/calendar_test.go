package calendar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

func press(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	}
	return tea.KeyPressMsg{Code: []rune(k)[0], Text: k}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func at(day time.Time, hour int) *time.Time {
	t := day.Add(time.Duration(hour) * time.Hour)
	return &t
}

func newModel(today time.Time) *Model {
	m := New(theme.Default().Calendar)
	m.SetSize(140, 40)
	m.SetNow(func() time.Time { return today })
	return m
}

func TestMonthGridCoversWholeWeeks(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		cursor := date(2025, month, 15)
		grid := MonthGrid(cursor)
		if len(grid)%7 != 0 {
			t.Fatalf("%s: %d days", month, len(grid))
		}
		if grid[0].Weekday() != time.Sunday {
			t.Fatalf("%s: grid starts on %s", month, grid[0].Weekday())
		}
		seen := map[int]bool{}
		for _, d := range grid {
			if d.Month() == month {
				seen[d.Day()] = true
			}
		}
		if len(seen) != DaysIn(cursor) {
			t.Fatalf("%s: covered %d of %d days", month, len(seen), DaysIn(cursor))
		}
	}
}

func TestMonthGridKnownMonth(t *testing.T) {
	// March 2025 starts on a Saturday and ends on a Monday.
	grid := MonthGrid(date(2025, time.March, 10))
	if len(grid) != 42 {
		t.Fatalf("len = %d, want 42", len(grid))
	}
	if !grid[0].Equal(date(2025, time.February, 23)) || !grid[41].Equal(date(2025, time.April, 5)) {
		t.Fatalf("grid spans %s..%s", grid[0], grid[41])
	}
}

func TestTasksOnUsesLocalDate(t *testing.T) {
	day := date(2025, time.March, 4)
	tasks := []task.Task{
		{ID: "morning", DueAt: at(day, 1)},
		{ID: "evening", DueAt: at(day, 23)},
		{ID: "next", DueAt: at(day, 24)},
		{ID: "none"},
	}
	got := TasksOn(tasks, day)
	if len(got) != 2 || got[0].ID != "morning" || got[1].ID != "evening" {
		t.Fatalf("TasksOn = %+v", got)
	}
}

func TestShiftMonthClampsDay(t *testing.T) {
	tests := []struct {
		from time.Time
		n    int
		want time.Time
	}{
		{from: date(2025, time.January, 31), n: 1, want: date(2025, time.February, 28)},
		{from: date(2024, time.January, 31), n: 1, want: date(2024, time.February, 29)},
		{from: date(2025, time.March, 31), n: -1, want: date(2025, time.February, 28)},
		{from: date(2025, time.December, 15), n: 1, want: date(2026, time.January, 15)},
	}
	for _, tt := range tests {
		if got := ShiftMonth(tt.from, tt.n); !got.Equal(tt.want) {
			t.Errorf("ShiftMonth(%s, %d) = %s, want %s", tt.from.Format("2006-01-02"), tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestEnterOnEmptyDayRequestsCreateWithDue(t *testing.T) {
	today := date(2025, time.March, 4)
	m := newModel(today)
	cmd := m.Update(press("enter"), nil)
	msg, ok := cmd().(events.NewTaskMsg)
	if !ok || msg.Due == nil || !task.SameDay(*msg.Due, today) {
		t.Fatalf("intent = %#v", cmd())
	}
}

func TestEnterOnFocusedChipEditsOnly(t *testing.T) {
	today := date(2025, time.March, 4)
	m := newModel(today)
	tasks := []task.Task{
		{ID: "a", Title: "A", DueAt: at(today, 9)},
		{ID: "b", Title: "B", DueAt: at(today, 10)},
	}
	m.Update(press("tab"), tasks)
	m.Update(press("tab"), tasks)
	if m.FocusedChip() != 1 {
		t.Fatalf("chip = %d", m.FocusedChip())
	}
	msg := m.Update(press("enter"), tasks)()
	edit, ok := msg.(events.EditTaskMsg)
	if !ok || edit.Task.ID != "b" {
		t.Fatalf("intent = %#v", msg)
	}
	m.Update(press("tab"), tasks)
	if m.FocusedChip() != -1 {
		t.Fatalf("tab past the last chip should return to the day, got %d", m.FocusedChip())
	}
}

func TestMonthNavigationAndToday(t *testing.T) {
	today := date(2025, time.January, 31)
	m := newModel(today)
	m.Update(press("]"), nil)
	if !m.Cursor().Equal(date(2025, time.February, 28)) {
		t.Fatalf("cursor = %s", m.Cursor())
	}
	m.Update(press("["), nil)
	m.Update(press("["), nil)
	if !m.Cursor().Equal(date(2024, time.December, 28)) {
		t.Fatalf("cursor = %s", m.Cursor())
	}
	m.Update(press("t"), nil)
	if !m.Cursor().Equal(today) {
		t.Fatalf("t did not return to today: %s", m.Cursor())
	}
}

func TestViewCapsChips(t *testing.T) {
	today := date(2025, time.March, 4)
	m := newModel(today)
	var tasks []task.Task
	for _, id := range []string{"one", "two", "three", "four", "five"} {
		tasks = append(tasks, task.Task{ID: id, Title: id, DueAt: at(today, 12)})
	}
	view := uiutil.StripANSI(m.View(tasks, true))
	if !strings.Contains(view, "+2 more") {
		t.Fatalf("view missing overflow marker:\n%s", view)
	}
	if strings.Contains(view, "• four") {
		t.Fatalf("fourth chip rendered:\n%s", view)
	}
	if !strings.Contains(view, "March 2025") {
		t.Fatalf("missing month title")
	}
}
