package list

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
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: []rune(k)[0], Text: k}
}

func typeText(m *Model, tasks []task.Task, s string) {
	for _, r := range s {
		m.Update(press(string(r)), tasks)
	}
}

func sample() []task.Task {
	desc := "quarterly numbers"
	due := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.Local)
	return []task.Task{
		{ID: "1", Title: "Write report", Description: &desc, DueAt: &due, Status: task.StatusTodo},
		{ID: "2", Title: "Review PR", Status: task.StatusInProgress},
		{ID: "3", Title: "Ship release", Status: task.StatusDone},
	}
}

func newModel() *Model {
	m := New(theme.Default().Board)
	m.SetSize(120, 20)
	return m
}

func TestInlineSaveSendsPatchWithoutStatus(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("enter"), tasks)
	if m.EditingID() != "1" {
		t.Fatalf("editing = %q", m.EditingID())
	}
	typeText(m, tasks, "!")
	cmd := m.Update(press("enter"), tasks)
	if cmd == nil {
		t.Fatalf("save produced no intent")
	}
	msg, ok := cmd().(events.PatchTaskMsg)
	if !ok || msg.ID != "1" {
		t.Fatalf("intent = %#v", cmd())
	}
	if msg.Patch.Title == nil || *msg.Patch.Title != "Write report!" {
		t.Fatalf("patch title = %v", msg.Patch.Title)
	}
	if msg.Patch.Status != nil || msg.Patch.Description != nil || msg.Patch.DueAt != nil {
		t.Fatalf("patch carries unchanged fields: %+v", msg.Patch)
	}
	if m.EditingID() != "" {
		t.Fatalf("edit still open after save")
	}
}

func TestClearingDescriptionSendsNull(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("enter"), tasks)
	m.Update(press("tab"), tasks)
	for range "quarterly numbers" {
		m.Update(press("backspace"), tasks)
	}
	msg := m.Update(press("enter"), tasks)().(events.PatchTaskMsg)
	if !msg.Patch.ClearDescription {
		t.Fatalf("patch = %+v", msg.Patch)
	}
}

func TestEditingAnotherRowReseeds(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("enter"), tasks)
	typeText(m, tasks, " draft")
	m.Update(press("down"), tasks)
	if m.EditingID() != "2" {
		t.Fatalf("editing = %q, want 2", m.EditingID())
	}
	if got := m.inputs[fieldTitle].Value(); got != "Review PR" {
		t.Fatalf("buffer = %q, want the new row's title", got)
	}
}

func TestBlankTitleKeepsEditOpen(t *testing.T) {
	m := newModel()
	tasks := []task.Task{{ID: "1", Title: "ab", Status: task.StatusTodo}}
	m.Update(press("enter"), tasks)
	m.Update(press("backspace"), tasks)
	m.Update(press("backspace"), tasks)
	if cmd := m.Update(press("enter"), tasks); cmd != nil {
		t.Fatalf("blank title emitted %#v", cmd())
	}
	if m.EditingID() != "1" || m.editErr == "" {
		t.Fatalf("editing=%q err=%q", m.EditingID(), m.editErr)
	}
}

func TestCancelDiscardsBuffers(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("enter"), tasks)
	typeText(m, tasks, "xyz")
	m.Update(press("esc"), tasks)
	if m.EditingID() != "" || m.inputs[fieldTitle].Value() != "" {
		t.Fatalf("cancel kept state: %q %q", m.EditingID(), m.inputs[fieldTitle].Value())
	}
}

func TestStatusSelectorEmitsStatusChange(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("j"), tasks)
	msg, ok := m.Update(press("space"), tasks)().(events.StatusChangeMsg)
	if !ok || msg.ID != "2" || msg.Status != task.StatusDone {
		t.Fatalf("intent = %#v", msg)
	}
}

func TestFilterNarrowsRowsOnly(t *testing.T) {
	m := newModel()
	tasks := sample()
	m.Update(press("/"), tasks)
	typeText(m, tasks, "rvw")
	m.Update(press("enter"), tasks)
	rows := m.Visible(tasks)
	if len(rows) != 1 || rows[0].ID != "2" {
		t.Fatalf("visible = %+v", rows)
	}
	if len(tasks) != 3 {
		t.Fatalf("filter changed the collection")
	}
	del, ok := m.Update(press("d"), tasks)().(events.DeleteTaskMsg)
	if !ok || del.Task.ID != "2" {
		t.Fatalf("delete targets %q", del.Task.ID)
	}
}

func TestViewEmptyState(t *testing.T) {
	m := newModel()
	view := uiutil.StripANSI(m.View(nil, true))
	if !strings.Contains(view, "No tasks yet") {
		t.Fatalf("view = %q", view)
	}
}
