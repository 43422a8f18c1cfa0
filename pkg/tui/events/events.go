package events

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/task"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// NewTaskMsg asks the root model to open the create form, optionally with a
// pre-filled due date (calendar day cells).
type NewTaskMsg struct {
	Component ComponentID
	Due       *time.Time
}

// Describe renders the request for logs.
func (m NewTaskMsg) Describe() string {
	return fmt.Sprintf(`component:%q due:%q`, m.Component, task.FormatDate(m.Due))
}

// NewTaskCmd wraps NewTaskMsg in a tea.Cmd.
func NewTaskCmd(component ComponentID, due *time.Time) tea.Cmd {
	return func() tea.Msg {
		return NewTaskMsg{Component: component, Due: due}
	}
}

// EditTaskMsg asks the root model to open the edit form for a task.
type EditTaskMsg struct {
	Component ComponentID
	Task      task.Task
}

// Describe renders the request for logs.
func (m EditTaskMsg) Describe() string {
	return fmt.Sprintf(`component:%q id:%q title:%q`, m.Component, m.Task.ID, m.Task.Title)
}

// EditTaskCmd wraps EditTaskMsg in a tea.Cmd.
func EditTaskCmd(component ComponentID, t task.Task) tea.Cmd {
	return func() tea.Msg {
		return EditTaskMsg{Component: component, Task: t}
	}
}

// DeleteTaskMsg asks for a task to be deleted. The root model confirms with
// the user before anything is sent.
type DeleteTaskMsg struct {
	Component ComponentID
	Task      task.Task
}

// Describe renders the request for logs.
func (m DeleteTaskMsg) Describe() string {
	return fmt.Sprintf(`component:%q id:%q title:%q`, m.Component, m.Task.ID, m.Task.Title)
}

// DeleteTaskCmd wraps DeleteTaskMsg in a tea.Cmd.
func DeleteTaskCmd(component ComponentID, t task.Task) tea.Cmd {
	return func() tea.Msg {
		return DeleteTaskMsg{Component: component, Task: t}
	}
}

// StatusChangeMsg requests a status-only patch.
type StatusChangeMsg struct {
	Component ComponentID
	ID        string
	Status    task.Status
}

// Describe renders the request for logs.
func (m StatusChangeMsg) Describe() string {
	return fmt.Sprintf(`component:%q id:%q status:%q`, m.Component, m.ID, m.Status)
}

// StatusChangeCmd wraps StatusChangeMsg in a tea.Cmd.
func StatusChangeCmd(component ComponentID, id string, status task.Status) tea.Cmd {
	return func() tea.Msg {
		return StatusChangeMsg{Component: component, ID: id, Status: status}
	}
}

// PatchTaskMsg carries an inline edit from the list view.
type PatchTaskMsg struct {
	Component ComponentID
	ID        string
	Patch     task.Patch
}

// Describe renders the request for logs.
func (m PatchTaskMsg) Describe() string {
	return fmt.Sprintf(`component:%q id:%q`, m.Component, m.ID)
}

// PatchTaskCmd wraps PatchTaskMsg in a tea.Cmd.
func PatchTaskCmd(component ComponentID, id string, p task.Patch) tea.Cmd {
	return func() tea.Msg {
		return PatchTaskMsg{Component: component, ID: id, Patch: p}
	}
}

// TaskCreatedMsg announces that a task was created outside the board, for
// example by approving an interpretation item.
type TaskCreatedMsg struct {
	Component ComponentID
	TaskID    string
	ItemID    string
}

// Describe renders the announcement for logs.
func (m TaskCreatedMsg) Describe() string {
	return fmt.Sprintf(`component:%q task:%q item:%q`, m.Component, m.TaskID, m.ItemID)
}

// TaskCreatedCmd wraps TaskCreatedMsg in a tea.Cmd.
func TaskCreatedCmd(component ComponentID, taskID, itemID string) tea.Cmd {
	return func() tea.Msg {
		return TaskCreatedMsg{Component: component, TaskID: taskID, ItemID: itemID}
	}
}

// NotifyLevel grades a transient notification.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifySuccess NotifyLevel = "success"
	NotifyError   NotifyLevel = "error"
)

// NotifyMsg shows a transient toast.
type NotifyMsg struct {
	Component ComponentID
	Level     NotifyLevel
	Text      string
}

// Describe implements the logging helper.
func (m NotifyMsg) Describe() string {
	return fmt.Sprintf(`component:%q level:%q text:%q`, m.Component, m.Level, m.Text)
}

// NotifyCmd wraps NotifyMsg in a tea.Cmd.
func NotifyCmd(component ComponentID, level NotifyLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg{Component: component, Level: level, Text: text}
	}
}

// FocusMsg indicates a component just gained focus.
type FocusMsg struct {
	Component ComponentID
}

// Describe implements the logging helper.
func (m FocusMsg) Describe() string {
	return fmt.Sprintf(`component:%q state:"focus"`, m.Component)
}

// BlurMsg indicates a component just lost focus.
type BlurMsg struct {
	Component ComponentID
}

// Describe implements the logging helper.
func (m BlurMsg) Describe() string {
	return fmt.Sprintf(`component:%q state:"blur"`, m.Component)
}

// FocusCmd wraps a FocusMsg in a tea.Cmd helper.
func FocusCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return FocusMsg{Component: component}
	}
}

// BlurCmd wraps a BlurMsg in a tea.Cmd helper.
func BlurCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return BlurMsg{Component: component}
	}
}

// DebugMsg captures optional diagnostic notes emitted by components.
type DebugMsg struct {
	Component ComponentID
	Context   string
	Detail    string
}

// Describe renders the debug message in a human readable format.
func (m DebugMsg) Describe() string {
	return fmt.Sprintf(`component:%q context:%q detail:%q`, m.Component, m.Context, m.Detail)
}

// DebugCmd wraps DebugMsg creation in a tea.Cmd helper.
func DebugCmd(component ComponentID, context, detail string) tea.Cmd {
	return func() tea.Msg {
		return DebugMsg{Component: component, Context: context, Detail: detail}
	}
}

// Describer is implemented by every message above.
type Describer interface {
	Describe() string
}
