package main

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/components/calendar"
	"tableflip.dev/planner/pkg/tui/components/kanban"
	"tableflip.dev/planner/pkg/tui/components/list"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/theme"
)

// taskView is the shape shared by the kanban, list and calendar views.
type taskView interface {
	SetSize(width, height int)
	Update(msg tea.KeyPressMsg, tasks []task.Task) tea.Cmd
	View(tasks []task.Task, focused bool) string
}

type capturer interface {
	Capturing() bool
}

var previews = map[string]struct {
	short string
	build func(theme.Theme) (taskView, events.ComponentID)
}{
	"kanban": {
		short: "Preview the kanban board",
		build: func(th theme.Theme) (taskView, events.ComponentID) { return kanban.New(th.Board), kanban.Component },
	},
	"list": {
		short: "Preview the list view with inline editing",
		build: func(th theme.Theme) (taskView, events.ComponentID) { return list.New(th.Board), list.Component },
	},
	"calendar": {
		short: "Preview the month calendar",
		build: func(th theme.Theme) (taskView, events.ComponentID) {
			return calendar.New(th.Calendar), calendar.Component
		},
	},
}

func previewNames() []string {
	names := make([]string, 0, len(previews))
	for name := range previews {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newPreviewCmd(opts *options, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: previews[name].short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(*opts, name)
		},
	}
}

func runPreview(opts options, name string) error {
	p, ok := previews[name]
	if !ok {
		return fmt.Errorf("unknown preview %q", name)
	}
	view, component := p.build(theme.Default())
	model := &previewModel{
		testbedModel: newTestbedModel(opts),
		view:         view,
		component:    component,
		tasks:        sampleTasks(time.Now(), opts.tasks),
	}
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// previewModel drives one task view. Intents the view emits are applied to
// the in-memory tasks so the preview behaves like the real board.
type previewModel struct {
	testbedModel
	view      taskView
	component events.ComponentID
	tasks     []task.Task
	created   int
}

func (m *previewModel) Init() tea.Cmd { return events.FocusCmd(m.component) }

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.testbedModel.update(msg)
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		m.view.SetSize(m.contentSize())
	}
	if handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case events.StatusChangeMsg:
		m.apply(msg.ID, task.StatusPatch(msg.Status))
	case events.PatchTaskMsg:
		m.apply(msg.ID, msg.Patch)
	case events.DeleteTaskMsg:
		m.remove(msg.Task.ID)
	case events.NewTaskMsg:
		m.create(msg.Due)
	case events.EditTaskMsg:
		return m, events.NotifyCmd(harness, events.NotifyInfo, "the edit form is not part of this preview")
	}
	return m, nil
}

func (m *previewModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	capturing := false
	if c, ok := m.view.(capturer); ok {
		capturing = c.Capturing()
	}
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q":
		if !capturing {
			return tea.Quit
		}
	case "ctrl+t":
		return m.toggleFocus(m.component)
	}
	if !m.focused {
		return nil
	}
	return m.view.Update(msg, m.tasks)
}

func (m *previewModel) View() string {
	return m.composeView(m.view.View(m.tasks, m.focused))
}

func (m *previewModel) apply(id string, p task.Patch) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks[i] = p.Apply(t)
			return
		}
	}
}

func (m *previewModel) remove(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

func (m *previewModel) create(due *time.Time) {
	m.created++
	now := time.Now()
	m.tasks = append(m.tasks, task.Task{
		ID:        fmt.Sprintf("new-%d", m.created),
		Title:     fmt.Sprintf("New task %d", m.created),
		Status:    task.StatusTodo,
		Source:    task.SourceManual,
		DueAt:     due,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
