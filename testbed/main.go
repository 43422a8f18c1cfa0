package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/tui/components/eventviewer"
	"tableflip.dev/planner/pkg/tui/events"
)

const harness events.ComponentID = "testbed"

type options struct {
	full   bool
	width  int
	height int
	tasks  int
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "testbed",
		Short: "Preview planner components against sample tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, "kanban")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.full, "full", false, "use the full terminal window")
	rootCmd.PersistentFlags().IntVar(&opts.width, "width", 100, "window width when not fullscreen")
	rootCmd.PersistentFlags().IntVar(&opts.height, "height", 24, "window height when not fullscreen")
	rootCmd.PersistentFlags().IntVar(&opts.tasks, "tasks", 0, "number of generated tasks to add to the fixed samples")

	for _, name := range previewNames() {
		rootCmd.AddCommand(newPreviewCmd(&opts, name))
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// testbedModel frames a component in the middle of the screen and docks the
// event log underneath it.
type testbedModel struct {
	fullscreen bool
	maxWidth   int
	maxHeight  int

	termWidth  int
	termHeight int

	focused bool

	events *eventviewer.Model

	frameWidth  int
	frameHeight int
	innerWidth  int
	innerHeight int
	eventHeight int
	layoutDirty bool
}

func newTestbedModel(opts options) testbedModel {
	return testbedModel{
		fullscreen:  opts.full,
		maxWidth:    opts.width,
		maxHeight:   opts.height,
		focused:     true,
		events:      eventviewer.NewModel(400),
		layoutDirty: true,
	}
}

// update handles the messages every preview shares. It reports whether the
// message was consumed.
func (m *testbedModel) update(msg tea.Msg) (tea.Cmd, bool) {
	m.events.Record(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.layoutDirty = true
		m.ensureLayout()
		return events.DebugCmd(harness, "layout", fmt.Sprintf("frame=%dx%d events=%d", m.frameWidth, m.frameHeight, m.eventHeight)), true
	case events.FocusMsg:
		m.focused = true
		return nil, true
	case events.BlurMsg:
		m.focused = false
		return nil, true
	}
	return nil, false
}

func (m *testbedModel) toggleFocus(component events.ComponentID) tea.Cmd {
	if m.focused {
		return events.BlurCmd(component)
	}
	return events.FocusCmd(component)
}

func (m *testbedModel) composeView(content string) string {
	if m.termWidth == 0 || m.termHeight == 0 {
		return "Resizing…"
	}
	m.ensureLayout()

	frame := m.placeFrame(m.renderFrame(content))
	if m.eventHeight == 0 {
		return frame
	}
	gap := strings.Repeat(" ", m.termWidth)
	return lipgloss.JoinVertical(lipgloss.Left, frame, gap, m.events.View())
}

func (m *testbedModel) renderFrame(content string) string {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	if m.focused {
		border = border.BorderForeground(lipgloss.Color("#39FF14"))
	}
	inner := lipgloss.NewStyle().
		Width(m.innerWidth).
		Height(m.innerHeight).
		MaxHeight(m.innerHeight).
		Align(lipgloss.Left, lipgloss.Top).
		Render(content)
	return border.Render(inner)
}

func (m *testbedModel) placeFrame(frame string) string {
	height := max(1, m.termHeight-m.eventHeight-frameGap)
	return lipgloss.Place(m.termWidth, height, lipgloss.Center, lipgloss.Top, frame)
}

func (m *testbedModel) contentSize() (int, int) {
	m.ensureLayout()
	return m.innerWidth, m.innerHeight
}

func (m *testbedModel) ensureLayout() {
	if m.termWidth == 0 || m.termHeight == 0 || !m.layoutDirty {
		return
	}

	eventHeight := m.computeEventHeight()
	frameSpace := max(minFrameHeight, m.termHeight-eventHeight-frameGap)

	width := clamp(m.maxWidth, 20, m.termWidth-4)
	height := clamp(m.maxHeight, minFrameHeight, frameSpace)
	if m.fullscreen {
		width = max(20, m.termWidth)
		height = frameSpace
	}

	m.frameWidth = width
	m.frameHeight = height
	m.innerWidth = max(1, width-2)
	m.innerHeight = max(1, height-2)
	m.eventHeight = eventHeight
	m.layoutDirty = false

	if eventHeight > 0 {
		m.events.SetSize(m.termWidth, eventHeight)
	}
}

func (m *testbedModel) computeEventHeight() int {
	available := m.termHeight - minFrameHeight - frameGap
	if available < minEventHeight {
		return 0
	}
	return min(clamp(m.termHeight/4, minEventHeight, maxEventHeight), available)
}

func clamp(value, lo, hi int) int {
	if hi <= 0 {
		return lo
	}
	return max(lo, min(value, hi))
}

const (
	minFrameHeight = 12
	minEventHeight = 5
	maxEventHeight = 12
	frameGap       = 1
)
