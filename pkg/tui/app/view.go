package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/layout"
	"tableflip.dev/planner/pkg/tui/overlay"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

// View renders the whole screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting planner…"
	}
	if m.loginRequired {
		return m.loginView()
	}

	frame := m.policy.Compute(m.width, m.bodyHeight(), m.sidebarOpen)
	main := lipgloss.NewStyle().Width(frame.MainWidth).Height(frame.Height).MaxHeight(frame.Height).
		Render(m.mainView())
	body := main
	if frame.Sidebar == layout.Docked {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	}

	screen := strings.Join([]string{body, m.statusLine(), m.footer()}, "\n")

	if frame.Sidebar == layout.Overlay {
		screen = overlay.Compose(screen, m.width, m.height, m.sidebar.View(), overlay.Placement{Anchor: overlay.Left})
	}
	switch {
	case m.form.IsOpen():
		screen = overlay.Compose(screen, m.width, m.height, m.formView.View(), overlay.Placement{})
	case m.confirm != nil:
		screen = overlay.Compose(screen, m.width, m.height, m.confirmView(), overlay.Placement{})
	case m.helpOpen:
		screen = overlay.Compose(screen, m.width, m.height, m.help.View(), overlay.Placement{})
	}
	return screen
}

func (m *Model) mainView() string {
	if m.mode != modeAI && m.board.Loading() {
		return m.theme.Board.Muted.Render("Loading tasks…")
	}
	tasks := m.board.Tasks()
	focused := !(m.sidebarOpen && !m.policy.Wide(m.width))
	switch m.mode {
	case modeList:
		return m.list.View(tasks, focused)
	case modeCalendar:
		return m.calendar.View(tasks, focused)
	case modeAI:
		return m.chat.View()
	default:
		return m.kanban.View(tasks, focused)
	}
}

// statusLine shows the current error banner, or the latest notification.
func (m *Model) statusLine() string {
	banner := m.board.Err()
	if r := m.review.Err(); r != "" && (banner == "" || m.mode == modeAI) {
		banner = r
	}
	if banner != "" {
		return m.theme.Banner.Render(uiutil.Truncate(banner+"  (x to dismiss)", max(m.width-2, 1)))
	}
	if m.toast == nil {
		return ""
	}
	style := m.theme.Toast.Info
	switch m.toast.level {
	case events.NotifySuccess:
		style = m.theme.Toast.Success
	case events.NotifyError:
		style = m.theme.Toast.Error
	}
	return style.Render(uiutil.Truncate(m.toast.text, max(m.width-2, 1)))
}

var modeHints = map[viewMode][][2]string{
	modeKanban:   {{"h/l", "column"}, {"j/k", "card"}, {"n", "new"}, {"e", "edit"}, {"s", "status"}, {"d", "delete"}},
	modeList:     {{"j/k", "row"}, {"enter", "inline edit"}, {"e", "form"}, {"/", "filter"}, {"s", "status"}, {"d", "delete"}},
	modeCalendar: {{"h/j/k/l", "day"}, {"[ ]", "month"}, {"t", "today"}, {"tab", "task"}, {"enter", "open"}},
	modeAI:       {{"enter", "send"}, {"esc", "leave input"}, {"tab", "suggestions"}, {"ctrl+r", "history"}},
}

func (m *Model) footer() string {
	th := m.theme.Footer
	var parts []string
	for _, h := range modeHints[m.mode] {
		parts = append(parts, th.Key.Render(h[0])+" "+th.Help.Render(h[1]))
	}
	parts = append(parts,
		th.Key.Render("1-4")+" "+th.Help.Render("views"),
		th.Key.Render("b")+" "+th.Help.Render("sidebar"),
		th.Key.Render("?")+" "+th.Help.Render("help"),
		th.Key.Render("q")+" "+th.Help.Render("quit"),
	)
	left := strings.Join(parts, th.Help.Render(" · "))
	right := th.Status.Render(fmt.Sprintf("%s · %d tasks", m.mode, len(m.board.Tasks())))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return uiutil.Truncate(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) confirmView() string {
	th := m.theme.Modal
	title := uiutil.Truncate(m.confirm.Title, 40)
	body := []string{
		th.Title.Render("Delete task"),
		"",
		th.Body.Render(fmt.Sprintf("Delete %q? This cannot be undone.", title)),
		"",
		m.theme.Footer.Key.Render("y") + " delete  " + m.theme.Footer.Key.Render("n") + " cancel",
	}
	return th.Frame.Render(strings.Join(body, "\n"))
}

func (m *Model) loginView() string {
	th := m.theme.Modal
	body := []string{
		th.Title.Render("Signed out"),
		"",
		th.Body.Render("Your session is missing or has expired."),
		th.Body.Render("Run `planner login` in another terminal, then press r."),
		"",
		m.theme.Footer.Key.Render("r") + " retry  " + m.theme.Footer.Key.Render("q") + " quit",
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, th.Frame.Render(strings.Join(body, "\n")))
}
