package teaui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
)

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.shutdown()
		*cmds = append(*cmds, tea.Quit)
		return
	}

	switch {
	case m.form.IsOpen():
		m.handleFormKey(msg, cmds)
	case m.confirm != nil:
		m.handleConfirmKey(msg, cmds)
	case m.helpOpen:
		m.handleHelpKey(msg, cmds)
	case m.loginRequired:
		m.handleLoginKey(msg, cmds)
	case m.sidebarOpen && !m.policy.Wide(m.width):
		m.handleSidebarKey(msg, cmds)
	default:
		m.handleNormalKey(msg, cmds)
	}
}

func (m *Model) handleFormKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if cmd := m.formView.Update(msg); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	if cmd := m.formView.Sync(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.confirm.ID
		m.confirm = nil
		*cmds = append(*cmds, m.board.Remove(id))
	case "n", "N", "esc", "q":
		m.confirm = nil
	}
}

func (m *Model) handleHelpKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.helpOpen = false
		return
	}
	if cmd := m.help.Update(msg); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleLoginKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "q":
		m.shutdown()
		*cmds = append(*cmds, tea.Quit)
	case "r", "enter":
		m.resume(cmds)
	}
}

func (m *Model) handleSidebarKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.sidebarOpen = false
		return
	}
	if cmd := m.sidebar.Update(msg); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// capturing reports whether the active view owns every key, for example
// while a text field has focus.
func (m *Model) capturing() bool {
	switch m.mode {
	case modeList:
		return m.list.Capturing()
	case modeAI:
		return m.chat.Capturing()
	}
	return false
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if !m.capturing() {
		switch key := msg.String(); key {
		case "q":
			m.shutdown()
			*cmds = append(*cmds, tea.Quit)
			return
		case "?":
			m.helpOpen = true
			return
		case "b":
			m.sidebarOpen = !m.sidebarOpen
			m.applySizes()
			return
		case "1", "2", "3", "4":
			m.switchMode(viewMode(key[0]-'1'), cmds)
			return
		case "r":
			if m.mode != modeAI {
				*cmds = append(*cmds, m.board.Load())
				return
			}
		case "x":
			m.board.ClearErr()
			m.review.ClearErr()
			return
		}
	}

	var cmd tea.Cmd
	tasks := m.board.Tasks()
	switch m.mode {
	case modeKanban:
		cmd = m.kanban.Update(msg, tasks)
	case modeList:
		cmd = m.list.Update(msg, tasks)
	case modeCalendar:
		cmd = m.calendar.Update(msg, tasks)
	case modeAI:
		cmd = m.chat.Update(msg)
	}
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}
