package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/planner/pkg/task"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer   FooterTheme
	Panel    PanelTheme
	Board    BoardTheme
	Calendar CalendarTheme
	Chat     ChatTheme
	Modal    ModalTheme
	Banner   lipgloss.Style
	Toast    ToastTheme
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Key    lipgloss.Style
}

// PanelTheme styles framed panels and headings, including the sidebar.
type PanelTheme struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
}

// BoardTheme styles kanban columns, cards and list rows.
type BoardTheme struct {
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	Header        lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	Muted         lipgloss.Style
	Editing       lipgloss.Style
	Todo          lipgloss.Style
	InProgress    lipgloss.Style
	Done          lipgloss.Style
	Other         lipgloss.Style
}

// Status returns the badge style for a task status.
func (b BoardTheme) Status(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusTodo:
		return b.Todo
	case task.StatusInProgress:
		return b.InProgress
	case task.StatusDone:
		return b.Done
	default:
		return b.Other
	}
}

// CalendarTheme styles the month grid.
type CalendarTheme struct {
	Header       lipgloss.Style
	Day          lipgloss.Style
	OutsideMonth lipgloss.Style
	Today        lipgloss.Style
	Selected     lipgloss.Style
	Chip         lipgloss.Style
	ChipFocused  lipgloss.Style
	More         lipgloss.Style
}

// ChatTheme styles the assistant transcript and the suggestion list.
type ChatTheme struct {
	User      lipgloss.Style
	AI        lipgloss.Style
	Pending   lipgloss.Style
	Failed    lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Created   lipgloss.Style
	FieldName lipgloss.Style
}

// ModalTheme styles centered modal overlays (form, confirm, history).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Alert lipgloss.Style
}

// ToastTheme styles transient notifications by level.
type ToastTheme struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	badge := lipgloss.NewStyle().Padding(0, 1)
	card := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("240")).
		PaddingLeft(1)
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title:    lipgloss.NewStyle().Bold(true),
			Body:     lipgloss.NewStyle(),
			Active:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Inactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
		Board: BoardTheme{
			Column:        column,
			ColumnFocused: column.BorderForeground(lipgloss.Color("63")),
			Header:        lipgloss.NewStyle().Bold(true),
			Card:          card,
			CardSelected:  card.BorderForeground(lipgloss.Color("212")).Foreground(lipgloss.Color("212")),
			Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Editing:       lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
			Todo:          badge.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
			InProgress:    badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
			Done:          badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("78")),
			Other:         badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("245")),
		},
		Calendar: CalendarTheme{
			Header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
			Day:          lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
			OutsideMonth: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			Today:        lipgloss.NewStyle().Underline(true).Bold(true),
			Selected:     lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0")),
			Chip:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			ChipFocused:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212")),
			More:         lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
		Chat: ChatTheme{
			User:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			AI:        lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
			Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true),
			Item:      lipgloss.NewStyle().PaddingLeft(1),
			Selected:  lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("212")),
			Created:   lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("78")),
			FieldName: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
			Alert: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
		Banner: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1),
		Toast: ToastTheme{
			Info:    toast.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")),
			Success: toast.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("78")),
			Error:   toast.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")),
		},
	}
}
