// Package printers renders tasks and interpretations for the command line.
package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/planner/pkg/task"
)

// PrettyPrint writes colored, human readable output.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " %s\n", noun)
	default:
		_, _ = c.Fprintf(pp.out(), " %ss\n", noun)
	}
}

// StatusBadge returns the colored label for a status.
func StatusBadge(s task.Status) string {
	switch s {
	case task.StatusTodo:
		return color.New(color.FgWhite).Sprint("todo")
	case task.StatusInProgress:
		return color.New(color.FgYellow, color.Bold).Sprint("in progress")
	case task.StatusDone:
		return color.New(color.FgGreen).Sprint("done")
	default:
		return color.New(color.Faint).Sprint(string(s))
	}
}

// Tasks prints one row per task.
func (pp *PrettyPrint) Tasks(tasks ...task.Task) {
	if len(tasks) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	ai := color.New(color.FgMagenta)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, t := range tasks {
		title := t.Title
		if t.Source == task.SourceAI {
			title += " " + ai.Sprint("✦")
		}
		row := []any{StatusBadge(t.Status), title, task.FormatDate(t.DueAt)}
		if pp.ShowID {
			row = append([]any{y.Sprint(t.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Task prints every field of one task.
func (pp *PrettyPrint) Task(t task.Task) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 70
	tbl.AddRow(bold.Sprint("ID"), t.ID)
	tbl.AddRow(bold.Sprint("Title"), t.Title)
	tbl.AddRow(bold.Sprint("Status"), StatusBadge(t.Status))
	if due := task.FormatDate(t.DueAt); due != "" {
		tbl.AddRow(bold.Sprint("Due"), due)
	}
	if d := strings.TrimSpace(t.DescriptionText()); d != "" {
		tbl.AddRow(bold.Sprint("Description"), d)
	}
	if t.Source != "" {
		tbl.AddRow(bold.Sprint("Source"), string(t.Source))
	}
	if !t.CreatedAt.IsZero() {
		tbl.AddRow(bold.Sprint("Created"), t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !t.UpdatedAt.IsZero() {
		tbl.AddRow(bold.Sprint("Updated"), t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}
