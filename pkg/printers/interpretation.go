package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/planner/pkg/interpretation"
)

// Interpretation prints the input and the structured suggestion.
func (pp *PrettyPrint) Interpretation(in interpretation.Interpretation) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 70
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), in.ID)
	}
	tbl.AddRow(bold.Sprint("Input"), in.InputText)
	r := in.StructuredResult
	tbl.AddRow(bold.Sprint("Title"), r.Title)
	if r.Description != "" {
		tbl.AddRow(bold.Sprint("Description"), r.Description)
	}
	if r.Type != "" {
		tbl.AddRow(bold.Sprint("Type"), string(r.Type))
	}
	if m := r.Metadata; m != nil {
		if m.Priority != "" {
			tbl.AddRow(bold.Sprint("Priority"), string(m.Priority))
		}
		if d := m.DeadlineDate(); d != nil {
			tbl.AddRow(bold.Sprint("Deadline"), d.Format("2006-01-02"))
		}
		if len(m.Tags) > 0 {
			tbl.AddRow(bold.Sprint("Tags"), strings.Join(m.Tags, ", "))
		}
	}
	if in.AIModel != "" {
		tbl.AddRow(bold.Sprint("Model"), faint.Sprint(in.AIModel))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func itemState(it interpretation.Item) string {
	if it.Status == interpretation.ItemCreated {
		return color.New(color.FgGreen).Sprint("created")
	}
	return color.New(color.FgYellow).Sprint("pending")
}

// Items prints the suggestions of one interpretation.
func (pp *PrettyPrint) Items(items ...interpretation.Item) {
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " no suggestions\n\n")
		return
	}
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, it := range items {
		due := ""
		if d := it.Data.DueAt(); d != nil {
			due = d.Local().Format("2006-01-02")
		}
		row := []any{itemState(it), string(it.ResourceType), it.Data.Title(), due, strings.Join(it.Data.Tags(), ",")}
		if pp.ShowID {
			row = append([]any{y.Sprint(it.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// History prints one page of past interpretations.
func (pp *PrettyPrint) History(page interpretation.Page) {
	pp.TitleWithCount("History", page.Total, "request")
	if len(page.Interpretations) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	for _, in := range page.Interpretations {
		row := []any{faint.Sprint(in.CreatedAt.Local().Format("2006-01-02 15:04")), in.InputText, in.StructuredResult.Title}
		if pp.ShowID {
			row = append([]any{y.Sprint(in.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	if page.HasMore() {
		_, _ = faint.Fprintf(pp.out(), "more: --offset %d\n", page.Offset+len(page.Interpretations))
	}
	pp.NewLine()
}
