package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/review"
	"tableflip.dev/planner/pkg/tui/theme"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

type fakeAPI struct {
	interpretErr error
	items        []interpretation.Item
	page         interpretation.Page
	approved     []string
}

func (f *fakeAPI) Interpret(ctx context.Context, text string) (interpretation.Response, error) {
	if f.interpretErr != nil {
		return interpretation.Response{}, f.interpretErr
	}
	return interpretation.Response{Interpretation: interpretation.Interpretation{
		ID:               "int-1",
		InputText:        text,
		StructuredResult: interpretation.StructuredResult{Title: "Submit report", Type: interpretation.TypeTodo},
	}}, nil
}

func (f *fakeAPI) ListInterpretations(ctx context.Context, limit, offset int) (interpretation.Page, error) {
	return f.page, nil
}

func (f *fakeAPI) GetInterpretation(ctx context.Context, id string) (interpretation.Interpretation, error) {
	for _, in := range f.page.Interpretations {
		if in.ID == id {
			return in, nil
		}
	}
	return interpretation.Interpretation{}, errors.New("not found")
}

func (f *fakeAPI) ListItems(ctx context.Context, id string) ([]interpretation.Item, error) {
	return f.items, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id string, data interpretation.Data) (interpretation.Item, error) {
	return interpretation.Item{ID: id, Status: interpretation.ItemPending, Data: data}, nil
}

func (f *fakeAPI) ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error) {
	f.approved = append(f.approved, id)
	return "task-" + id, nil
}

func press(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "ctrl+r":
		return tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: []rune(k)[0], Text: k}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		k := string(r)
		if k == " " {
			k = "space"
		}
		m.Update(press(k))
	}
}

// run executes cmd and feeds every resulting message back to the controller.
func run(ctl *review.Controller, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(ctl, c)
		}
		return
	}
	follow, _ := ctl.Update(msg)
	run(ctl, follow)
}

func setup(api *fakeAPI) (*review.Controller, *Model) {
	ctl := review.New(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := New(ctl, theme.Default())
	m.SetSize(90, 40)
	m.Focus()
	return ctl, m
}

func TestSubmitShowsPendingThenAnswer(t *testing.T) {
	api := &fakeAPI{items: []interpretation.Item{
		{ID: "i1", Status: interpretation.ItemPending, ResourceType: interpretation.ResourceTask, Data: interpretation.Data{"title": "Submit report"}},
	}}
	ctl, m := setup(api)
	typeText(m, "submit the report")
	cmd := m.Update(press("enter"))
	if cmd == nil {
		t.Fatalf("submit produced no command")
	}
	if view := uiutil.StripANSI(m.View()); !strings.Contains(view, "(sending…)") {
		t.Fatalf("pending message not shown:\n%s", view)
	}
	run(ctl, cmd)
	view := uiutil.StripANSI(m.View())
	for _, want := range []string{"Assistant", "Submit report", "Suggestions (1)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFailedMessageStaysVisible(t *testing.T) {
	ctl, m := setup(&fakeAPI{interpretErr: errors.New("boom")})
	typeText(m, "hello")
	run(ctl, m.Update(press("enter")))
	view := uiutil.StripANSI(m.View())
	if !strings.Contains(view, "hello") || !strings.Contains(view, "(failed)") {
		t.Fatalf("failed message not rendered:\n%s", view)
	}
}

func TestEditAndApproveItem(t *testing.T) {
	api := &fakeAPI{items: []interpretation.Item{
		{ID: "i1", Status: interpretation.ItemPending, ResourceType: interpretation.ResourceTask, Data: interpretation.Data{"title": "Draft"}},
	}}
	ctl, m := setup(api)
	run(ctl, ctl.LoadItems("int-1"))

	m.Update(press("tab"))
	m.Update(press("e"))
	if !m.Capturing() {
		t.Fatalf("edit input not active")
	}
	typeText(m, "ed")
	m.Update(press("enter"))
	if got := ctl.Draft("i1").Title(); got != "Drafted" {
		t.Fatalf("draft title = %q", got)
	}

	run(ctl, m.Update(press("a")))
	if len(api.approved) != 1 {
		t.Fatalf("approve not sent")
	}
	item, _ := ctl.Item("i1")
	if item.Status != interpretation.ItemCreated {
		t.Fatalf("item status = %q", item.Status)
	}
	if view := uiutil.StripANSI(m.View()); !strings.Contains(view, "[created]") {
		t.Fatalf("created state not shown:\n%s", view)
	}
}

func TestHistoryPickerOpensInterpretation(t *testing.T) {
	api := &fakeAPI{
		page: interpretation.Page{Total: 1, Interpretations: []interpretation.Interpretation{
			{ID: "old", InputText: "book a meeting room", StructuredResult: interpretation.StructuredResult{Title: "Book room"}},
		}},
		items: []interpretation.Item{{ID: "i9", Status: interpretation.ItemPending, Data: interpretation.Data{"title": "Book room"}}},
	}
	ctl, m := setup(api)
	run(ctl, m.Update(press("ctrl+r")))
	if view := uiutil.StripANSI(m.View()); !strings.Contains(view, "book a meeting room") {
		t.Fatalf("history not listed:\n%s", view)
	}
	run(ctl, m.Update(press("enter")))
	if ctl.Active() != "old" || len(ctl.Items()) != 1 {
		t.Fatalf("active=%q items=%d", ctl.Active(), len(ctl.Items()))
	}
}
