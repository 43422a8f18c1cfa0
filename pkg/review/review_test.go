package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/tui/events"
)

type fakeAPI struct {
	resp         interpretation.Response
	interpretErr error
	items        []interpretation.Item
	itemsErr     error
	approveErr   error
	noResource   bool
	approved     map[string]interpretation.Data
	page         interpretation.Page
}

func (f *fakeAPI) Interpret(ctx context.Context, text string) (interpretation.Response, error) {
	return f.resp, f.interpretErr
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
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	out := make([]interpretation.Item, len(f.items))
	for i, it := range f.items {
		it.Data = it.Data.Clone()
		out[i] = it
	}
	return out, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id string, data interpretation.Data) (interpretation.Item, error) {
	for _, it := range f.items {
		if it.ID == id {
			it.Data = data
			return it, nil
		}
	}
	return interpretation.Item{}, errors.New("not found")
}

func (f *fakeAPI) ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error) {
	if f.approveErr != nil {
		return "", f.approveErr
	}
	if f.approved == nil {
		f.approved = map[string]interpretation.Data{}
	}
	f.approved[id] = data
	if f.noResource {
		return "", nil
	}
	return "task-" + id, nil
}

func newController(api API) *Controller {
	return New(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// drain runs cmd and every command it batches, returning the leaf messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func sampleItems() []interpretation.Item {
	return []interpretation.Item{
		{ID: "i1", ResourceType: interpretation.ResourceTask, Status: interpretation.ItemPending,
			Data: interpretation.Data{"title": "Submit report", "tags": []any{"work"}}},
		{ID: "i2", ResourceType: interpretation.ResourceTask, Status: interpretation.ItemPending,
			Data: interpretation.Data{"title": "Book room"}},
	}
}

func loadItems(t *testing.T, c *Controller) {
	t.Helper()
	if _, ok := c.Update(c.LoadItems("int-1")()); !ok {
		t.Fatalf("items not applied")
	}
}

func TestSubmitSuccessConfirmsAndLoadsItems(t *testing.T) {
	api := &fakeAPI{
		resp: interpretation.Response{Interpretation: interpretation.Interpretation{
			ID:               "int-1",
			StructuredResult: interpretation.StructuredResult{Title: "Submit report"},
		}},
		items: sampleItems(),
	}
	c := newController(api)

	cmd, err := c.Submit("  submit the report  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if msgs := c.Messages(); len(msgs) != 1 || msgs[0].State != StatePending || msgs[0].Content != "submit the report" {
		t.Fatalf("transcript = %+v", msgs)
	}
	if _, err := c.Submit("again"); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}

	follow, ok := c.Update(cmd())
	if !ok {
		t.Fatalf("interpretation not applied")
	}
	msgs := c.Messages()
	if len(msgs) != 2 || msgs[0].State != StateConfirmed || msgs[1].Role != RoleAI {
		t.Fatalf("transcript = %+v", msgs)
	}
	if c.Active() != "int-1" {
		t.Fatalf("active = %q", c.Active())
	}
	for _, m := range drain(follow) {
		c.Update(m)
	}
	if len(c.Items()) != 2 {
		t.Fatalf("items = %+v", c.Items())
	}
	if c.Draft("i1").Title() != "Submit report" {
		t.Fatalf("draft not seeded")
	}
}

func TestSubmitFailureMarksMessageFailed(t *testing.T) {
	c := newController(&fakeAPI{interpretErr: errors.New("500")})
	cmd, _ := c.Submit("hello")
	c.Update(cmd())
	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].State != StateFailed {
		t.Fatalf("transcript = %+v", msgs)
	}
	if c.Err() != BannerInterpret || c.Submitting() {
		t.Fatalf("err=%q submitting=%v", c.Err(), c.Submitting())
	}
}

func TestSubmitRejectsEmpty(t *testing.T) {
	c := newController(&fakeAPI{})
	if _, err := c.Submit("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v", err)
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("empty input appended a message")
	}
}

func TestLoadItemsFailureKeepsPreviousItems(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	c := newController(api)
	loadItems(t, c)

	api.itemsErr = errors.New("boom")
	c.Update(c.LoadItems("int-2")())
	if len(c.Items()) != 2 || c.Err() != BannerItems {
		t.Fatalf("items=%d err=%q", len(c.Items()), c.Err())
	}
}

func TestSetFieldEmptyRemovesKey(t *testing.T) {
	c := newController(&fakeAPI{items: sampleItems()})
	loadItems(t, c)

	if err := c.SetField("i1", interpretation.KeyDescription, "details"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.SetField("i1", interpretation.KeyTags, []string{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.SetField("i1", interpretation.KeyTitle, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	d := c.Draft("i1")
	if _, ok := d[interpretation.KeyTags]; ok {
		t.Fatalf("empty list stored: %v", d)
	}
	if _, ok := d[interpretation.KeyTitle]; ok {
		t.Fatalf("empty string stored: %v", d)
	}
	if d.Description() != "details" {
		t.Fatalf("description = %q", d.Description())
	}
	if item, _ := c.Item("i1"); item.Data.Title() != "Submit report" {
		t.Fatalf("server data mutated by draft edit")
	}
}

func TestApproveTransitionsToCreatedOnce(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	c := newController(api)
	loadItems(t, c)
	_ = c.SetField("i1", interpretation.KeyTitle, "Edited title")

	cmd, err := c.Approve("i1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := c.Approve("i1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("err = %v, want ErrInFlight", err)
	}

	follow, _ := c.Update(cmd())
	item, _ := c.Item("i1")
	if item.Status != interpretation.ItemCreated || item.ResourceID == nil || *item.ResourceID == "" || item.ReviewedAt == nil {
		t.Fatalf("item = %+v", item)
	}
	if api.approved["i1"].Title() != "Edited title" {
		t.Fatalf("draft not sent: %v", api.approved["i1"])
	}

	var created, notified bool
	for _, m := range drain(follow) {
		switch m := m.(type) {
		case events.TaskCreatedMsg:
			created = m.TaskID == "task-i1"
		case events.NotifyMsg:
			notified = true
		}
	}
	if !created || !notified {
		t.Fatalf("created=%v notified=%v", created, notified)
	}

	if _, err := c.Approve("i1"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second approve err = %v, want ErrNotPending", err)
	}
	if err := c.SetField("i1", interpretation.KeyTitle, "late"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("edit after create err = %v", err)
	}
}

func TestApproveDifferentItemsInParallel(t *testing.T) {
	c := newController(&fakeAPI{items: sampleItems()})
	loadItems(t, c)
	first, err := c.Approve("i1")
	if err != nil {
		t.Fatalf("approve i1: %v", err)
	}
	second, err := c.Approve("i2")
	if err != nil {
		t.Fatalf("approve i2 while i1 in flight: %v", err)
	}
	c.Update(second())
	c.Update(first())
	for _, id := range []string{"i1", "i2"} {
		if item, _ := c.Item(id); item.Status != interpretation.ItemCreated {
			t.Fatalf("%s status = %q", id, item.Status)
		}
	}
}

func TestApproveFailureKeepsPending(t *testing.T) {
	api := &fakeAPI{items: sampleItems(), approveErr: errors.New("boom")}
	c := newController(api)
	loadItems(t, c)
	cmd, _ := c.Approve("i1")
	if follow, _ := c.Update(cmd()); follow != nil {
		t.Fatalf("failure should not emit events")
	}
	item, _ := c.Item("i1")
	if item.Status != interpretation.ItemPending || c.Approving("i1") || c.Err() != BannerApprove {
		t.Fatalf("item=%+v approving=%v err=%q", item, c.Approving("i1"), c.Err())
	}
}

func TestApproveWithoutResourceIDKeepsPending(t *testing.T) {
	api := &fakeAPI{items: sampleItems(), noResource: true}
	c := newController(api)
	loadItems(t, c)
	cmd, _ := c.Approve("i1")
	if follow, _ := c.Update(cmd()); follow != nil {
		t.Fatalf("approval without a resource id should not emit events: %v", drain(follow))
	}
	item, _ := c.Item("i1")
	if item.Status != interpretation.ItemPending || item.ResourceID != nil {
		t.Fatalf("item = %+v", item)
	}
	if c.Approving("i1") || c.Err() != BannerApprove {
		t.Fatalf("approving=%v err=%q", c.Approving("i1"), c.Err())
	}
	if _, err := c.Approve("i1"); err != nil {
		t.Fatalf("retry should be allowed: %v", err)
	}
}

func TestSaveKeepsItemPending(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	c := newController(api)
	loadItems(t, c)
	if err := c.SetField("i1", "title", "Submit final report"); err != nil {
		t.Fatalf("set field: %v", err)
	}
	cmd, err := c.Save("i1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	follow, ok := c.Update(cmd())
	if !ok {
		t.Fatal("saved message not applied")
	}
	item, _ := c.Item("i1")
	if item.Status != interpretation.ItemPending || item.Data["title"] != "Submit final report" {
		t.Fatalf("item = %+v", item)
	}
	if api.approved != nil {
		t.Fatal("saving must not approve")
	}
	msgs := drain(follow)
	if len(msgs) != 1 {
		t.Fatalf("expected one notification, got %v", msgs)
	}
	if n, ok := msgs[0].(events.NotifyMsg); !ok || n.Level != events.NotifySuccess {
		t.Fatalf("unexpected follow-up %#v", msgs[0])
	}
}

func TestStaleApprovalStillAnnouncesTask(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	c := newController(api)
	loadItems(t, c)
	cmd, _ := c.Approve("i1")

	// The list is replaced while the approval is in flight.
	api.items = []interpretation.Item{{ID: "i1", Status: interpretation.ItemPending, Data: interpretation.Data{"title": "other"}}}
	loadItems(t, c)

	follow, _ := c.Update(cmd())
	if item, _ := c.Item("i1"); item.Status != interpretation.ItemPending {
		t.Fatalf("stale approval touched the new list: %+v", item)
	}
	var created bool
	for _, m := range drain(follow) {
		if _, ok := m.(events.TaskCreatedMsg); ok {
			created = true
		}
	}
	if !created {
		t.Fatalf("task creation not announced")
	}
}

func TestApproveAllSkipsCreated(t *testing.T) {
	items := sampleItems()
	items[1].Status = interpretation.ItemCreated
	c := newController(&fakeAPI{items: items})
	loadItems(t, c)
	for _, m := range drain(c.ApproveAll()) {
		c.Update(m)
	}
	if item, _ := c.Item("i1"); item.Status != interpretation.ItemCreated {
		t.Fatalf("i1 not approved")
	}
	if c.ApproveAll() != nil {
		t.Fatalf("nothing left to approve")
	}
}

func TestOpenRestoresTranscriptAndItems(t *testing.T) {
	api := &fakeAPI{
		items: sampleItems(),
		page: interpretation.Page{Interpretations: []interpretation.Interpretation{
			{ID: "old", InputText: "book a room", StructuredResult: interpretation.StructuredResult{Title: "Book room"}},
		}, Total: 1},
	}
	c := newController(api)
	c.Update(c.History(20, 0)())
	if len(c.HistoryPage().Interpretations) != 1 {
		t.Fatalf("history not loaded")
	}
	c.Update(c.Open("old")())
	if c.Active() != "old" || len(c.Items()) != 2 || len(c.Messages()) != 2 {
		t.Fatalf("active=%q items=%d messages=%d", c.Active(), len(c.Items()), len(c.Messages()))
	}
}
