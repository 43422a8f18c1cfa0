package teaui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/api"
	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/session"
	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/events"
	"tableflip.dev/planner/pkg/tui/layout"
	"tableflip.dev/planner/pkg/tui/uiutil"
)

type fakeService struct {
	tasks     []task.Task
	nextID    int
	createErr error
	listErr   error
	deleted   []string
	patched   []task.Patch
	sess      *session.Session
}

func (f *fakeService) ListTasks(ctx context.Context) ([]task.Task, error) {
	if f.listErr != nil {
		if errors.Is(f.listErr, api.ErrUnauthorized) && f.sess != nil {
			_ = f.sess.Clear()
		}
		return nil, f.listErr
	}
	return append([]task.Task(nil), f.tasks...), nil
}

func (f *fakeService) GetTask(ctx context.Context, id string) (task.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (f *fakeService) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	if f.createErr != nil {
		return task.Task{}, f.createErr
	}
	f.nextID++
	t := task.Task{ID: "new-" + string(rune('0'+f.nextID)), Title: d.Title, Status: d.Status, DueAt: d.DueAt}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeService) ReplaceTask(ctx context.Context, id string, r task.Replace) (task.Task, error) {
	for i, t := range f.tasks {
		if t.ID == id {
			t.Title, t.Status, t.Description, t.DueAt = r.Title, r.Status, r.Description, r.DueAt
			f.tasks[i] = t
			return t, nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (f *fakeService) PatchTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	f.patched = append(f.patched, p)
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t)
			return f.tasks[i], nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (f *fakeService) DeleteTask(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeService) Interpret(ctx context.Context, text string) (interpretation.Response, error) {
	return interpretation.Response{}, errors.New("unused")
}

func (f *fakeService) ListInterpretations(ctx context.Context, limit, offset int) (interpretation.Page, error) {
	return interpretation.Page{}, nil
}

func (f *fakeService) GetInterpretation(ctx context.Context, id string) (interpretation.Interpretation, error) {
	return interpretation.Interpretation{}, errors.New("unused")
}

func (f *fakeService) ListItems(ctx context.Context, id string) ([]interpretation.Item, error) {
	return nil, nil
}

func (f *fakeService) UpdateItem(ctx context.Context, id string, data interpretation.Data) (interpretation.Item, error) {
	return interpretation.Item{}, errors.New("unused")
}

func (f *fakeService) ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error) {
	return "", errors.New("unused")
}

func newTestModel(t *testing.T, svc *fakeService, width int) *Model {
	t.Helper()
	sess := session.New(nil)
	if err := sess.Save("token", session.User{ID: "u1", Email: "ada@example.com"}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	svc.sess = sess
	m := New(Options{API: svc, Session: sess})
	m.Update(tea.WindowSizeMsg{Width: width, Height: 30})
	run(m, m.Init())
	return m
}

// exec runs c, giving up on timers such as cursor blinks and toast expiry.
func exec(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

// run executes cmd, feeds every resulting message back into the model and
// repeats until no commands remain.
func run(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := exec(c)
		if !ok {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, next)
	}
}

func press(m *Model, key string) {
	var msg tea.KeyPressMsg
	switch key {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	default:
		r := []rune(key)[0]
		msg = tea.KeyPressMsg{Code: r, Text: key}
	}
	_, cmd := m.Update(msg)
	run(m, cmd)
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, string(r))
	}
}

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "t1", Title: "Write report", Status: task.StatusTodo},
		{ID: "t2", Title: "Review PR", Status: task.StatusInProgress},
	}
}

func TestInitLoadsTasks(t *testing.T) {
	m := newTestModel(t, &fakeService{tasks: sampleTasks()}, 120)
	if len(m.board.Tasks()) != 2 {
		t.Fatalf("tasks = %d", len(m.board.Tasks()))
	}
	view := uiutil.StripANSI(m.View())
	for _, want := range []string{"To Do (1)", "In Progress (1)", "Write report", "ada@example.com"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLoadingIndicatorReplacesView(t *testing.T) {
	m := newTestModel(t, &fakeService{tasks: sampleTasks()}, 120)
	m.board.Load()
	view := uiutil.StripANSI(m.View())
	if !strings.Contains(view, "Loading tasks") || strings.Contains(view, "Write report") {
		t.Fatalf("stale tasks shown while loading:\n%s", view)
	}
}

func TestCreateClosesFormOnlyOnSuccess(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks(), createErr: errors.New("boom")}
	m := newTestModel(t, svc, 120)

	press(m, "n")
	if !m.form.IsOpen() {
		t.Fatalf("form not opened")
	}
	typeText(m, "Buy milk")
	press(m, "enter")
	if !m.form.IsOpen() {
		t.Fatalf("form closed after a failed create")
	}
	if m.board.Err() == "" {
		t.Fatalf("no banner after failed create")
	}

	svc.createErr = nil
	press(m, "enter")
	if m.form.IsOpen() {
		t.Fatalf("form still open after create")
	}
	if _, ok := m.board.Get("new-1"); !ok {
		t.Fatalf("created task missing: %+v", m.board.Tasks())
	}
	if m.toast == nil || m.toast.level != events.NotifySuccess {
		t.Fatalf("toast = %+v", m.toast)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks()}
	m := newTestModel(t, svc, 120)

	press(m, "d")
	if m.confirm == nil || m.confirm.ID != "t1" {
		t.Fatalf("confirm = %+v", m.confirm)
	}
	if !strings.Contains(uiutil.StripANSI(m.View()), "Delete \"Write report\"?") {
		t.Fatalf("confirm prompt not rendered")
	}
	press(m, "n")
	if len(svc.deleted) != 0 || m.confirm != nil {
		t.Fatalf("cancel sent a delete: %v", svc.deleted)
	}

	press(m, "d")
	press(m, "y")
	if len(svc.deleted) != 1 || svc.deleted[0] != "t1" {
		t.Fatalf("deleted = %v", svc.deleted)
	}
	if _, ok := m.board.Get("t1"); ok {
		t.Fatalf("task still on the board")
	}
}

func TestDeleteClosesEditFormForThatTask(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks()}
	m := newTestModel(t, svc, 120)

	press(m, "d")
	_, remove := m.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	if remove == nil {
		t.Fatal("confirming did not issue a delete")
	}

	press(m, "e")
	if !m.form.IsOpen() {
		t.Fatal("edit form did not open")
	}
	if _, ok := m.form.Target(); !ok {
		t.Fatal("edit form has no target")
	}

	run(m, remove)
	if len(svc.deleted) != 1 || svc.deleted[0] != "t1" {
		t.Fatalf("deleted = %v", svc.deleted)
	}
	if m.form.IsOpen() {
		t.Fatal("form still open after its task was deleted")
	}
	if _, ok := m.form.Target(); ok {
		t.Fatal("form still targets the deleted task")
	}
}

func TestStatusChangeFromKanban(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks()}
	m := newTestModel(t, svc, 120)
	press(m, "s")
	got, _ := m.board.Get("t1")
	if got.Status != task.StatusInProgress {
		t.Fatalf("status = %q", got.Status)
	}
	if len(svc.patched) != 1 || svc.patched[0].Status == nil {
		t.Fatalf("patch = %+v", svc.patched)
	}
}

func TestNumberKeysSwitchViews(t *testing.T) {
	m := newTestModel(t, &fakeService{tasks: sampleTasks()}, 120)
	for key, want := range map[string]viewMode{"2": modeList, "3": modeCalendar, "4": modeAI, "1": modeKanban} {
		m.mode = modeKanban
		m.chat.Blur()
		press(m, key)
		if m.mode != want {
			t.Fatalf("key %s: mode = %s, want %s", key, m.mode, want)
		}
	}
}

func TestAssistantInputCapturesDigits(t *testing.T) {
	m := newTestModel(t, &fakeService{tasks: sampleTasks()}, 120)
	press(m, "4")
	press(m, "1")
	if m.mode != modeAI {
		t.Fatalf("typing a digit left the assistant")
	}
	press(m, "esc")
	press(m, "1")
	if m.mode != modeKanban {
		t.Fatalf("mode = %s after leaving the input", m.mode)
	}
}

func TestTaskCreatedInsertsTask(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks()}
	m := newTestModel(t, svc, 120)
	svc.tasks = append(svc.tasks, task.Task{ID: "ai-1", Title: "From assistant", Status: task.StatusTodo})
	run(m, events.TaskCreatedCmd("review", "ai-1", "item-1"))
	if _, ok := m.board.Get("ai-1"); !ok {
		t.Fatalf("approved task not inserted")
	}
}

func TestUnauthorizedShowsLoginScreen(t *testing.T) {
	svc := &fakeService{tasks: sampleTasks()}
	m := newTestModel(t, svc, 120)
	svc.listErr = api.ErrUnauthorized
	press(m, "r")
	if !m.loginRequired {
		t.Fatalf("login screen not shown after 401")
	}
	if len(m.board.Tasks()) != 0 {
		t.Fatalf("tasks kept after sign-out")
	}
	if !strings.Contains(uiutil.StripANSI(m.View()), "planner login") {
		t.Fatalf("login hint missing")
	}
}

func TestExpiredSignalShowsLoginScreen(t *testing.T) {
	sess := session.New(nil)
	if err := sess.Save("token", session.User{ID: "u1"}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	expired := make(chan struct{}, 1)
	m := New(Options{API: &fakeService{tasks: sampleTasks()}, Session: sess, Expired: expired})
	defer m.shutdown()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	_ = sess.Clear()
	expired <- struct{}{}
	run(m, m.waitForExpiry())

	if !m.loginRequired {
		t.Fatal("expected the login screen after the expiry signal")
	}
	if !strings.Contains(uiutil.StripANSI(m.View()), "Signed out") {
		t.Fatalf("login screen not rendered")
	}
}

func TestSidebarFollowsLayoutPolicy(t *testing.T) {
	m := newTestModel(t, &fakeService{tasks: sampleTasks()}, 120)
	if !m.sidebarOpen {
		t.Fatalf("sidebar closed on a wide terminal")
	}
	if f := m.policy.Compute(m.width, m.bodyHeight(), m.sidebarOpen); f.Sidebar != layout.Docked {
		t.Fatalf("placement = %s", f.Sidebar)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.sidebarOpen {
		t.Fatalf("sidebar stayed open when the terminal narrowed")
	}
	press(m, "b")
	if f := m.policy.Compute(m.width, m.bodyHeight(), m.sidebarOpen); f.Sidebar != layout.Overlay {
		t.Fatalf("placement = %s", f.Sidebar)
	}
	press(m, "j")
	press(m, "enter")
	if m.mode != modeList || m.sidebarOpen {
		t.Fatalf("mode=%s sidebarOpen=%v", m.mode, m.sidebarOpen)
	}
}
