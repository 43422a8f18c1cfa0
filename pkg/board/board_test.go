package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"tableflip.dev/planner/pkg/task"
)

// memoryAPI is an in-memory stand-in for the REST backend.
type memoryAPI struct {
	tasks  []task.Task
	nextID int
	fail   error
}

func (m *memoryAPI) ListTasks(ctx context.Context) ([]task.Task, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]task.Task(nil), m.tasks...), nil
}

func (m *memoryAPI) GetTask(ctx context.Context, id string) (task.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (m *memoryAPI) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	if m.fail != nil {
		return task.Task{}, m.fail
	}
	m.nextID++
	status := d.Status
	if status == "" {
		status = task.StatusTodo
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t := task.Task{
		ID:          fmt.Sprintf("srv-%d", m.nextID),
		Title:       d.Title,
		Description: d.Description,
		DueAt:       d.DueAt,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *memoryAPI) ReplaceTask(ctx context.Context, id string, r task.Replace) (task.Task, error) {
	if m.fail != nil {
		return task.Task{}, m.fail
	}
	for i, t := range m.tasks {
		if t.ID == id {
			t.Title, t.Description, t.DueAt, t.Status = r.Title, r.Description, r.DueAt, r.Status
			m.tasks[i] = t
			return t, nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (m *memoryAPI) PatchTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	if m.fail != nil {
		return task.Task{}, m.fail
	}
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks[i] = p.Apply(t)
			return m.tasks[i], nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (m *memoryAPI) DeleteTask(ctx context.Context, id string) error {
	if m.fail != nil {
		return m.fail
	}
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newBoard(api API) *Board {
	return New(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateThenLoadRoundTrip(t *testing.T) {
	api := &memoryAPI{}
	b := newBoard(api)

	due := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.Local)
	cmd := b.Create(1, task.Draft{Title: "Buy milk", DueAt: &due, Status: task.StatusTodo})
	msg := cmd().(CreatedMsg)
	if msg.Session != 1 {
		t.Fatalf("session not echoed: %d", msg.Session)
	}
	b.Update(msg)

	load := b.Load()
	if !b.Loading() {
		t.Fatalf("expected loading while request is outstanding")
	}
	b.Update(load())

	got := b.Tasks()
	if len(got) != 1 {
		t.Fatalf("tasks = %+v", got)
	}
	tk := got[0]
	if tk.ID != "srv-1" || tk.Title != "Buy milk" || tk.Status != task.StatusTodo || !tk.DueAt.Equal(due) || tk.CreatedAt.IsZero() {
		t.Fatalf("task = %+v", tk)
	}
}

func TestCreateDuplicateIDSwapsInsteadOfAppending(t *testing.T) {
	b := newBoard(&memoryAPI{})
	b.Update(CreatedMsg{Task: task.Task{ID: "a", Title: "one"}})
	b.Update(CreatedMsg{Task: task.Task{ID: "a", Title: "two"}})
	if got := b.Tasks(); len(got) != 1 || got[0].Title != "two" {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "a", Title: "keep", Status: task.StatusTodo}}}
	b := newBoard(api)
	b.Update(b.Load()())

	api.fail = errors.New("boom")
	b.Update(b.Create(1, task.Draft{Title: "new"})())
	if b.Err() != BannerCreate {
		t.Fatalf("banner = %q", b.Err())
	}
	if got := b.Tasks(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("collection changed: %+v", got)
	}
}

func TestCreateRefusesBlankTitle(t *testing.T) {
	b := newBoard(&memoryAPI{})
	if cmd := b.Create(1, task.Draft{Title: " "}); cmd != nil {
		t.Fatalf("expected no command for blank title")
	}
}

func TestLoadFailureKeepsPreviousTasks(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "a", Title: "A", Status: task.StatusTodo}}}
	b := newBoard(api)
	b.Update(b.Load()())

	api.fail = errors.New("offline")
	b.Update(b.Load()())
	if b.Loading() {
		t.Fatalf("loading should end after failure")
	}
	if b.Err() != BannerLoad {
		t.Fatalf("banner = %q", b.Err())
	}
	if len(b.Tasks()) != 1 {
		t.Fatalf("previous collection dropped")
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "old"}}}
	b := newBoard(api)
	first := b.Load()
	firstMsg := first()

	api.tasks = []task.Task{{ID: "new"}}
	second := b.Load()
	b.Update(second())

	if b.Update(firstMsg) {
		t.Fatalf("stale load applied")
	}
	if got := b.Tasks(); len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestPatchStatusTwiceIsIdempotent(t *testing.T) {
	desc := "notes"
	due := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.Local)
	api := &memoryAPI{tasks: []task.Task{{ID: "a", Title: "A", Description: &desc, DueAt: &due, Status: task.StatusTodo}}}
	b := newBoard(api)
	b.Update(b.Load()())

	p := task.StatusPatch(task.StatusDone)
	b.Update(b.Patch("a", p)())
	b.Update(b.Patch("a", p)())

	got, _ := b.Get("a")
	if got.Status != task.StatusDone || got.Title != "A" || got.DescriptionText() != desc || !got.DueAt.Equal(due) {
		t.Fatalf("task = %+v", got)
	}
}

func TestPatchResultForRemovedTaskIsDropped(t *testing.T) {
	b := newBoard(&memoryAPI{})
	if b.Update(PatchedMsg{ID: "gone", Task: task.Task{ID: "gone"}}) {
		t.Fatalf("patch for missing task applied")
	}
	if len(b.Tasks()) != 0 {
		t.Fatalf("patch resurrected a task")
	}
}

func TestReplaceRequiresTitleAndStatus(t *testing.T) {
	b := newBoard(&memoryAPI{})
	if _, err := b.Replace(1, "a", task.Replace{Title: "x"}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("err = %v", err)
	}
	if _, err := b.Replace(1, "a", task.Replace{Status: task.StatusDone}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("err = %v", err)
	}
}

func TestReplaceSwapsInPlace(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "a", Title: "A", Status: task.StatusTodo}, {ID: "b", Title: "B", Status: task.StatusTodo}}}
	b := newBoard(api)
	b.Update(b.Load()())

	cmd, err := b.Replace(2, "a", task.Replace{Title: "A2", Status: task.StatusInProgress})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	b.Update(cmd())
	got := b.Tasks()
	if got[0].ID != "a" || got[0].Title != "A2" || got[0].Status != task.StatusInProgress {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestRemoveFailureKeepsTask(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "a"}}}
	b := newBoard(api)
	b.Update(b.Load()())

	api.fail = errors.New("boom")
	b.Update(b.Remove("a")())
	if len(b.Tasks()) != 1 || b.Err() != BannerDelete {
		t.Fatalf("tasks=%d banner=%q", len(b.Tasks()), b.Err())
	}

	api.fail = nil
	b.Update(b.Remove("a")())
	if len(b.Tasks()) != 0 {
		t.Fatalf("task not removed")
	}
}

func TestResetInvalidatesInFlightResults(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "a"}}}
	b := newBoard(api)
	pending := b.Load()()
	b.Reset()
	if b.Update(pending) {
		t.Fatalf("result from previous session applied")
	}
}

func TestInsertFetchesCreatedTask(t *testing.T) {
	api := &memoryAPI{tasks: []task.Task{{ID: "ai-1", Title: "From AI", Source: task.SourceAI}}}
	b := newBoard(api)
	b.Update(b.Insert("ai-1")())
	b.Update(b.Insert("ai-1")())
	if got := b.Tasks(); len(got) != 1 || got[0].Title != "From AI" {
		t.Fatalf("tasks = %+v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := newBoard(&memoryAPI{})
	b.Update(CreatedMsg{Task: task.Task{ID: "a", Title: "A"}})
	snap := b.Tasks()
	snap[0].Title = "mutated"
	if got, _ := b.Get("a"); got.Title != "A" {
		t.Fatalf("snapshot shares storage")
	}
}
