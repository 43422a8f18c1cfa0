// Package board owns the task collection shown by every view and turns user
// intents into REST calls.
//
// Each operation returns a tea.Cmd that performs the request off the UI
// goroutine and yields a result message. Results are applied by Update on the
// UI goroutine, and only after the server confirmed the change.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/task"
)

// ErrIncomplete is returned when a full update lacks a required field.
var ErrIncomplete = errors.New("board: full update requires title and status")

// Banner texts.
const (
	BannerLoad   = "Failed to load tasks. Please try again."
	BannerCreate = "Failed to create task. Please try again."
	BannerUpdate = "Failed to update task. Please try again."
	BannerDelete = "Failed to delete task. Please try again."
	BannerFetch  = "Failed to fetch the new task. Please reload."
)

// API is the subset of the REST client the board uses.
type API interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	ReplaceTask(ctx context.Context, id string, r task.Replace) (task.Task, error)
	PatchTask(ctx context.Context, id string, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Board coordinates the collection with the remote store.
type Board struct {
	api     API
	log     *slog.Logger
	timeout time.Duration

	tasks   Collection
	loading bool
	loaded  bool
	loadGen uint64
	epoch   uint64
	err     string
}

// New returns an empty board.
func New(api API, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{api: api, log: log, timeout: 30 * time.Second}
}

// Tasks returns a snapshot of the collection.
func (b *Board) Tasks() []task.Task { return b.tasks.Snapshot() }

// Get returns one task by id.
func (b *Board) Get(id string) (task.Task, bool) { return b.tasks.Get(id) }

// Loading reports whether a load is outstanding.
func (b *Board) Loading() bool { return b.loading }

// Loaded reports whether at least one load has succeeded.
func (b *Board) Loaded() bool { return b.loaded }

// Err returns the current banner text, or "".
func (b *Board) Err() string { return b.err }

// ClearErr dismisses the banner.
func (b *Board) ClearErr() { b.err = "" }

// Reset drops the collection and invalidates every in-flight result. It is
// used when the session changes.
func (b *Board) Reset() {
	b.epoch++
	b.loadGen++
	b.tasks.Replace(nil)
	b.loading = false
	b.loaded = false
	b.err = ""
}

func (b *Board) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

// Load fetches the whole collection.
func (b *Board) Load() tea.Cmd {
	b.loadGen++
	b.loading = true
	gen, epoch, api := b.loadGen, b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		tasks, err := api.ListTasks(ctx)
		return LoadedMsg{Gen: gen, Epoch: epoch, Tasks: tasks, Err: err}
	}
}

// Create posts a new task. Session identifies the form that issued it.
func (b *Board) Create(session uint64, d task.Draft) tea.Cmd {
	if err := d.Validate(); err != nil {
		b.log.Debug("board: refusing create", "err", err)
		return nil
	}
	epoch, api := b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		t, err := api.CreateTask(ctx, d)
		return CreatedMsg{Epoch: epoch, Session: session, Task: t, Err: err}
	}
}

// Replace sends a full update. It refuses locally when a required field is
// missing.
func (b *Board) Replace(session uint64, id string, r task.Replace) (tea.Cmd, error) {
	if strings.TrimSpace(r.Title) == "" || !r.Status.Valid() {
		return nil, ErrIncomplete
	}
	epoch, api := b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		t, err := api.ReplaceTask(ctx, id, r)
		return ReplacedMsg{Epoch: epoch, Session: session, ID: id, Task: t, Err: err}
	}, nil
}

// Patch sends a partial update.
func (b *Board) Patch(id string, p task.Patch) tea.Cmd {
	if p.Empty() {
		return nil
	}
	epoch, api := b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		t, err := api.PatchTask(ctx, id, p)
		return PatchedMsg{Epoch: epoch, ID: id, Task: t, Err: err}
	}
}

// Remove deletes a task. Callers confirm with the user first.
func (b *Board) Remove(id string) tea.Cmd {
	epoch, api := b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		err := api.DeleteTask(ctx, id)
		return RemovedMsg{Epoch: epoch, ID: id, Err: err}
	}
}

// Insert fetches a task created elsewhere and adds it to the collection.
func (b *Board) Insert(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	epoch, api := b.epoch, b.api
	return func() tea.Msg {
		ctx, cancel := b.ctx()
		defer cancel()
		t, err := api.GetTask(ctx, id)
		return InsertedMsg{Epoch: epoch, ID: id, Task: t, Err: err}
	}
}

// Update applies a result message. It reports whether the message belonged
// to the board and was current; stale results are dropped and reported as
// not applied.
func (b *Board) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Epoch != b.epoch || msg.Gen != b.loadGen {
			b.log.Debug("board: dropping stale load", "gen", msg.Gen, "current", b.loadGen)
			return false
		}
		b.loading = false
		if msg.Err != nil {
			b.log.Error("board: load tasks", "err", msg.Err)
			b.err = BannerLoad
			return true
		}
		b.tasks.Replace(msg.Tasks)
		b.loaded = true
		b.err = ""
		return true

	case CreatedMsg:
		if msg.Epoch != b.epoch {
			return false
		}
		if msg.Err != nil {
			b.log.Error("board: create task", "err", msg.Err)
			b.err = BannerCreate
			return true
		}
		b.tasks.Upsert(msg.Task)
		b.err = ""
		return true

	case ReplacedMsg:
		if msg.Epoch != b.epoch {
			return false
		}
		if msg.Err != nil {
			b.log.Error("board: replace task", "id", msg.ID, "err", msg.Err)
			b.err = BannerUpdate
			return true
		}
		b.tasks.Swap(msg.Task)
		b.err = ""
		return true

	case PatchedMsg:
		if msg.Epoch != b.epoch {
			return false
		}
		if msg.Err != nil {
			b.log.Error("board: patch task", "id", msg.ID, "err", msg.Err)
			b.err = BannerUpdate
			return true
		}
		if !b.tasks.Swap(msg.Task) {
			b.log.Debug("board: patched task no longer present", "id", msg.ID)
			return false
		}
		b.err = ""
		return true

	case RemovedMsg:
		if msg.Epoch != b.epoch {
			return false
		}
		if msg.Err != nil {
			b.log.Error("board: delete task", "id", msg.ID, "err", msg.Err)
			b.err = BannerDelete
			return true
		}
		b.tasks.Remove(msg.ID)
		b.err = ""
		return true

	case InsertedMsg:
		if msg.Epoch != b.epoch {
			return false
		}
		if msg.Err != nil {
			b.log.Error("board: fetch created task", "id", msg.ID, "err", msg.Err)
			b.err = BannerFetch
			return true
		}
		b.tasks.Upsert(msg.Task)
		return true
	}
	return false
}

// Describe summarizes the board for logs.
func (b *Board) Describe() string {
	return fmt.Sprintf("tasks:%d loading:%t gen:%d epoch:%d", b.tasks.Len(), b.loading, b.loadGen, b.epoch)
}
