// Package form implements the create/edit task dialog state machine.
//
// A form is either closed, open for a new task, or open for exactly one
// existing task. The target never changes while the form is open; callers
// close it first. Every open starts a new session number that asynchronous
// results are checked against.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/task"
)

var (
	// ErrAlreadyOpen is returned when opening a form that is already open.
	ErrAlreadyOpen = errors.New("form: already open")
	// ErrNotOpen is returned by operations that need an open form.
	ErrNotOpen = errors.New("form: not open")
	// ErrCreateOnly is returned when AI pre-fill is used on an edit form.
	ErrCreateOnly = errors.New("form: generate is only available when creating")
	// ErrTitleRequired is returned by Submit when the title is blank.
	ErrTitleRequired = task.ErrTitleRequired
	// ErrInvalidDue is returned by Submit when the due date cannot be parsed.
	ErrInvalidDue = errors.New("form: due date must be YYYY-MM-DD")
)

// AlertGenerate is shown when AI pre-fill fails.
const AlertGenerate = "Failed to generate task details. Please try again."

// Mode is the state of the form.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Interpreter runs free text through the interpretation endpoint.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (interpretation.Response, error)
}

// Fields are the editable buffers.
type Fields struct {
	Title       string
	Description string
	Due         string
	Status      task.Status
}

// Submission is what a valid submit produces. Exactly one of Create or
// Replace is set.
type Submission struct {
	Session uint64
	Create  *task.Draft
	ID      string
	Replace *task.Replace
}

// Form holds the dialog state.
type Form struct {
	ai  Interpreter
	log *slog.Logger

	mode     Mode
	target   task.Task
	session  uint64
	fields   Fields
	revision uint64

	generateOpen bool
	prompt       string
	generating   bool
	alert        string
}

// New returns a closed form.
func New(ai Interpreter, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{ai: ai, log: log}
}

func (f *Form) Mode() Mode      { return f.mode }
func (f *Form) IsOpen() bool    { return f.mode != ModeClosed }
func (f *Form) Session() uint64 { return f.session }

// Revision changes whenever the buffers are replaced programmatically, so a
// view holding text inputs knows to resync.
func (f *Form) Revision() uint64 { return f.revision }

// Target returns the task being edited.
func (f *Form) Target() (task.Task, bool) {
	if f.mode != ModeEdit {
		return task.Task{}, false
	}
	return f.target, true
}

// Fields returns a copy of the buffers.
func (f *Form) Fields() Fields { return f.fields }

// OpenCreate opens an empty form, optionally pre-filling the due date.
func (f *Form) OpenCreate(due *time.Time) error {
	if f.IsOpen() {
		return ErrAlreadyOpen
	}
	f.reset()
	f.mode = ModeCreate
	f.fields = Fields{Due: task.FormatDate(due), Status: task.StatusTodo}
	return nil
}

// OpenEdit opens the form seeded from t.
func (f *Form) OpenEdit(t task.Task) error {
	if f.IsOpen() {
		return ErrAlreadyOpen
	}
	f.reset()
	f.mode = ModeEdit
	f.target = t
	status := t.Status
	if !status.Valid() {
		status = task.StatusTodo
	}
	f.fields = Fields{
		Title:       t.Title,
		Description: t.DescriptionText(),
		Due:         task.FormatDate(t.DueAt),
		Status:      status,
	}
	return nil
}

func (f *Form) reset() {
	f.session++
	f.revision++
	f.target = task.Task{}
	f.fields = Fields{}
	f.generateOpen = false
	f.prompt = ""
	f.generating = false
	f.alert = ""
}

// Cancel closes the form and discards every buffer.
func (f *Form) Cancel() {
	if !f.IsOpen() {
		return
	}
	f.reset()
	f.mode = ModeClosed
}

// Close closes the form if session is still the open one. It reports whether
// the form was closed.
func (f *Form) Close(session uint64) bool {
	if !f.IsOpen() || session != f.session {
		return false
	}
	f.Cancel()
	return true
}

// CloseIfTarget closes an edit form whose target is id.
func (f *Form) CloseIfTarget(id string) bool {
	if f.mode != ModeEdit || f.target.ID != id {
		return false
	}
	f.Cancel()
	return true
}

// SetTitle and friends update one buffer.
func (f *Form) SetTitle(v string)       { f.fields.Title = v }
func (f *Form) SetDescription(v string) { f.fields.Description = v }
func (f *Form) SetDue(v string)         { f.fields.Due = v }

// SetStatus sets the status buffer. Unknown values are ignored.
func (f *Form) SetStatus(s task.Status) {
	if s.Valid() {
		f.fields.Status = s
	}
}

// CycleStatus advances the status buffer.
func (f *Form) CycleStatus() {
	f.fields.Status = f.fields.Status.Next()
}

// Submit validates the buffers and builds the request for the coordinator.
// The form stays open; the caller closes it once the server confirms.
func (f *Form) Submit() (Submission, error) {
	if !f.IsOpen() {
		return Submission{}, ErrNotOpen
	}
	title := strings.TrimSpace(f.fields.Title)
	if title == "" {
		return Submission{}, ErrTitleRequired
	}
	due, err := task.ParseDate(f.fields.Due)
	if err != nil {
		return Submission{}, ErrInvalidDue
	}
	status := f.fields.Status
	if !status.Valid() {
		status = task.StatusTodo
	}
	desc := task.StringPtr(f.fields.Description)

	if f.mode == ModeCreate {
		return Submission{
			Session: f.session,
			Create:  &task.Draft{Title: title, Description: desc, DueAt: due, Status: status},
		}, nil
	}
	return Submission{
		Session: f.session,
		ID:      f.target.ID,
		Replace: &task.Replace{Title: title, Description: desc, DueAt: due, Status: status},
	}, nil
}

// GenerateOpen reports whether the AI prompt box is visible.
func (f *Form) GenerateOpen() bool { return f.generateOpen }

// Generating reports whether a pre-fill request is outstanding.
func (f *Form) Generating() bool { return f.generating }

// Prompt returns the AI prompt buffer.
func (f *Form) Prompt() string { return f.prompt }

// SetPrompt updates the AI prompt buffer.
func (f *Form) SetPrompt(v string) { f.prompt = v }

// Alert returns the blocking alert text, or "".
func (f *Form) Alert() string { return f.alert }

// DismissAlert clears the blocking alert.
func (f *Form) DismissAlert() { f.alert = "" }

// ToggleGenerate shows or hides the AI prompt box.
func (f *Form) ToggleGenerate() error {
	if f.mode != ModeCreate {
		return ErrCreateOnly
	}
	f.generateOpen = !f.generateOpen
	return nil
}

// GeneratedMsg is the result of Generate.
type GeneratedMsg struct {
	Session  uint64
	Response interpretation.Response
	Err      error
}

func (m GeneratedMsg) Describe() string {
	return fmt.Sprintf(`session:%d err:%v`, m.Session, m.Err)
}

// Generate sends the prompt to the interpretation endpoint.
func (f *Form) Generate() tea.Cmd {
	if f.mode != ModeCreate || !f.generateOpen || f.generating || f.ai == nil {
		return nil
	}
	prompt := strings.TrimSpace(f.prompt)
	if prompt == "" {
		return nil
	}
	f.generating = true
	session, ai := f.session, f.ai
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		resp, err := ai.Interpret(ctx, prompt)
		return GeneratedMsg{Session: session, Response: resp, Err: err}
	}
}

// Update applies a GeneratedMsg. Results for a previous form session are
// ignored.
func (f *Form) Update(msg tea.Msg) bool {
	m, ok := msg.(GeneratedMsg)
	if !ok {
		return false
	}
	if !f.IsOpen() || m.Session != f.session {
		f.log.Debug("form: dropping stale generate result", "session", m.Session, "current", f.session)
		return false
	}
	f.generating = false
	if m.Err != nil {
		f.log.Error("form: generate", "err", m.Err)
		f.alert = AlertGenerate
		return true
	}
	f.apply(m.Response.Interpretation.StructuredResult)
	f.generateOpen = false
	f.prompt = ""
	return true
}

// apply maps a suggestion onto the buffers. A high priority becomes the
// in_progress status because tasks have no priority field.
func (f *Form) apply(r interpretation.StructuredResult) {
	if r.Title != "" {
		f.fields.Title = r.Title
	}
	if r.Description != "" {
		f.fields.Description = r.Description
	}
	if r.Metadata != nil {
		if d := r.Metadata.DeadlineDate(); d != nil {
			f.fields.Due = task.FormatDate(d)
		}
		if r.Metadata.Priority == interpretation.PriorityHigh {
			f.fields.Status = task.StatusInProgress
		}
	}
	f.revision++
}
