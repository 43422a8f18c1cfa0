// Package task defines the task record exchanged with the planner API.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status identifies where a task sits in its lifecycle.
type Status string

const (
	// StatusTodo is the default status for new tasks.
	StatusTodo Status = "todo"
	// StatusInProgress marks a task that has been started.
	StatusInProgress Status = "in_progress"
	// StatusDone marks a finished task.
	StatusDone Status = "done"
)

// AllStatuses returns the supported statuses in board order.
func AllStatuses() []Status {
	return []Status{
		StatusTodo,
		StatusInProgress,
		StatusDone,
	}
}

// ParseStatus converts a string to a Status or returns an error for unknown
// values. An empty input yields StatusTodo.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StatusTodo, nil
	}
	for _, candidate := range AllStatuses() {
		if candidate == s {
			return candidate, nil
		}
	}
	return StatusTodo, fmt.Errorf("task: unknown status %q", raw)
}

// Valid reports whether s is one of the three supported statuses.
func (s Status) Valid() bool {
	for _, candidate := range AllStatuses() {
		if candidate == s {
			return true
		}
	}
	return false
}

// Next cycles todo -> in_progress -> done -> todo. Unknown statuses restart
// at todo.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusTodo
	}
}

// Label returns the human readable column name.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		if s == "" {
			return "Unknown"
		}
		return string(s)
	}
}

// Source tags how a task came to exist.
type Source string

const (
	SourceManual Source = "manual"
	SourceAI     Source = "ai"
)

// Task is the canonical server record.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Source      Source     `json:"source,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DescriptionText returns the description or an empty string.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// DueOn reports whether the task is due on the same local calendar day as day.
func (t Task) DueOn(day time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	return SameDay(*t.DueAt, day)
}

// SameDay compares two instants by local calendar date, ignoring time of day.
func SameDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// ErrTitleRequired is returned when a create or full update has no title.
var ErrTitleRequired = errors.New("task: title is required")

// Draft is the body of a create request.
type Draft struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Status      Status     `json:"status,omitempty"`
}

// Validate enforces the client side rules for a draft.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if d.Status != "" && !d.Status.Valid() {
		return fmt.Errorf("task: unknown status %q", d.Status)
	}
	return nil
}

// Replace is the body of a full update. Every mutable field is sent; a nil
// Description or DueAt clears the value on the server.
type Replace struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Status      Status     `json:"status"`
}

// Validate enforces that the full update carries every required field.
func (r Replace) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if !r.Status.Valid() {
		return fmt.Errorf("task: unknown status %q", r.Status)
	}
	return nil
}

// Patch is the body of a partial update. Nil fields are left untouched
// unless the matching Clear flag is set, in which case null is sent.
type Patch struct {
	Title            *string
	Description      *string
	DueAt            *time.Time
	Status           *Status
	ClearDescription bool
	ClearDue         bool
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueAt == nil && p.Status == nil &&
		!p.ClearDescription && !p.ClearDue
}

// MarshalJSON emits only the fields present in the patch.
func (p Patch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4)
	if p.Title != nil {
		out["title"] = *p.Title
	}
	switch {
	case p.Description != nil:
		out["description"] = *p.Description
	case p.ClearDescription:
		out["description"] = nil
	}
	switch {
	case p.DueAt != nil:
		out["due_at"] = p.DueAt.Format(time.RFC3339)
	case p.ClearDue:
		out["due_at"] = nil
	}
	if p.Status != nil {
		out["status"] = string(*p.Status)
	}
	return json.Marshal(out)
}

// Apply returns a copy of t with the patch applied locally. It is used by
// callers that want to preview a patch; the server record always wins.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.Description != nil:
		d := *p.Description
		t.Description = &d
	case p.ClearDescription:
		t.Description = nil
	}
	switch {
	case p.DueAt != nil:
		due := *p.DueAt
		t.DueAt = &due
	case p.ClearDue:
		t.DueAt = nil
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// ReplaceFrom builds a full update from an existing record.
func ReplaceFrom(t Task) Replace {
	status := t.Status
	if !status.Valid() {
		status = StatusTodo
	}
	return Replace{
		Title:       t.Title,
		Description: t.Description,
		DueAt:       t.DueAt,
		Status:      status,
	}
}

const layoutDate = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in local time. Empty input yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(layoutDate, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("task: invalid date %q (want YYYY-MM-DD)", raw)
	}
	return &t, nil
}

// FormatDate renders the local date portion of t, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(layoutDate)
}

// StringPtr returns a pointer to a trimmed copy of s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
