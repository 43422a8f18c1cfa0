// Package export pushes tasks with a due date to a Google Calendar.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"google.golang.org/api/calendar/v3"

	"tableflip.dev/planner/pkg/task"
)

// Lister is the slice of the REST client the export reads from.
type Lister interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
}

// Result counts what an export did.
type Result struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Export creates or updates one all-day event per dated task. Events are
// matched to tasks through PropertyTaskID so repeated exports converge.
type Export struct {
	API         Lister
	Calendar    *calendar.Service
	CalendarID  string
	IncludeDone bool
	Out         io.Writer
	Logger      *slog.Logger
}

func (e *Export) Do(ctx context.Context) (Result, error) {
	var res Result
	if e.API == nil || e.Calendar == nil {
		return res, errors.New("export: api and calendar are required")
	}
	calID := e.CalendarID
	if calID == "" {
		calID = "primary"
	}
	out := e.Out
	if out == nil {
		out = color.Output
	}
	log := e.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tasks, err := e.API.ListTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("export: list tasks: %w", err)
	}

	added := color.New(color.FgGreen)
	changed := color.New(color.FgYellow)
	same := color.New(color.Faint)

	for _, t := range tasks {
		target := EventFor(t)
		if target == nil || (t.Status == task.StatusDone && !e.IncludeDone) {
			res.Skipped++
			continue
		}

		existing, err := e.find(ctx, calID, t.ID)
		if err != nil {
			return res, fmt.Errorf("export: look up %q: %w", t.Title, err)
		}

		if existing == nil {
			if _, err := e.Calendar.Events.Insert(calID, target).Context(ctx).Do(); err != nil {
				return res, fmt.Errorf("export: create %q: %w", t.Title, err)
			}
			res.Created++
			log.Info("calendar event created", "task", t.ID)
			_, _ = added.Fprintf(out, "+ %s  %s\n", target.Start.Date, t.Title)
			continue
		}

		patch := patchFor(existing, target)
		if patch == nil {
			res.Unchanged++
			_, _ = same.Fprintf(out, "= %s  %s\n", target.Start.Date, t.Title)
			continue
		}
		if _, err := e.Calendar.Events.Patch(calID, existing.Id, patch).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("export: update %q: %w", t.Title, err)
		}
		res.Updated++
		log.Info("calendar event updated", "task", t.ID, "event", existing.Id)
		_, _ = changed.Fprintf(out, "~ %s  %s\n", target.Start.Date, t.Title)
	}
	return res, nil
}

func (e *Export) find(ctx context.Context, calID, taskID string) (*calendar.Event, error) {
	events, err := e.Calendar.Events.List(calID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", PropertyTaskID, taskID)).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
