package export

import (
	"fmt"

	"google.golang.org/api/calendar/v3"

	"tableflip.dev/planner/pkg/task"
)

// PropertyTaskID is the private extended property linking an event to its
// task.
const PropertyTaskID = "planner_task_id"

// EventFor converts a task with a due date into an all-day event. Tasks
// without a due date yield nil.
func EventFor(t task.Task) *calendar.Event {
	if t.DueAt == nil {
		return nil
	}
	due := t.DueAt.Local()
	next := due.AddDate(0, 0, 1)

	summary := t.Title
	switch t.Status {
	case task.StatusDone:
		summary = fmt.Sprintf("✓ %s", t.Title)
	case task.StatusInProgress:
		summary = fmt.Sprintf("‣ %s", t.Title)
	}

	return &calendar.Event{
		Summary:     summary,
		Description: t.DescriptionText(),
		Start:       &calendar.EventDateTime{Date: due.Format("2006-01-02")},
		End:         &calendar.EventDateTime{Date: next.Format("2006-01-02")},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyTaskID: t.ID},
		},
	}
}

// patchFor returns the fields of target that differ from existing, or nil
// when the event is already current.
func patchFor(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false
	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		if target.Description == "" {
			patch.NullFields = append(patch.NullFields, "Description")
		}
		changed = true
	}
	if dateOf(existing.Start) != dateOf(target.Start) || dateOf(existing.End) != dateOf(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}
	if !changed {
		return nil
	}
	return patch
}

func dateOf(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.Date != "" {
		return dt.Date
	}
	if len(dt.DateTime) >= 10 {
		return dt.DateTime[:10]
	}
	return ""
}
