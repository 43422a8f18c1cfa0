package main

import (
	"fmt"
	"time"

	"tableflip.dev/planner/pkg/task"
	"tableflip.dev/planner/pkg/tui/components/calendar"
)

// sampleTasks returns a fixed board spread across every status, plus extra
// generated tasks to stress scrolling.
func sampleTasks(now time.Time, extra int) []task.Task {
	today := calendar.Midnight(now)
	day := func(offset int) *time.Time {
		d := today.AddDate(0, 0, offset)
		return &d
	}

	tasks := []task.Task{
		{ID: "1", Title: "Draft release notes", Status: task.StatusTodo, DueAt: day(0), Source: task.SourceManual},
		{ID: "2", Title: "Review pull requests", Status: task.StatusInProgress, DueAt: day(1), Source: task.SourceManual,
			Description: task.StringPtr("UI polish and the storage refactor")},
		{ID: "3", Title: "Book dentist appointment", Status: task.StatusTodo, DueAt: day(3), Source: task.SourceAI},
		{ID: "4", Title: "Call the landlord about the heating", Status: task.StatusDone, DueAt: day(-2), Source: task.SourceAI},
		{ID: "5", Title: "Write an extra long task title so we can verify truncation works when a card is narrower than its label", Status: task.StatusTodo, Source: task.SourceManual},
		{ID: "6", Title: "Renew passport", Status: task.StatusTodo, DueAt: day(-5), Source: task.SourceManual},
		{ID: "7", Title: "Archive old invoices", Status: "blocked", DueAt: day(0), Source: task.SourceManual},
		{ID: "8", Title: "Plan team offsite", Status: task.StatusInProgress, DueAt: day(0), Source: task.SourceAI},
		{ID: "9", Title: "Water the plants", Status: task.StatusTodo, DueAt: day(0), Source: task.SourceManual},
		{ID: "10", Title: "Pick up dry cleaning", Status: task.StatusTodo, DueAt: day(0), Source: task.SourceManual},
	}
	for i := 0; i < extra; i++ {
		status := task.AllStatuses()[i%len(task.AllStatuses())]
		tasks = append(tasks, task.Task{
			ID:     fmt.Sprintf("gen-%d", i),
			Title:  fmt.Sprintf("Generated task %d", i+1),
			Status: status,
			DueAt:  day(i % 28),
			Source: task.SourceManual,
		})
	}
	for i := range tasks {
		tasks[i].CreatedAt = now.Add(-time.Duration(len(tasks)-i) * time.Hour)
		tasks[i].UpdatedAt = tasks[i].CreatedAt
	}
	return tasks
}
