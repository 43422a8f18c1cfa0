package options

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/task"
)

const layoutShort = "1/2"

// DueOptions
type DueOptions struct {
	DueString string
	ClearDue  bool
}

func AddDueArgs(cmd *cobra.Command, o *DueOptions) {
	cmd.Flags().StringVar(&o.DueString, "due", "",
		`Due date, example: --due=2025-2-28, --due=2/28, --due=today or --due=tomorrow.`)
}

func AddClearDueArgs(cmd *cobra.Command, o *DueOptions) {
	cmd.Flags().BoolVar(&o.ClearDue, "no-due", false,
		"Remove the due date.")
}

// GetDue returns the local date for DueString, or nil when it is empty.
func (o *DueOptions) GetDue() (*time.Time, error) {
	return parseDue(o.DueString, time.Now())
}

func parseDue(raw string, now time.Time) (*time.Time, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	switch raw {
	case "":
		return nil, nil
	case "today":
		return &today, nil
	case "tomorrow":
		t := today.AddDate(0, 0, 1)
		return &t, nil
	}
	if t, err := time.ParseInLocation("2006-1-2", raw, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(layoutShort, raw, time.Local)
	if err != nil {
		return task.ParseDate(raw)
	}
	// Month/day without a year means the next such date.
	t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	if t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return &t, nil
}

// Validate rejects --due together with --no-due.
func (o *DueOptions) Validate() error {
	if o.ClearDue && strings.TrimSpace(o.DueString) != "" {
		return errors.New("--due and --no-due are mutually exclusive")
	}
	return nil
}
