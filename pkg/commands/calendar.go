package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/printers"
	"tableflip.dev/planner/pkg/runner/export"
	"tableflip.dev/planner/pkg/task"
)

func addCalendar(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "see or export tasks by due date",
		Example: `
planner calendar show
planner calendar show 2025-4
planner calendar export --calendar work
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addCalendarShow(cmd)
	addCalendarExport(cmd)

	topLevel.AddCommand(cmd)
}

func addCalendarShow(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "show [year-month]",
		Short: "print a month grid with the tasks due in it",
		Example: `
planner calendar show
planner calendar show 2025-12
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now()
			if len(args) == 1 {
				m, err := time.ParseInLocation("2006-1", args[0], time.Local)
				if err != nil {
					return oo.HandleError(fmt.Errorf("invalid month %q (want YYYY-MM)", args[0]))
				}
				month = m
			}
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			tasks, err := e.client.ListTasks(cmd.Context())
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(dueInMonth(tasks, month))
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Calendar(month, tasks...)
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func dueInMonth(tasks []task.Task, month time.Time) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		due := t.DueAt.Local()
		if due.Year() == month.Year() && due.Month() == month.Month() {
			out = append(out, t)
		}
	}
	return out
}

func addCalendarExport(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var (
		calendarID  string
		includeDone bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "push tasks with a due date to Google Calendar",
		Long: `Create one all-day event per task with a due date, or update the event a
previous export created. The first run asks for calendar access in the
browser using the OAuth client in calendar.credentials.`,
		Example: `
planner calendar export
planner calendar export --calendar primary --include-done
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			ctx := cmd.Context()

			if calendarID == "" {
				calendarID = e.cfg.CalendarID()
			}
			srv, err := export.NewCalendar(ctx, e.cfg.CalendarCredentials(), e.cfg.CalendarToken(), cmd.ErrOrStderr())
			if err != nil {
				return oo.HandleError(err)
			}

			out := cmd.OutOrStdout()
			if oo.Structured() {
				out = cmd.ErrOrStderr()
			}
			x := export.Export{
				API:         e.client,
				Calendar:    srv,
				CalendarID:  calendarID,
				IncludeDone: includeDone,
				Out:         out,
				Logger:      e.log,
			}
			res, err := x.Do(ctx)
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(res)
			}
			_, _ = fmt.Fprintf(out, "\n%d created, %d updated, %d unchanged, %d skipped\n", res.Created, res.Updated, res.Unchanged, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "calendar id (default from calendar.id)")
	cmd.Flags().BoolVar(&includeDone, "include-done", false, "also export tasks that are done")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
