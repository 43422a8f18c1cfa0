package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/api"
	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/printers"
	"tableflip.dev/planner/pkg/task"
)

func addTasks(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "list and change tasks",
		Example: `
planner tasks list
planner tasks add write the quarterly report --due 2025-3-31
planner tasks done 01J8Z...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTasksList(cmd)
	addTasksShow(cmd)
	addTasksAdd(cmd)
	addTasksEdit(cmd)
	addTasksDone(cmd)
	addTasksStatus(cmd)
	addTasksDelete(cmd)

	topLevel.AddCommand(cmd)
}

func statusCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, 3)
	for _, s := range task.AllStatuses() {
		out = append(out, string(s))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func addTasksList(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list tasks grouped by status",
		Example: `
planner tasks list
planner tasks list --status in_progress -k
planner tasks list -o yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want task.Status
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return oo.HandleError(err)
				}
				want = s
			}
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			all, err := e.client.ListTasks(cmd.Context())
			if err != nil {
				return oo.HandleError(explain(err))
			}
			tasks := filterTasks(all, want)
			if oo.Structured() {
				return oo.Print(tasks)
			}

			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), ShowID: io.ShowID}
			for _, s := range task.AllStatuses() {
				if want != "" && s != want {
					continue
				}
				group := filterTasks(tasks, s)
				pp.TitleWithCount(s.Label(), len(group), "task")
				pp.Tasks(group...)
			}
			if other := otherTasks(tasks); len(other) > 0 {
				pp.TitleWithCount("Other", len(other), "task")
				pp.Tasks(other...)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only list tasks with this status (todo, in_progress, done)")
	_ = cmd.RegisterFlagCompletionFunc("status", statusCompletions)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksShow(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show every field of a task",
		Example: `
planner tasks show 01J8Z...
planner tasks show -i
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			t, err := resolveTask(cmd, e, args, i.Interactive, "Show which task")
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(t)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Task(t)
			return nil
		},
	}

	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksAdd(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	do := &options.DueOptions{}
	var description, status string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "add a task",
		Example: `
planner tasks add book the meeting room
planner tasks add "send invoice" --due tomorrow --description "march hours"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := do.GetDue()
			if err != nil {
				return oo.HandleError(err)
			}
			d := task.Draft{
				Title:       strings.TrimSpace(strings.Join(args, " ")),
				Description: task.StringPtr(description),
				DueAt:       due,
			}
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return oo.HandleError(err)
				}
				d.Status = s
			}
			if err := d.Validate(); err != nil {
				return oo.HandleError(err)
			}

			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			created, err := e.client.CreateTask(cmd.Context(), d)
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(created)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", created.Title, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "longer description")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default todo)")
	_ = cmd.RegisterFlagCompletionFunc("status", statusCompletions)
	options.AddDueArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksEdit(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	do := &options.DueOptions{}
	i := &options.InteractiveOptions{}
	var (
		title, description, status string
		clearDescription           bool
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "change some fields of a task",
		Long: `Only the fields passed as flags change. With -i and no field flags the title,
description and due date are prompted for.`,
		Example: `
planner tasks edit 01J8Z... --title "send final invoice"
planner tasks edit 01J8Z... --no-due --no-description
planner tasks edit -i
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := do.Validate(); err != nil {
				return oo.HandleError(err)
			}
			if clearDescription && description != "" {
				return oo.HandleError(errors.New("--description and --no-description are mutually exclusive"))
			}
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			current, err := resolveTask(cmd, e, args, i.Interactive, "Edit which task")
			if err != nil {
				return oo.HandleError(explain(err))
			}

			var p task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				t := strings.TrimSpace(title)
				if t == "" {
					return oo.HandleError(task.ErrTitleRequired)
				}
				p.Title = &t
			}
			if flags.Changed("description") {
				p.Description = task.StringPtr(description)
				p.ClearDescription = p.Description == nil
			}
			if clearDescription {
				p.ClearDescription = true
			}
			if do.DueString != "" {
				due, err := do.GetDue()
				if err != nil {
					return oo.HandleError(err)
				}
				p.DueAt = due
			}
			if do.ClearDue {
				p.ClearDue = true
			}
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return oo.HandleError(err)
				}
				p.Status = &s
			}
			if p.Empty() && i.Interactive {
				p, err = promptPatch(cmd, current)
				if err != nil {
					return oo.HandleError(err)
				}
			}
			if p.Empty() {
				return oo.HandleError(errors.New("nothing to change, pass at least one field flag"))
			}

			updated, err := e.client.PatchTask(cmd.Context(), current.ID, p)
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(updated)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout()}
			pp.Task(updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().BoolVar(&clearDescription, "no-description", false, "remove the description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	_ = cmd.RegisterFlagCompletionFunc("status", statusCompletions)
	options.AddDueArgs(cmd, do)
	options.AddClearDueArgs(cmd, do)
	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksDone(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "done <id>...",
		Aliases: []string{"complete"},
		Short:   "mark tasks as done",
		Example: `
planner tasks done 01J8Z... 01J90...
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			done := make([]task.Task, 0, len(args))
			for _, id := range args {
				t, err := e.client.PatchTask(cmd.Context(), id, task.StatusPatch(task.StatusDone))
				if err != nil {
					return oo.HandleError(explain(fmt.Errorf("%s: %w", id, err)))
				}
				done = append(done, t)
			}
			if oo.Structured() {
				return oo.Print(done)
			}
			for _, t := range done {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", printers.StatusBadge(t.Status), t.Title)
			}
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksStatus(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "status [id] [status]",
		Short: "move a task to another column",
		Example: `
planner tasks status 01J8Z... in_progress
planner tasks status -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return statusCompletions(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			current, err := resolveTask(cmd, e, args[:min(len(args), 1)], i.Interactive, "Move which task")
			if err != nil {
				return oo.HandleError(explain(err))
			}
			var next task.Status
			if len(args) == 2 {
				next, err = task.ParseStatus(args[1])
			} else {
				next, err = pickStatus(cmd, current.Status)
			}
			if err != nil {
				return oo.HandleError(err)
			}

			updated, err := e.client.PatchTask(cmd.Context(), current.ID, task.StatusPatch(next))
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(updated)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", printers.StatusBadge(updated.Status), updated.Title)
			return nil
		},
	}

	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTasksDelete(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	co := &options.ConfirmOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "delete a task",
		Example: `
planner tasks delete 01J8Z...
planner tasks delete 01J8Z... --yes
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			t, err := resolveTask(cmd, e, args, i.Interactive, "Delete which task")
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if !co.Yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %q", t.Title))
				if err != nil {
					return oo.HandleError(err)
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
					return nil
				}
			}
			if err := e.client.DeleteTask(cmd.Context(), t.ID); err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(map[string]any{"id": t.ID, "deleted": true})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", t.Title)
			return nil
		},
	}

	options.AddConfirmArgs(cmd, co)
	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

// resolveTask fetches the task named by args[0], or lets the user pick one
// when interactive.
func resolveTask(cmd *cobra.Command, e *env, args []string, interactive bool, label string) (task.Task, error) {
	ctx := cmd.Context()
	if len(args) > 0 && args[0] != "" {
		t, err := e.client.GetTask(ctx, args[0])
		if api.IsNotFound(err) {
			return task.Task{}, fmt.Errorf("no task with id %q", args[0])
		}
		return t, err
	}
	if !interactive {
		return task.Task{}, errors.New("requires a task id, or -i to choose one")
	}
	all, err := e.client.ListTasks(ctx)
	if err != nil {
		return task.Task{}, err
	}
	sortForPicking(all)
	return pickTask(cmd, label, all)
}

func promptPatch(cmd *cobra.Command, t task.Task) (task.Patch, error) {
	var p task.Patch
	title, err := promptText(cmd, "Title", t.Title, true)
	if err != nil {
		return p, err
	}
	if title = strings.TrimSpace(title); title != t.Title {
		p.Title = &title
	}
	desc, err := promptText(cmd, "Description", t.DescriptionText(), false)
	if err != nil {
		return p, err
	}
	if strings.TrimSpace(desc) != strings.TrimSpace(t.DescriptionText()) {
		p.Description = task.StringPtr(desc)
		p.ClearDescription = p.Description == nil
	}
	dueRaw, err := promptText(cmd, "Due (YYYY-MM-DD)", task.FormatDate(t.DueAt), false)
	if err != nil {
		return p, err
	}
	if strings.TrimSpace(dueRaw) != task.FormatDate(t.DueAt) {
		due, err := task.ParseDate(dueRaw)
		if err != nil {
			return p, err
		}
		p.DueAt = due
		p.ClearDue = due == nil
	}
	return p, nil
}

func filterTasks(tasks []task.Task, s task.Status) []task.Task {
	if s == "" {
		return tasks
	}
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

func otherTasks(tasks []task.Task) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if !t.Status.Valid() {
			out = append(out, t)
		}
	}
	return out
}

func sortForPicking(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
}
