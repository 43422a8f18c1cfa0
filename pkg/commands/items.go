package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/printers"
	"tableflip.dev/planner/pkg/task"
)

func addItems(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "review the suggestions of an interpretation",
		Example: `
planner items list 01J8Z...
planner items edit 01J90... --title "renew passport" --due 2025-5-15
planner items approve --all 01J8Z...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addItemsList(cmd)
	addItemsEdit(cmd)
	addItemsApprove(cmd)

	topLevel.AddCommand(cmd)
}

func addItemsList(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list <interpretation-id>",
		Aliases: []string{"ls"},
		Short:   "list the suggestions of an interpretation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			items, err := e.client.ListItems(cmd.Context(), args[0])
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(items)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), ShowID: io.ShowID}
			pp.TitleWithCount("Suggestions", len(items), "suggestion")
			pp.Items(items...)
			return nil
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addItemsEdit(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	do := &options.DueOptions{}
	var title, description, tags string

	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "change a pending suggestion before approving it",
		Long: `Only the fields passed as flags change. An empty --description or --tags
removes the field.`,
		Example: `
planner items edit 01J90... --title "renew passport" --tags travel,admin
planner items edit 01J90... --no-due
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := do.Validate(); err != nil {
				return oo.HandleError(err)
			}
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			ctx := cmd.Context()

			item, err := e.client.GetItem(ctx, args[0])
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if !item.Editable() {
				return oo.HandleError(fmt.Errorf("suggestion %s was already approved", item.ID))
			}

			data, err := editItemData(cmd, item.Data, title, description, tags, do)
			if err != nil {
				return oo.HandleError(err)
			}
			updated, err := e.client.UpdateItem(ctx, item.ID, data)
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(updated)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), ShowID: true}
			pp.Items(updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	options.AddDueArgs(cmd, do)
	options.AddClearDueArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

// editItemData applies the changed flags to a copy of data.
func editItemData(cmd *cobra.Command, data interpretation.Data, title, description, tags string, do *options.DueOptions) (interpretation.Data, error) {
	out := data.Clone()
	flags := cmd.Flags()
	changed := false
	if flags.Changed("title") {
		if title == "" {
			return nil, task.ErrTitleRequired
		}
		out.Set(interpretation.KeyTitle, title)
		changed = true
	}
	if flags.Changed("description") {
		out.Set(interpretation.KeyDescription, description)
		changed = true
	}
	if flags.Changed("tags") {
		out.Set(interpretation.KeyTags, interpretation.SplitTags(tags))
		changed = true
	}
	if do.DueString != "" {
		due, err := do.GetDue()
		if err != nil {
			return nil, err
		}
		out.Set(interpretation.KeyDueAt, task.FormatDate(due))
		changed = true
	}
	if do.ClearDue {
		out.Set(interpretation.KeyDueAt, nil)
		changed = true
	}
	if !changed {
		return nil, errors.New("nothing to change, pass at least one field flag")
	}
	return out, nil
}

func addItemsApprove(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	i := &options.InteractiveOptions{}
	var all string

	cmd := &cobra.Command{
		Use:   "approve [item-id]...",
		Short: "create tasks from suggestions",
		Example: `
planner items approve 01J90...
planner items approve --all 01J8Z...
planner items approve -i --all 01J8Z...
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all == "" && len(args) == 0 {
				return errors.New("requires item ids or --all <interpretation-id>")
			}
			if all != "" && len(args) > 0 {
				return errors.New("pass item ids or --all, not both")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			ctx := cmd.Context()

			var created []string
			switch {
			case all != "" && i.Interactive:
				items, err := e.client.ListItems(ctx, all)
				if err != nil {
					return oo.HandleError(explain(err))
				}
				item, err := pickItem(cmd, items)
				if err != nil {
					return oo.HandleError(err)
				}
				id, err := e.client.ApproveItem(ctx, item.ID, nil)
				if err != nil {
					return oo.HandleError(explain(err))
				}
				created = append(created, id)
			case all != "":
				items, err := e.client.ListItems(ctx, all)
				if err != nil {
					return oo.HandleError(explain(err))
				}
				var ids []string
				for _, it := range items {
					if it.Editable() {
						ids = append(ids, it.ID)
					}
				}
				if len(ids) == 0 {
					return oo.HandleError(errors.New("no pending suggestions"))
				}
				if created, err = e.client.ApproveItems(ctx, all, ids); err != nil {
					return oo.HandleError(explain(err))
				}
			default:
				for _, itemID := range args {
					id, err := e.client.ApproveItem(ctx, itemID, nil)
					if err != nil {
						return oo.HandleError(explain(fmt.Errorf("%s: %w", itemID, err)))
					}
					created = append(created, id)
				}
			}

			if oo.Structured() {
				return oo.Print(map[string]any{"created": created})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %d task(s).\n", len(created))
			return nil
		},
	}

	cmd.Flags().StringVar(&all, "all", "", "approve every pending suggestion of this interpretation")
	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
