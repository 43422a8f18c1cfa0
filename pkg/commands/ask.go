package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/printers"
)

func addAsk(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	var approve bool

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "turn plain language into suggested tasks",
		Long: `Send the text to the planner assistant and print its interpretation and the
suggestions extracted from it. Suggestions stay pending until approved with
--approve or planner items approve.`,
		Example: `
planner ask remind me to renew the passport before june
planner ask "plan the offsite: venue, catering, agenda" --approve
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("requires some text")
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

			resp, err := e.client.Interpret(ctx, strings.Join(args, " "))
			if err != nil {
				return oo.HandleError(explain(err))
			}
			items, err := e.client.ListItems(ctx, resp.Interpretation.ID)
			if err != nil {
				return oo.HandleError(explain(err))
			}

			var created []string
			if approve {
				var ids []string
				for _, it := range items {
					if it.Editable() {
						ids = append(ids, it.ID)
					}
				}
				if len(ids) > 0 {
					created, err = e.client.ApproveItems(ctx, resp.Interpretation.ID, ids)
					if err != nil {
						return oo.HandleError(explain(err))
					}
					if items, err = e.client.ListItems(ctx, resp.Interpretation.ID); err != nil {
						return oo.HandleError(explain(err))
					}
				}
			}

			if oo.Structured() {
				return oo.Print(map[string]any{
					"interpretation": resp.Interpretation,
					"message":        resp.Message,
					"items":          items,
					"created":        created,
				})
			}

			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), ShowID: io.ShowID}
			if resp.Message != "" {
				_, _ = color.New(color.Italic).Fprintln(cmd.OutOrStdout(), resp.Message)
				pp.NewLine()
			}
			pp.Interpretation(resp.Interpretation)
			pp.NewLine()
			pp.TitleWithCount("Suggestions", len(items), "suggestion")
			pp.Items(items...)
			if approve {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %d task(s).\n", len(created))
			} else if pending := countPending(items); pending > 0 {
				_, _ = color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "Approve with: planner items approve --all %s\n", resp.Interpretation.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "create every suggestion right away")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func countPending(items []interpretation.Item) int {
	n := 0
	for _, it := range items {
		if it.Editable() {
			n++
		}
	}
	return n
}
