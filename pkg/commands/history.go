package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/api"
	"tableflip.dev/planner/pkg/commands/options"
	"tableflip.dev/planner/pkg/printers"
)

func addHistory(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "list past requests to the assistant, newest first",
		Example: `
planner history
planner history --limit 5 --offset 20 -k
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadSignedIn()
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			page, err := e.client.ListInterpretations(cmd.Context(), limit, offset)
			if err != nil {
				return oo.HandleError(explain(err))
			}
			if oo.Structured() {
				return oo.Print(page)
			}
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), ShowID: io.ShowID}
			pp.History(page)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", api.DefaultPageSize, "number of requests per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of requests to skip")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
