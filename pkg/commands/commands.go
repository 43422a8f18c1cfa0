package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "planner",
		Short: base.Wrap80("Plan tasks on a kanban board, a list or a calendar, and let the assistant turn plain language into tasks."),
		RunE: func(cmd *cobra.Command, args []string) error {
			if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return runUI(cmd)
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addLogin(topLevel)
	addLogout(topLevel)
	addWhoami(topLevel)
	addTasks(topLevel)
	addAsk(topLevel)
	addHistory(topLevel)
	addItems(topLevel)
	addCalendar(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
