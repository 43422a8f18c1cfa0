package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the terminal planner",
		Example: `
planner ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd)
		},
	}

	topLevel.AddCommand(cmd)
}

func runUI(cmd *cobra.Command) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	i := ui.UI{
		Config:      e.cfg,
		Persistence: e.persist,
		Session:     e.sess,
		API:         e.client,
		Logger:      e.log,
		Expired:     e.expired,
	}
	return i.Do(cmd.Context())
}
