package options

import (
	"github.com/spf13/cobra"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Choose interactively instead of passing an id.`)
}

// ConfirmOptions
type ConfirmOptions struct {
	Yes bool
}

func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Do not ask for confirmation.")
}
