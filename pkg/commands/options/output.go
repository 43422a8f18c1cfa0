package options

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	JSON   bool
	Output string
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
	cmd.Flags().StringVarP(&po.Output, "output", "o", "",
		"Output format. One of 'json' or 'yaml'.")
}

// Format returns the structured format requested, or "" for pretty output.
func (o *OutputOptions) Format() (printers.Format, error) {
	if o.JSON {
		return printers.FormatJSON, nil
	}
	switch f := printers.Format(strings.ToLower(strings.TrimSpace(o.Output))); f {
	case "":
		return "", nil
	case printers.FormatJSON, printers.FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected json or yaml)", o.Output)
	}
}

// Structured reports whether machine readable output was requested.
func (o *OutputOptions) Structured() bool {
	f, err := o.Format()
	return err == nil && f != ""
}

// Print writes v in the requested structured format.
func (o *OutputOptions) Print(v any) error {
	f, err := o.Format()
	if err != nil {
		return err
	}
	return printers.Structured(color.Output, f, v)
}

func (o *OutputOptions) HandleError(err error) error {
	if o.Structured() && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
