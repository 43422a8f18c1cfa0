package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects a machine readable encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Structured writes v as indented JSON or YAML. YAML keys follow the JSON
// field names.
func Structured(w io.Writer, format Format, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("printers: encode: %w", err)
	}
	switch format {
	case FormatYAML:
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("printers: re-decode: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("printers: yaml: %w", err)
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}
}
