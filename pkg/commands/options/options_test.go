package options

import (
	"testing"
	"time"

	"tableflip.dev/planner/pkg/printers"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 4, 0, 0, time.Local)
	tests := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"empty":           {in: "", want: ""},
		"today":           {in: "today", want: "2025-03-10"},
		"tomorrow":        {in: "Tomorrow", want: "2025-03-11"},
		"iso":             {in: "2025-04-01", want: "2025-04-01"},
		"iso short":       {in: "2025-4-1", want: "2025-04-01"},
		"month day ahead": {in: "3/20", want: "2025-03-20"},
		"month day wraps": {in: "1/5", want: "2026-01-05"},
		"garbage":         {in: "someday", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseDue(tc.in, now)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDue(%q): %v", tc.in, err)
			}
			var s string
			if got != nil {
				s = got.Format("2006-01-02")
			}
			if s != tc.want {
				t.Fatalf("parseDue(%q) = %q, want %q", tc.in, s, tc.want)
			}
		})
	}
}

func TestDueValidate(t *testing.T) {
	o := DueOptions{DueString: "today", ClearDue: true}
	if err := o.Validate(); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestOutputFormat(t *testing.T) {
	if f, _ := (&OutputOptions{JSON: true, Output: "yaml"}).Format(); f != printers.FormatJSON {
		t.Fatalf("--json should win, got %q", f)
	}
	if f, _ := (&OutputOptions{Output: "YAML"}).Format(); f != printers.FormatYAML {
		t.Fatalf("format = %q", f)
	}
	if _, err := (&OutputOptions{Output: "xml"}).Format(); err == nil {
		t.Fatalf("expected error for xml")
	}
	if (&OutputOptions{}).Structured() {
		t.Fatalf("default output should be pretty")
	}
}
