// Package uiutil holds small text helpers shared by the renderers.
package uiutil

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most width cells, ending with an ellipsis when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), Ellipsis)
}

// Pad right-pads s with spaces to exactly width cells, truncating first.
func Pad(s string, width int) string {
	s = Truncate(s, width)
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// Wrap word-wraps s at width and returns at most maxLines lines; a cut final
// line ends with an ellipsis.
func Wrap(s string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	lines := strings.Split(wordwrap.String(s, width), "\n")
	for i := range lines {
		lines[i] = Truncate(lines[i], width)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := strings.TrimRight(lines[maxLines-1], " ")
		lines[maxLines-1] = truncate.String(last, uint(max(width-1, 0))) + Ellipsis
	}
	return lines
}

// FirstLine returns the first line of s.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// StripANSI removes escape sequences, leaving the printable text.
func StripANSI(s string) string {
	var b strings.Builder
	inSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			inSeq = true
			continue
		}
		if inSeq {
			if ansi.IsTerminator(r) {
				inSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
