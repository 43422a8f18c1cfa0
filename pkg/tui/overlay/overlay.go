// Package overlay draws modal content on top of an already rendered view.
package overlay

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/planner/pkg/tui/uiutil"
)

// Anchor selects where the foreground is placed.
type Anchor int

const (
	// Center places the foreground in the middle of the screen.
	Center Anchor = iota
	// Left docks the foreground against the left edge, full height.
	Left
)

// Placement controls overlay alignment.
type Placement struct {
	Anchor  Anchor
	MarginX int
	MarginY int
}

// Compose draws foreground atop background. Background cells outside the
// foreground's bounds are kept, including their styling.
func Compose(background string, width, height int, foreground string, p Placement) string {
	bg := normalize(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bg, "\n")
	}
	fg := strings.Split(foreground, "\n")

	fw := 0
	for _, line := range fg {
		if w := ansi.PrintableRuneWidth(line); w > fw {
			fw = w
		}
	}
	if fw > width {
		fw = width
	}
	fh := len(fg)
	if fh > height {
		fh = height
		fg = fg[:fh]
	}

	x, y := p.MarginX, p.MarginY
	if p.Anchor == Center {
		x = (width - fw) / 2
		y = (height - fh) / 2
	}
	x = clamp(x, 0, width-fw)
	y = clamp(y, 0, height-fh)

	for row, line := range fg {
		base := bg[y+row]
		bg[y+row] = truncate.String(base, uint(x)) + "\x1b[0m" +
			uiutil.Pad(truncate.String(line, uint(fw)), fw) + "\x1b[0m" +
			skip(base, x+fw)
	}
	return strings.Join(bg, "\n")
}

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = uiutil.Pad(truncate.String(lines[i], uint(width)), width)
	}
	return lines
}

// skip drops the first n printable cells of s. Escape sequences seen while
// skipping are kept so the remainder renders with the right style.
func skip(s string, n int) string {
	var (
		b       strings.Builder
		seen    int
		inEsc   bool
		started bool
	)
	for _, r := range s {
		if started {
			b.WriteRune(r)
			continue
		}
		if r == ansi.Marker {
			inEsc = true
		}
		if inEsc {
			b.WriteRune(r)
			if ansi.IsTerminator(r) {
				inEsc = false
			}
			continue
		}
		w := ansi.PrintableRuneWidth(string(r))
		if seen+w > n {
			started = true
			if seen < n {
				b.WriteString(strings.Repeat(" ", seen+w-n))
				continue
			}
			b.WriteRune(r)
			continue
		}
		seen += w
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
