// Package layout decides how the root view splits the terminal between the
// sidebar and the active view.
package layout

// DefaultSidebarBreakpoint is used when the configured breakpoint is not
// positive.
const DefaultSidebarBreakpoint = 100

// SidebarWidth is the width of the sidebar in both placements.
const SidebarWidth = 22

// Placement is where the sidebar is drawn.
type Placement int

const (
	// Hidden means the sidebar is closed.
	Hidden Placement = iota
	// Docked places the sidebar beside the view, shrinking it.
	Docked
	// Overlay draws the sidebar on top of the view.
	Overlay
)

func (p Placement) String() string {
	switch p {
	case Docked:
		return "docked"
	case Overlay:
		return "overlay"
	default:
		return "hidden"
	}
}

// Policy holds the configured breakpoint. Widths at or above the breakpoint
// dock the sidebar; narrower terminals get an overlay.
type Policy struct {
	SidebarBreakpoint int
}

// Frame is the result of Compute.
type Frame struct {
	Sidebar      Placement
	SidebarWidth int
	MainWidth    int
	Height       int
}

func (p Policy) breakpoint() int {
	if p.SidebarBreakpoint <= 0 {
		return DefaultSidebarBreakpoint
	}
	return p.SidebarBreakpoint
}

// Wide reports whether width is at or above the breakpoint.
func (p Policy) Wide(width int) bool {
	return width >= p.breakpoint()
}

// Compute splits a width x height terminal given whether the sidebar is open.
func (p Policy) Compute(width, height int, sidebarOpen bool) Frame {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	f := Frame{MainWidth: width, Height: height}
	if !sidebarOpen {
		return f
	}
	f.SidebarWidth = min(SidebarWidth, width)
	if p.Wide(width) {
		f.Sidebar = Docked
		f.MainWidth = max(width-f.SidebarWidth, 1)
		return f
	}
	f.Sidebar = Overlay
	return f
}
