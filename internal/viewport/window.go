// Package viewport computes which rows of a long list must be materialized for
// a given scroll position.
package viewport

import "time"

const (
	// RowHeight is the fixed row height of the browser table in pixels.
	RowHeight = 34
	// Overscan rows are materialized above and below the visible area.
	Overscan = 8
	// FrameInterval is one display refresh at 60Hz.
	FrameInterval = time.Second / 60
)

// Params describe the scroll state. All lengths share one unit (pixels for a
// browser, lines for a terminal).
type Params struct {
	ScrollOffset   int
	RowHeight      int
	Overscan       int
	ViewportHeight int
	TotalRows      int
}

// Window is the half-open row range [Start, End).
type Window struct {
	Start int
	End   int
}

// Len is the number of materialized rows.
func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether row i is materialized.
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// Compute returns the rows to materialize. The range reaches overscan rows
// above the first visible row and the visible count plus twice the overscan
// below it, clamped to the list.
func Compute(p Params) Window {
	rh := p.RowHeight
	if rh <= 0 {
		rh = 1
	}
	over := max(p.Overscan, 0)
	total := max(p.TotalRows, 0)
	offset := max(p.ScrollOffset, 0)
	height := max(p.ViewportHeight, 0)

	first := offset / rh
	visible := (height + rh - 1) / rh
	start := max(0, first-over)
	end := min(total, first+visible+2*over)
	if start > end {
		start = end
	}
	return Window{Start: start, End: end}
}

// Windower memoizes the last computed window so callers can skip redundant
// render passes.
type Windower struct {
	last  Window
	valid bool
}

// Update computes the window for p and reports whether it differs from the
// previous one.
func (w *Windower) Update(p Params) (Window, bool) {
	next := Compute(p)
	if w.valid && next == w.last {
		return next, false
	}
	w.last = next
	w.valid = true
	return next, true
}

// Last returns the most recent window.
func (w *Windower) Last() Window {
	return w.last
}

// Reset forgets the last window so the next Update reports a change.
func (w *Windower) Reset() {
	w.valid = false
}

// Coalescer collapses bursts of scroll notifications into one recompute per
// frame. Request returns true only for the first notification since the last
// Fire; the caller schedules exactly one frame when it does.
type Coalescer struct {
	pending bool
}

// Request notes a scroll change and reports whether a frame must be scheduled.
func (c *Coalescer) Request() bool {
	if c.pending {
		return false
	}
	c.pending = true
	return true
}

// Fire is called when the scheduled frame runs. It reports whether a change
// was pending.
func (c *Coalescer) Fire() bool {
	was := c.pending
	c.pending = false
	return was
}

// Pending reports whether a frame is scheduled.
func (c *Coalescer) Pending() bool {
	return c.pending
}
