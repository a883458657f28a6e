// Package render materializes a window of the filtered catalog onto a surface:
// a leading spacer, one node per visible row and a trailing spacer, so the
// surface keeps the full scroll height while holding only the window's rows.
package render

import (
	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/viewport"
)

// NodeKind tells spacers from rows.
type NodeKind int

const (
	LeadSpacer NodeKind = iota
	RowNode
	TrailSpacer
)

// Node is one element of the rendered body.
type Node struct {
	Kind NodeKind
	// Height is the spacer height; rows always take one row height.
	Height int
	// Index is the row's position in the filtered view.
	Index    int
	Record   *catalog.Record
	Selected bool
}

// Surface receives render output. Replace swaps the whole body; Patch swaps
// the node at position pos and nothing else.
type Surface interface {
	Replace(nodes []Node)
	Patch(pos int, node Node)
}

// Selected reports whether a key is in the comparison set.
type Selected interface {
	Has(key string) bool
}

// Renderer drives a Surface from scroll state. It re-renders only when the
// window changes or after Invalidate.
type Renderer struct {
	surface   Surface
	rowHeight int
	overscan  int
	windower  viewport.Windower
	window    viewport.Window
	total     int
	nodes     []Node
	positions map[string]int
	passes    int
}

// New returns a renderer for rows of rowHeight with the given overscan.
func New(surface Surface, rowHeight, overscan int) *Renderer {
	if rowHeight <= 0 {
		rowHeight = 1
	}
	return &Renderer{
		surface:   surface,
		rowHeight: rowHeight,
		overscan:  overscan,
		positions: make(map[string]int),
	}
}

// Draw computes the window for the scroll state and fully replaces the surface
// when it changed. It reports whether a render pass happened.
func (r *Renderer) Draw(view catalog.View, sel Selected, scrollOffset, viewportHeight int) bool {
	win, changed := r.windower.Update(viewport.Params{
		ScrollOffset:   scrollOffset,
		RowHeight:      r.rowHeight,
		Overscan:       r.overscan,
		ViewportHeight: viewportHeight,
		TotalRows:      view.Len(),
	})
	if !changed {
		return false
	}
	r.window = win
	r.total = view.Len()

	nodes := make([]Node, 0, win.Len()+2)
	clear(r.positions)
	if lead := win.Start * r.rowHeight; lead > 0 {
		nodes = append(nodes, Node{Kind: LeadSpacer, Height: lead})
	}
	for i := win.Start; i < win.End; i++ {
		rec := view.At(i)
		r.positions[rec.Key()] = len(nodes)
		nodes = append(nodes, Node{
			Kind:     RowNode,
			Height:   r.rowHeight,
			Index:    i,
			Record:   rec,
			Selected: sel != nil && sel.Has(rec.Key()),
		})
	}
	if trail := max(0, (r.total-win.End)*r.rowHeight); trail > 0 {
		nodes = append(nodes, Node{Kind: TrailSpacer, Height: trail})
	}
	r.nodes = nodes
	r.passes++
	r.surface.Replace(append([]Node(nil), nodes...))
	return true
}

// Invalidate forces the next Draw to re-render. Sorting and filtering change
// row identity without necessarily changing the window, so they call this.
func (r *Renderer) Invalidate() {
	r.windower.Reset()
}

// PatchSelection updates the selected state of one materialized row. Rows
// outside the window are skipped; they pick the state up on their next render.
func (r *Renderer) PatchSelection(key string, selected bool) bool {
	pos, ok := r.positions[key]
	if !ok {
		return false
	}
	node := r.nodes[pos]
	if node.Selected == selected {
		return false
	}
	node.Selected = selected
	r.nodes[pos] = node
	r.surface.Patch(pos, node)
	return true
}

// Window is the currently materialized range.
func (r *Renderer) Window() viewport.Window {
	return r.window
}

// Passes counts full replaces.
func (r *Renderer) Passes() int {
	return r.passes
}

// RowHeight is the configured row height.
func (r *Renderer) RowHeight() int {
	return r.rowHeight
}

// ScrollHeight sums the rendered node heights; it equals total rows times row
// height whenever a pass has happened.
func (r *Renderer) ScrollHeight() int {
	h := 0
	for _, n := range r.nodes {
		h += n.Height
	}
	return h
}
