package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/export"
	"github.com/fbettag/mdb/internal/render"
	"github.com/fbettag/mdb/internal/theme"
)

const (
	checkWidth = 4
	cellGap    = 2
)

// layout holds the fixed column widths, computed once per dataset.
type layout struct {
	widths []int
}

var (
	textCaps = map[string][2]int{
		"provider": {8, 22},
		"name":     {5, 30},
		"id":       {8, 34},
		"family":   {6, 16},
	}
	fixedWidths = map[string]int{
		"input":     9,
		"output":    9,
		"context":   9,
		"max_out":   9,
		"reasoning": 9,
		"tools":     5,
		"struct":    6,
		"weights":   7,
	}
)

func newLayout(store *catalog.Store) layout {
	widths := make([]int, len(catalog.Columns))
	full := store.Full()
	for i, col := range catalog.Columns {
		if w, ok := fixedWidths[col.ID]; ok {
			widths[i] = max(w, ansi.StringWidth(col.Label)+2)
			continue
		}
		bounds := textCaps[col.ID]
		w := bounds[0]
		for j := 0; j < full.Len(); j++ {
			w = max(w, ansi.StringWidth(export.Cell(col.ID, full.At(j))))
			if w >= bounds[1] {
				w = bounds[1]
				break
			}
		}
		widths[i] = w
	}
	return layout{widths: widths}
}

func fit(s string, w int, right bool) string {
	s = ansi.Truncate(s, w, "…")
	gap := strings.Repeat(" ", max(0, w-ansi.StringWidth(s)))
	if right {
		return gap + s
	}
	return s + gap
}

// header renders the column titles with the sort arrow and the focused
// column marked.
func (l layout) header(st theme.Styles, sort catalog.SortSpec, focus int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", checkWidth))
	for i, col := range catalog.Columns {
		label := col.Label
		style := st.Header
		if col.ID == sort.Column {
			arrow := "▲"
			if sort.Direction == catalog.Descending {
				arrow = "▼"
			}
			label += " " + arrow
			style = st.HeaderSorted
		}
		if i == focus {
			style = style.Underline(true)
		}
		if i > 0 {
			b.WriteString(strings.Repeat(" ", cellGap))
		}
		b.WriteString(style.Render(fit(label, l.widths[i], col.Numeric)))
	}
	return b.String()
}

// row renders one materialized row.
func (l layout) row(st theme.Styles, n render.Node, cursor bool) string {
	rec := n.Record
	check := "[ ] "
	if n.Selected {
		check = "[x] "
	}
	var b strings.Builder
	b.WriteString(check)
	for i, col := range catalog.Columns {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", cellGap))
		}
		cell := fit(export.Cell(col.ID, rec), l.widths[i], col.Numeric)
		if col.Kind == catalog.KindBool && strings.TrimSpace(cell) == "✓" && !cursor && !n.Selected {
			cell = st.Yes.Render(cell)
		}
		b.WriteString(cell)
	}
	line := b.String()
	switch {
	case cursor:
		return st.Cursor.Render(line)
	case n.Selected:
		return st.Selected.Render(line)
	case rec.Status == catalog.StatusDeprecated:
		return st.Deprecated.Render(line)
	default:
		return line
	}
}

// scrollbar returns one glyph per body line. The thumb spans the visible
// share of the scroll height.
func scrollbar(st theme.Styles, offset, height, scrollHeight int) []string {
	out := make([]string, height)
	if height <= 0 {
		return out
	}
	if scrollHeight <= height {
		for i := range out {
			out[i] = " "
		}
		return out
	}
	thumb := max(1, height*height/scrollHeight)
	start := offset * height / scrollHeight
	if start+thumb > height {
		start = height - thumb
	}
	for i := range out {
		if i >= start && i < start+thumb {
			out[i] = st.ScrollThumb.Render("┃")
		} else {
			out[i] = st.ScrollTrack.Render("│")
		}
	}
	return out
}

// clip cuts a rendered line to the terminal width.
func clip(line string, width int) string {
	if width <= 0 {
		return line
	}
	return ansi.Truncate(line, width, "")
}

// padRight fills a rendered line to width.
func padRight(line string, width int) string {
	return line + strings.Repeat(" ", max(0, width-lipgloss.Width(line)))
}
