package export

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/fbettag/mdb/internal/catalog"
)

type better int

const (
	noBest better = iota
	lower
	higher
)

type compareRow struct {
	label  string
	text   func(*catalog.Record) string
	value  func(*catalog.Record) *float64
	better better
}

var compareRows = []compareRow{
	{label: "Provider", text: func(r *catalog.Record) string { return r.ProviderName }},
	{label: "Model ID", text: func(r *catalog.Record) string { return r.ModelID }},
	{label: "Family", text: func(r *catalog.Record) string { return Text(r.Family) }},
	{label: "Input /M", text: func(r *catalog.Record) string { return Money(costOf(r).Input) },
		value: func(r *catalog.Record) *float64 { return costOf(r).Input }, better: lower},
	{label: "Output /M", text: func(r *catalog.Record) string { return Money(costOf(r).Output) },
		value: func(r *catalog.Record) *float64 { return costOf(r).Output }, better: lower},
	{label: "Reasoning /M", text: func(r *catalog.Record) string { return Money(costOf(r).Reasoning) },
		value: func(r *catalog.Record) *float64 { return costOf(r).Reasoning }, better: lower},
	{label: "Context", text: func(r *catalog.Record) string { return Number(limitOf(r).Context) },
		value: func(r *catalog.Record) *float64 { return limitOf(r).Context }, better: higher},
	{label: "Max Input", text: func(r *catalog.Record) string { return Number(limitOf(r).Input) },
		value: func(r *catalog.Record) *float64 { return limitOf(r).Input }, better: higher},
	{label: "Max Output", text: func(r *catalog.Record) string { return Number(limitOf(r).Output) },
		value: func(r *catalog.Record) *float64 { return limitOf(r).Output }, better: higher},
	{label: "Reasoning", text: func(r *catalog.Record) string { return Check(r.Reasoning) }},
	{label: "Tools", text: func(r *catalog.Record) string { return Check(r.ToolCall) }},
	{label: "Structured", text: func(r *catalog.Record) string { return Check(r.Structured) }},
	{label: "Open Weights", text: func(r *catalog.Record) string { return Weights(r.OpenWeights) }},
	{label: "Input Modalities", text: func(r *catalog.Record) string { return List(modalitiesOf(r).Input) }},
	{label: "Knowledge", text: func(r *catalog.Record) string { return Text(r.Knowledge) }},
	{label: "Released", text: func(r *catalog.Record) string { return Text(r.ReleaseDate) }},
}

// Best returns the indexes holding the best non-null value, in ascending
// order. Ties are all best; an all-null row has none.
func Best(values []*float64, lowerIsBetter bool) []int {
	var target *float64
	for _, v := range values {
		if v == nil {
			continue
		}
		if target == nil || (lowerIsBetter && *v < *target) || (!lowerIsBetter && *v > *target) {
			target = v
		}
	}
	if target == nil {
		return nil
	}
	var out []int
	for i, v := range values {
		if v != nil && *v == *target {
			out = append(out, i)
		}
	}
	return out
}

// GridRow is one labelled row of a comparison.
type GridRow struct {
	Label string
	Cells []string
	// Best marks cells holding the best value of the row.
	Best []bool
}

// Grid is a comparison laid out with one column per record.
type Grid struct {
	Names []string
	Rows  []GridRow
}

// CompareGrid builds the comparison for records in the given order.
func CompareGrid(records []*catalog.Record) Grid {
	g := Grid{Names: make([]string, len(records))}
	for i, r := range records {
		g.Names[i] = r.Name
	}
	for _, row := range compareRows {
		gr := GridRow{
			Label: row.label,
			Cells: make([]string, len(records)),
			Best:  make([]bool, len(records)),
		}
		values := make([]*float64, len(records))
		for i, r := range records {
			gr.Cells[i] = row.text(r)
			if row.value != nil {
				values[i] = row.value(r)
			}
		}
		if row.better != noBest {
			for _, i := range Best(values, row.better == lower) {
				gr.Best[i] = true
			}
		}
		g.Rows = append(g.Rows, gr)
	}
	return g
}

func pad(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-ansi.StringWidth(s)))
}

// CompareText renders the comparison as a fixed-width grid.
func CompareText(records []*catalog.Record) string {
	g := CompareGrid(records)
	labelW := 0
	for _, row := range g.Rows {
		labelW = max(labelW, ansi.StringWidth(row.Label))
	}
	colW := make([]int, len(g.Names))
	for i, name := range g.Names {
		colW[i] = ansi.StringWidth(name)
		for _, row := range g.Rows {
			colW[i] = max(colW[i], ansi.StringWidth(row.Cells[i]))
		}
	}

	line := func(label string, cells []string) string {
		var b strings.Builder
		b.WriteString(pad(label, labelW+2))
		for i, c := range cells {
			b.WriteString(pad(c, colW[i]+2))
		}
		return strings.TrimRight(b.String(), " ")
	}

	lines := []string{"Compare models", "", line("", g.Names), ""}
	for _, row := range g.Rows {
		lines = append(lines, line(row.Label, row.Cells))
	}
	return strings.Join(lines, "\n")
}

// CompareMarkdown renders the comparison as a pipe table with best values in
// bold.
func CompareMarkdown(records []*catalog.Record) string {
	g := CompareGrid(records)
	esc := strings.NewReplacer("|", `\|`)
	row := func(cells ...string) string {
		return "| " + strings.Join(cells, " | ") + " |"
	}

	header := append([]string{""}, g.Names...)
	for i := range header {
		header[i] = esc.Replace(header[i])
	}
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	lines := []string{row(header...), row(sep...)}
	for _, gr := range g.Rows {
		cells := []string{esc.Replace(gr.Label)}
		for i, c := range gr.Cells {
			c = esc.Replace(c)
			if gr.Best[i] {
				c = "**" + c + "**"
			}
			cells = append(cells, c)
		}
		lines = append(lines, row(cells...))
	}
	return strings.Join(lines, "\n")
}
