package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/export"
	"github.com/fbettag/mdb/internal/theme"
)

func badges(st theme.Styles, r *catalog.Record) string {
	var out []string
	add := func(on bool, style lipgloss.Style, text string) {
		if on {
			out = append(out, style.Render(text))
		}
	}
	add(catalog.Flag(r.Reasoning), st.BadgeOK, "Reasoning")
	add(catalog.Flag(r.ToolCall), st.BadgeOK, "Tools")
	add(catalog.Flag(r.Structured), st.BadgeOK, "Structured")
	add(catalog.Flag(r.Attachment), st.BadgeDim, "Attachments")
	add(catalog.Flag(r.OpenWeights), st.BadgeWarn, "Open Weights")
	add(r.Status == catalog.StatusDeprecated, st.BadgeBad, "Deprecated")
	add(r.Status == catalog.StatusBeta, st.BadgeWarn, "Beta")
	add(r.Status == catalog.StatusAlpha, st.BadgeBad, "Alpha")
	return strings.Join(out, " ")
}

func renderCard(st theme.Styles, c export.Card, width int) string {
	labelW := 0
	for _, kv := range c.Rows {
		labelW = max(labelW, lipgloss.Width(kv.Label))
	}
	title := st.CardTitle.Render(c.Title)
	if c.Note != "" {
		title += " " + st.Dim.Render(c.Note)
	}
	lines := []string{title}
	for _, kv := range c.Rows {
		lines = append(lines, st.Dim.Render(fmt.Sprintf("%-*s", labelW, kv.Label))+"  "+kv.Value)
	}
	return st.Card.Width(width).Render(strings.Join(lines, "\n"))
}

// detailView renders the detail overlay for one record.
func detailView(st theme.Styles, r *catalog.Record, width int) string {
	inner := max(40, min(width-8, 96))
	hero := []string{
		st.Dim.Render(r.ProviderName),
		st.Title.Render(r.Name),
		st.Dim.Render(r.ModelID),
	}
	if b := badges(st, r); b != "" {
		hero = append(hero, b)
	}

	cards := export.Cards(r)
	var body string
	if inner >= 80 {
		half := inner/2 - 1
		left := lipgloss.JoinVertical(lipgloss.Left, renderCard(st, cards[0], half), renderCard(st, cards[2], half))
		right := lipgloss.JoinVertical(lipgloss.Left, renderCard(st, cards[1], half), renderCard(st, cards[3], half))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		rendered := make([]string, len(cards))
		for i, c := range cards {
			rendered[i] = renderCard(st, c, inner)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}

	footer := st.Dim.Render("C copy all · y copy id · L copy link · esc close")
	return st.Overlay.Render(strings.Join([]string{strings.Join(hero, "\n"), "", body, "", footer}, "\n"))
}

// compareView renders the comparison overlay with best values highlighted.
func compareView(st theme.Styles, records []*catalog.Record, width int) string {
	g := export.CompareGrid(records)
	headers := make([]string, 0, len(records)+1)
	headers = append(headers, "")
	for _, r := range records {
		headers = append(headers, r.Name+"\n"+r.ProviderName)
	}
	rows := make([][]string, len(g.Rows))
	for i, gr := range g.Rows {
		rows[i] = append([]string{gr.Label}, gr.Cells...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(st.Palette.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(st.Title)
			case col == 0:
				return base.Inherit(st.Dim)
			case row >= 0 && row < len(g.Rows) && col-1 < len(g.Rows[row].Best) && g.Rows[row].Best[col-1]:
				return base.Inherit(st.Best)
			default:
				return base
			}
		})
	if width > 0 {
		t = t.Width(min(width-6, 40+28*len(records)))
	}

	title := st.Title.Render("Compare models")
	footer := st.Dim.Render("C copy grid · M copy markdown · L copy link · esc close")
	return st.Overlay.Render(strings.Join([]string{title, "", t.Render(), "", footer}, "\n"))
}
