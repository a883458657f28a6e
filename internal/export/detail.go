package export

import (
	"fmt"
	"strings"

	"github.com/fbettag/mdb/internal/catalog"
)

// KV is one labelled value of a detail card.
type KV struct {
	Label string
	Value string
}

// Card is a titled group of values.
type Card struct {
	Title string
	Note  string
	Rows  []KV
}

// Capabilities lists the capability names a record advertises.
func Capabilities(r *catalog.Record) []string {
	var caps []string
	if catalog.Flag(r.Reasoning) {
		caps = append(caps, "Reasoning")
	}
	if catalog.Flag(r.ToolCall) {
		caps = append(caps, "Tools")
	}
	if catalog.Flag(r.Structured) {
		caps = append(caps, "Structured Output")
	}
	if catalog.Flag(r.OpenWeights) {
		caps = append(caps, "Open Weights")
	}
	return caps
}

// Cards groups a record's values the way the detail view shows them. Optional
// prices only appear when published.
func Cards(r *catalog.Record) []Card {
	c := costOf(r)
	pricing := []KV{{"Input", Money(c.Input)}, {"Output", Money(c.Output)}}
	for _, opt := range []struct {
		label string
		v     *float64
	}{
		{"Reasoning", c.Reasoning},
		{"Cache Read", c.CacheRead},
		{"Cache Write", c.CacheWrite},
		{"Audio In", c.InputAudio},
		{"Audio Out", c.OutputAudio},
	} {
		if opt.v != nil {
			pricing = append(pricing, KV{opt.label, Money(opt.v)})
		}
	}

	l := limitOf(r)
	m := modalitiesOf(r)
	return []Card{
		{Title: "Pricing", Note: "per 1M tokens", Rows: pricing},
		{Title: "Limits", Rows: []KV{
			{"Context", Number(l.Context)},
			{"Max Input", Number(l.Input)},
			{"Max Output", Number(l.Output)},
		}},
		{Title: "Modalities", Rows: []KV{
			{"Input", List(m.Input)},
			{"Output", List(m.Output)},
		}},
		{Title: "Info", Rows: []KV{
			{"Family", Text(r.Family)},
			{"Knowledge", Text(r.Knowledge)},
			{"Released", Text(r.ReleaseDate)},
			{"Updated", Text(r.LastUpdated)},
		}},
	}
}

// DetailText is the plain-text block copied from the detail view. An empty
// providerName falls back to the record's own.
func DetailText(r *catalog.Record, providerName string) string {
	if providerName == "" {
		providerName = Text(r.ProviderName)
	}
	lines := []string{r.Name, providerName + " · " + r.ModelID, ""}
	if caps := Capabilities(r); len(caps) > 0 {
		lines = append(lines, strings.Join(caps, ", "), "")
	}
	for i, card := range Cards(r) {
		if i > 0 {
			lines = append(lines, "")
		}
		title := card.Title
		if card.Note != "" {
			title += " (" + card.Note + ")"
		}
		lines = append(lines, title)
		for _, kv := range card.Rows {
			lines = append(lines, fmt.Sprintf("  %-13s%s", kv.Label+":", kv.Value))
		}
	}
	return strings.Join(lines, "\n")
}
