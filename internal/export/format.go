// Package export turns records into copyable text: the detail block, the
// comparison grids and the per-column table cells.
package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/fbettag/mdb/internal/catalog"
)

// Dash stands in for missing values.
const Dash = "—"

// Money formats a per-million price as dollars with two decimals.
func Money(v *float64) string {
	if v == nil {
		return Dash
	}
	return "$" + strconv.FormatFloat(*v, 'f', 2, 64)
}

// Number formats a count with thousands separators and at most three
// decimals.
func Number(v *float64) string {
	if v == nil {
		return Dash
	}
	f := math.Round(*v*1000) / 1000
	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteString(sign)
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Check renders a capability flag as a tick or a dash.
func Check(v *bool) string {
	if catalog.Flag(v) {
		return "✓"
	}
	return Dash
}

// Weights describes the open-weights flag.
func Weights(v *bool) string {
	if catalog.Flag(v) {
		return "Open"
	}
	return "Closed"
}

// Text returns s, or Dash when s is empty.
func Text(s string) string {
	if s == "" {
		return Dash
	}
	return s
}

// List joins values with ", ", or returns Dash for a nil list.
func List(values []string) string {
	if values == nil {
		return Dash
	}
	return strings.Join(values, ", ")
}

func costOf(r *catalog.Record) catalog.Cost {
	if r.Cost == nil {
		return catalog.Cost{}
	}
	return *r.Cost
}

func limitOf(r *catalog.Record) catalog.Limit {
	if r.Limit == nil {
		return catalog.Limit{}
	}
	return *r.Limit
}

func modalitiesOf(r *catalog.Record) catalog.Modalities {
	if r.Modalities == nil {
		return catalog.Modalities{}
	}
	return *r.Modalities
}

// Cell is the table text for one column of a record.
func Cell(columnID string, r *catalog.Record) string {
	switch columnID {
	case "provider":
		return r.ProviderName
	case "name":
		return r.Name
	case "id":
		return r.ModelID
	case "family":
		return Text(r.Family)
	case "input":
		return Money(costOf(r).Input)
	case "output":
		return Money(costOf(r).Output)
	case "context":
		return Number(limitOf(r).Context)
	case "max_out":
		return Number(limitOf(r).Output)
	case "reasoning":
		return Check(r.Reasoning)
	case "tools":
		return Check(r.ToolCall)
	case "struct":
		return Check(r.Structured)
	case "weights":
		return Weights(r.OpenWeights)
	default:
		return ""
	}
}
