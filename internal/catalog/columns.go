package catalog

import "fmt"

// Kind decides how a column's values compare.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Column is a sortable table column.
type Column struct {
	ID    string
	Label string
	Kind  Kind
	// Numeric columns are right-aligned by renderers.
	Numeric bool
	value   func(*Record) sortValue
}

// sortValue is a precomputed comparison key; null sorts last in both directions.
type sortValue struct {
	null bool
	num  float64
	str  string
}

func str(s string) sortValue { return sortValue{str: s} }

func optStr(s string) sortValue {
	if s == "" {
		return sortValue{null: true}
	}
	return sortValue{str: s}
}

func num(v *float64) sortValue {
	if v == nil {
		return sortValue{null: true}
	}
	return sortValue{num: *v}
}

func boolean(v *bool) sortValue {
	if v == nil {
		return sortValue{null: true}
	}
	if *v {
		return sortValue{num: 1}
	}
	return sortValue{num: 0}
}

func costOf(r *Record) *Cost {
	if r.Cost == nil {
		return &Cost{}
	}
	return r.Cost
}

func limitOf(r *Record) *Limit {
	if r.Limit == nil {
		return &Limit{}
	}
	return r.Limit
}

// Columns lists the table columns in display order.
var Columns = []Column{
	{ID: "provider", Label: "Provider", Kind: KindString, value: func(r *Record) sortValue { return str(r.ProviderName) }},
	{ID: "name", Label: "Model", Kind: KindString, value: func(r *Record) sortValue { return str(r.Name) }},
	{ID: "id", Label: "Model ID", Kind: KindString, value: func(r *Record) sortValue { return str(r.ModelID) }},
	{ID: "family", Label: "Family", Kind: KindString, value: func(r *Record) sortValue { return optStr(r.Family) }},
	{ID: "input", Label: "Input /M", Kind: KindNumber, Numeric: true, value: func(r *Record) sortValue { return num(costOf(r).Input) }},
	{ID: "output", Label: "Output /M", Kind: KindNumber, Numeric: true, value: func(r *Record) sortValue { return num(costOf(r).Output) }},
	{ID: "context", Label: "Context", Kind: KindNumber, Numeric: true, value: func(r *Record) sortValue { return num(limitOf(r).Context) }},
	{ID: "max_out", Label: "Max Out", Kind: KindNumber, Numeric: true, value: func(r *Record) sortValue { return num(limitOf(r).Output) }},
	{ID: "reasoning", Label: "Reasoning", Kind: KindBool, value: func(r *Record) sortValue { return boolean(r.Reasoning) }},
	{ID: "tools", Label: "Tools", Kind: KindBool, value: func(r *Record) sortValue { return boolean(r.ToolCall) }},
	{ID: "struct", Label: "Struct", Kind: KindBool, value: func(r *Record) sortValue { return boolean(r.Structured) }},
	{ID: "weights", Label: "Weights", Kind: KindBool, value: func(r *Record) sortValue { return boolean(r.OpenWeights) }},
}

// ColumnByID resolves a column id such as "input" or "context".
func ColumnByID(id string) (Column, error) {
	for _, c := range Columns {
		if c.ID == id {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("unknown column %q", id)
}

// ColumnIDs returns all column ids in display order.
func ColumnIDs() []string {
	ids := make([]string, len(Columns))
	for i, c := range Columns {
		ids[i] = c.ID
	}
	return ids
}
