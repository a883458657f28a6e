package catalog

import (
	"strings"
)

// PillKind distinguishes structured filter constraints.
type PillKind string

const (
	PillProvider PillKind = "provider"
	PillFamily   PillKind = "family"
)

// Pill is a structured constraint shown next to the search box.
type Pill struct {
	Kind  PillKind
	Value string
}

func (p Pill) String() string {
	return string(p.Kind) + ":" + p.Value
}

// Filter combines pills with free text. Every pill and every whitespace
// separated term must match.
type Filter struct {
	Pills []Pill
	Text  string
}

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	return len(f.Pills) == 0 && strings.TrimSpace(f.Text) == ""
}

// Terms returns the lowercased free-text terms.
func (f Filter) Terms() []string {
	return strings.Fields(strings.ToLower(f.Text))
}

// String renders the filter in ParseQuery syntax.
func (f Filter) String() string {
	parts := make([]string, 0, len(f.Pills)+1)
	for _, p := range f.Pills {
		parts = append(parts, p.String())
	}
	if t := strings.TrimSpace(f.Text); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *Record) bool {
	return f.compile().match(r)
}

// ParseQuery reads "provider:openai family:gpt mini" style queries into a
// Filter. Unprefixed words become free text.
func ParseQuery(q string) Filter {
	var (
		f    Filter
		text []string
	)
	for _, word := range strings.Fields(q) {
		kind, value, ok := strings.Cut(word, ":")
		switch {
		case ok && value != "" && PillKind(strings.ToLower(kind)) == PillProvider:
			f.Pills = append(f.Pills, Pill{Kind: PillProvider, Value: value})
		case ok && value != "" && PillKind(strings.ToLower(kind)) == PillFamily:
			f.Pills = append(f.Pills, Pill{Kind: PillFamily, Value: value})
		default:
			text = append(text, word)
		}
	}
	f.Text = strings.Join(text, " ")
	return f
}

type matcher struct {
	providers []string
	families  []string
	terms     []string
}

func (f Filter) compile() matcher {
	m := matcher{terms: f.Terms()}
	for _, p := range f.Pills {
		switch p.Kind {
		case PillProvider:
			m.providers = append(m.providers, p.Value)
		case PillFamily:
			m.families = append(m.families, p.Value)
		}
	}
	return m
}

func (m matcher) match(r *Record) bool {
	for _, p := range m.providers {
		if r.ProviderID != p {
			return false
		}
	}
	for _, fam := range m.families {
		if !strings.EqualFold(r.Family, fam) {
			return false
		}
	}
	blob := r.SearchBlob()
	for _, t := range m.terms {
		if !strings.Contains(blob, t) {
			return false
		}
	}
	return true
}

// Filter derives the filtered view from the current order and returns the
// number of matches. An empty filter shares the full order instead of copying it.
func (s *Store) Filter(f Filter) int {
	s.filter = Filter{Pills: append([]Pill(nil), f.Pills...), Text: f.Text}
	if f.Empty() {
		s.filtered = s.order
		return len(s.filtered)
	}
	m := f.compile()
	out := make([]int, 0, len(s.order))
	for _, i := range s.order {
		if m.match(&s.records[i]) {
			out = append(out, i)
		}
	}
	s.filtered = out
	return len(out)
}
