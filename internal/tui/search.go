package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/fbettag/mdb/internal/catalog"
)

const maxSuggestions = 5

// suggestion is a pill the search bar offers for the word being typed.
type suggestion struct {
	Label string
	Pill  catalog.Pill
}

// searchBar is the text input plus the pills accepted so far.
type searchBar struct {
	input      textinput.Model
	pills      []catalog.Pill
	candidates []suggestion
	targets    []string
	suggested  []suggestion
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search models (/ or ctrl+k)"
	ti.Prompt = "/ "
	ti.CharLimit = 256
	return ti
}

func newSearchBar() searchBar {
	return searchBar{input: newSearchInput()}
}

// setCatalog derives the suggestion candidates: every provider by name and
// id, and every family.
func (s *searchBar) setCatalog(store *catalog.Store) {
	s.candidates = s.candidates[:0]
	seen := map[string]bool{}
	add := func(label string, pill catalog.Pill) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		s.candidates = append(s.candidates, suggestion{Label: label, Pill: pill})
	}
	for _, p := range store.Providers() {
		pill := catalog.Pill{Kind: catalog.PillProvider, Value: p.ID}
		add(p.Name, pill)
		add(p.ID, pill)
	}
	for _, f := range store.Families() {
		add(f, catalog.Pill{Kind: catalog.PillFamily, Value: f})
	}
	s.targets = make([]string, len(s.candidates))
	for i, c := range s.candidates {
		s.targets[i] = c.Label
	}
}

// filter is the constraint set the bar currently expresses. Typed
// "provider:x" / "family:y" words count as pills too.
func (s searchBar) filter() catalog.Filter {
	f := catalog.ParseQuery(s.input.Value())
	f.Pills = append(slices.Clone(s.pills), f.Pills...)
	return f
}

func (s searchBar) currentWord() string {
	v := s.input.Value()
	if v == "" || strings.HasSuffix(v, " ") {
		return ""
	}
	fields := strings.Fields(v)
	return fields[len(fields)-1]
}

// refreshSuggestions ranks candidates against the word under the cursor.
func (s *searchBar) refreshSuggestions() {
	s.suggested = rankSuggestions(s.currentWord(), s.candidates, s.targets, s.pills)
}

func rankSuggestions(word string, candidates []suggestion, targets []string, taken []catalog.Pill) []suggestion {
	if word == "" || strings.Contains(word, ":") {
		return nil
	}
	ranks := fuzzy.RankFindFold(word, targets)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})
	var out []suggestion
	seen := map[catalog.Pill]bool{}
	for _, p := range taken {
		seen[p] = true
	}
	for _, r := range ranks {
		c := candidates[r.OriginalIndex]
		if seen[c.Pill] {
			continue
		}
		seen[c.Pill] = true
		out = append(out, c)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// accept turns the top suggestion into a pill and drops the word it came
// from. It reports whether anything changed.
func (s *searchBar) accept() bool {
	if len(s.suggested) == 0 {
		return false
	}
	s.pills = append(s.pills, s.suggested[0].Pill)
	fields := strings.Fields(s.input.Value())
	if len(fields) > 0 {
		fields = fields[:len(fields)-1]
	}
	v := strings.Join(fields, " ")
	if v != "" {
		v += " "
	}
	s.input.SetValue(v)
	s.input.CursorEnd()
	s.refreshSuggestions()
	return true
}

// popPill removes the last pill. It reports whether one was removed.
func (s *searchBar) popPill() bool {
	if len(s.pills) == 0 {
		return false
	}
	s.pills = s.pills[:len(s.pills)-1]
	s.refreshSuggestions()
	return true
}

func (s *searchBar) clear() {
	s.pills = nil
	s.input.Reset()
	s.suggested = nil
}

func (s searchBar) focused() bool {
	return s.input.Focused()
}

func (s *searchBar) focus() tea.Cmd {
	return s.input.Focus()
}

func (s *searchBar) blur() {
	s.input.Blur()
	s.suggested = nil
}

// update feeds a key to the input and reports whether the filter changed.
func (s *searchBar) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		return s.accept(), nil
	case tea.KeyBackspace:
		if s.input.Value() == "" {
			return s.popPill(), nil
		}
	}
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return false, cmd
	}
	s.refreshSuggestions()
	return true, cmd
}
