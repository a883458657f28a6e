package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/config"
	"github.com/fbettag/mdb/internal/route"
	"github.com/fbettag/mdb/internal/theme"
)

type fetcher struct {
	data string
	err  error
}

func (f fetcher) Fetch(context.Context) ([]byte, error) { return []byte(f.data), f.err }

const payload = `{
  "p1": {"name": "One", "models": {"a": {"name": "A"}, "b": {"name": "B"}, "c": {"name": "C"}}},
  "p2": {"name": "Two", "models": {"d": {"name": "D"}, "e": {"name": "E"}}}
}`

func stubClipboard(t *testing.T) *string {
	t.Helper()
	var got string
	prev := writeClipboard
	writeClipboard = func(s string) error { got = s; return nil }
	t.Cleanup(func() { writeClipboard = prev })
	return &got
}

func loaded(t *testing.T, opts Options) model {
	t.Helper()
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher{data: payload}
	}
	opts.Logger = log.New(io.Discard)
	m := newModel(context.Background(), opts)
	msg := loadCatalog(m.ctx, m.opts, m.bus, m.log)()
	next, _ := m.Update(msg)
	return pump(next.(model))
}

// pump delivers queued bus events the way the listener command would.
func pump(m model) model {
	for _, env := range m.bus.Drain() {
		if cmd := m.handleEvent(env.Event); cmd != nil {
			if msg := cmd(); msg != nil {
				next, _ := m.Update(msg)
				m = next.(model)
			}
		}
	}
	return m
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = pump(next.(model))
	}
	return m
}

func TestLoadRendersTable(t *testing.T) {
	m := loaded(t, Options{})
	require.NotNil(t, m.session)

	out := m.View()
	assert.Contains(t, out, "models.dev")
	assert.Contains(t, out, "(5 models · 2 providers)")
	assert.Contains(t, out, "Loaded 5 models from 2 providers")
	assert.Contains(t, out, "compare 0/4")
}

func TestLoadFailureRendersError(t *testing.T) {
	m := loaded(t, Options{Fetcher: fetcher{err: errors.New("offline")}})
	assert.Nil(t, m.session)
	assert.Contains(t, m.View(), "offline")
}

func TestSpaceTogglesSelectionInPlace(t *testing.T) {
	m := loaded(t, Options{})
	key := m.cursorRecord().Key()

	m = press(m, " ")
	assert.True(t, m.session.Selection().Has(key))
	node, ok := m.buffer.Row(0)
	require.True(t, ok)
	assert.True(t, node.Selected)
	assert.Equal(t, 1, m.buffer.Patches())

	m = press(m, " ")
	node, _ = m.buffer.Row(0)
	assert.False(t, node.Selected)
}

func TestFifthSelectionIsRejected(t *testing.T) {
	m := loaded(t, Options{})
	m = press(m, " ", "j", " ", "j", " ", "j", " ", "j", " ")
	assert.Equal(t, 4, m.session.Selection().Len())
	assert.Contains(t, m.status, "at most 4")
}

func TestCompareOverlayCopiesMarkdown(t *testing.T) {
	clip := stubClipboard(t)
	m := loaded(t, Options{})
	m = press(m, "c")
	assert.Equal(t, route.None, m.session.View().Kind)

	m = press(m, " ", "j", " ", "c")
	require.Equal(t, route.Compare, m.session.View().Kind)
	assert.Contains(t, m.View(), "Compare models")

	m = press(m, "M")
	assert.True(t, strings.HasPrefix(*clip, "| "))
	assert.Equal(t, "Copied markdown comparison", m.status)

	m = press(m, "esc")
	assert.Equal(t, route.None, m.session.View().Kind)
	assert.Empty(t, m.session.Location())
}

func TestDetailLinkCopy(t *testing.T) {
	clip := stubClipboard(t)
	m := loaded(t, Options{LinkBase: "https://mdb.test/#stale"})
	key := m.cursorRecord().Key()

	m = press(m, "enter")
	require.Equal(t, route.Detail, m.session.View().Kind)
	assert.Equal(t, key, m.session.View().Key())

	m = press(m, "L")
	assert.Equal(t, "https://mdb.test/"+m.session.Location(), *clip)

	m = press(m, "C")
	assert.Contains(t, *clip, m.cursorRecord().Name)
}

func TestStartupLinkOpensComparison(t *testing.T) {
	m := loaded(t, Options{Open: "#compare=p1/a,p2/d"})
	require.Equal(t, route.Compare, m.session.View().Kind)
	assert.Equal(t, []string{"p1/a", "p2/d"}, m.session.Selection().Keys())
}

func TestSearchFiltersRows(t *testing.T) {
	m := loaded(t, Options{})
	m = press(m, "/", "two")
	assert.Equal(t, 2, m.total())
	assert.Contains(t, m.View(), "(2 models · 1 providers)")

	m = press(m, "esc")
	assert.False(t, m.search.focused())
	m = press(m, "esc")
	assert.Equal(t, 5, m.total())
}

func TestTabAcceptsProviderPill(t *testing.T) {
	m := loaded(t, Options{})
	m = press(m, "/", "Tw")
	require.NotEmpty(t, m.search.suggested)

	m = press(m, "tab")
	assert.Equal(t, []catalog.Pill{{Kind: catalog.PillProvider, Value: "p2"}}, m.search.pills)
	assert.Empty(t, m.search.input.Value())
	assert.Equal(t, 2, m.total())

	m = press(m, "backspace")
	assert.Empty(t, m.search.pills)
	assert.Equal(t, 5, m.total())
}

func TestSortKeyFlipsFocusedColumn(t *testing.T) {
	m := loaded(t, Options{})
	m = press(m, "s")
	assert.Equal(t, catalog.SortSpec{Column: "provider", Direction: catalog.Descending}, m.session.Store().Sorting())
	assert.Equal(t, "p2", m.cursorRecord().ProviderID)

	m = press(m, "l", "s")
	assert.Equal(t, catalog.Columns[1].ID, m.session.Store().Sorting().Column)
}

func TestWheelScrollCoalescesFrames(t *testing.T) {
	m := loaded(t, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: chrome + 2})
	m = next.(model)

	next, cmd := m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = next.(model)
	assert.NotNil(t, cmd)
	next, cmd = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = next.(model)
	assert.Nil(t, cmd)
	assert.True(t, m.frames.Pending())
	assert.Equal(t, 3, m.offset)
	assert.Equal(t, 3, m.cursor)

	next, _ = m.Update(frameMsg{})
	m = next.(model)
	assert.False(t, m.frames.Pending())
	_, ok := m.buffer.Row(4)
	assert.True(t, ok)
}

func TestThemeToggleSavesPrefs(t *testing.T) {
	var saved []config.Prefs
	m := loaded(t, Options{SavePrefs: func(p config.Prefs) error {
		saved = append(saved, p)
		return nil
	}})
	assert.Equal(t, theme.Dark, m.styles.Name)

	m = press(m, "t")
	assert.Equal(t, theme.Light, m.styles.Name)
	assert.Equal(t, []config.Prefs{{Theme: theme.Light}}, saved)
	assert.Contains(t, m.View(), theme.Glyph(theme.Light))
}

func TestRankSuggestions(t *testing.T) {
	p1 := catalog.Pill{Kind: catalog.PillProvider, Value: "openai"}
	p2 := catalog.Pill{Kind: catalog.PillProvider, Value: "openrouter"}
	candidates := []suggestion{
		{Label: "OpenAI", Pill: p1},
		{Label: "openai", Pill: p1},
		{Label: "OpenRouter", Pill: p2},
	}
	targets := []string{"OpenAI", "openai", "OpenRouter"}

	got := rankSuggestions("open", candidates, targets, nil)
	require.Len(t, got, 2)
	assert.Equal(t, p1, got[0].Pill)
	assert.Equal(t, p2, got[1].Pill)

	got = rankSuggestions("open", candidates, targets, []catalog.Pill{p1})
	require.Len(t, got, 1)
	assert.Equal(t, p2, got[0].Pill)

	assert.Nil(t, rankSuggestions("", candidates, targets, nil))
	assert.Nil(t, rankSuggestions("provider:op", candidates, targets, nil))
}

func TestScrollbar(t *testing.T) {
	st := theme.For(theme.Dark)
	for _, g := range scrollbar(st, 0, 4, 3) {
		assert.Equal(t, " ", g)
	}

	bar := scrollbar(st, 50, 10, 100)
	require.Len(t, bar, 10)
	thumb := st.ScrollThumb.Render("┃")
	for i, g := range bar {
		if i == 5 {
			assert.Equal(t, thumb, g)
		} else {
			assert.NotEqual(t, thumb, g)
		}
	}

	bar = scrollbar(st, 95, 10, 100)
	assert.Equal(t, thumb, bar[9])
}

func firstRowKey(t *testing.T, m model) string {
	t.Helper()
	node, ok := m.buffer.Row(0)
	require.True(t, ok)
	return node.Record.Key()
}

func TestSortRedrawsInSameUpdate(t *testing.T) {
	m := loaded(t, Options{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(model)

	want := m.session.Store().Filtered().At(0).Key()
	assert.Equal(t, "p2", m.session.Store().Filtered().At(0).ProviderID)
	assert.Equal(t, want, firstRowKey(t, m))
}

func TestFilterRedrawsInSameUpdate(t *testing.T) {
	m := loaded(t, Options{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = next.(model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("two")})
	m = next.(model)

	view := m.session.Store().Filtered()
	require.Equal(t, 2, view.Len())
	assert.Equal(t, view.At(0).Key(), firstRowKey(t, m))
	_, ok := m.buffer.Row(2)
	assert.False(t, ok)
	assert.NotContains(t, strings.Join(m.bodyLines(), "\n"), "One")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	assert.Equal(t, 5, m.session.Store().Filtered().Len())
	assert.Equal(t, m.session.Store().Filtered().At(0).Key(), firstRowKey(t, m))
}
