package browser

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/events"
	"github.com/fbettag/mdb/internal/route"
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

func quiet() Option {
	return WithLogger(log.New(io.Discard))
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(context.Background(), fetcher{data: payload}, quiet())
	require.NoError(t, err)
	s.Bus().Drain()
	return s
}

func names(envs []events.Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = e.Event.Name()
	}
	return out
}

func TestOpenPublishesDatasetLoaded(t *testing.T) {
	bus := events.NewBus()
	s, err := Open(context.Background(), fetcher{data: payload}, WithBus(bus), quiet())
	require.NoError(t, err)
	assert.Same(t, bus, s.Bus())

	got := bus.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, events.DatasetLoaded{Records: 5, Providers: 2}, got[0].Event)
}

func TestOpenFailurePublishesLoadFailed(t *testing.T) {
	bus := events.NewBus()
	s, err := Open(context.Background(), fetcher{err: errors.New("boom")}, WithBus(bus), quiet())
	assert.Nil(t, s)
	var le *catalog.LoadError
	require.ErrorAs(t, err, &le)

	got := bus.Drain()
	require.Len(t, got, 1)
	failed, ok := got[0].Event.(events.LoadFailed)
	require.True(t, ok)
	assert.ErrorAs(t, failed.Err, &le)

	_, err = Open(context.Background(), fetcher{data: `[]`}, WithBus(bus), quiet())
	var pe *catalog.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestToggleRejectsFifthAndPublishes(t *testing.T) {
	s := newSession(t)
	for _, k := range []string{"p1/a", "p1/b", "p1/c", "p2/d"} {
		require.True(t, s.Toggle(k))
	}
	assert.False(t, s.Toggle("p2/e"))
	assert.False(t, s.Selection().Has("p2/e"))
	assert.False(t, s.Toggle("nope/x"), "unknown keys are ignored")

	envs := s.Bus().Drain()
	require.Len(t, envs, 5)
	last := envs[4].Event.(events.SelectionChanged)
	assert.Equal(t, "p2/e", last.Key)
	assert.False(t, last.Accepted)
	assert.False(t, last.Selected)
	assert.Equal(t, []string{"p1/a", "p1/b", "p1/c", "p2/d"}, last.Keys)
}

func TestSortAndFilterPublishInOrder(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Sort(catalog.SortSpec{Column: "name", Direction: catalog.Descending}))
	n := s.Filter(catalog.ParseQuery("provider:p1"))
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"p1/c", "p1/b", "p1/a"}, s.Store().Filtered().Keys())

	spec, err := s.ToggleSort("name")
	require.NoError(t, err)
	assert.Equal(t, catalog.Ascending, spec.Direction)
	assert.Equal(t, []string{"p1/a", "p1/b", "p1/c"}, s.Store().Filtered().Keys())

	assert.Error(t, s.Sort(catalog.SortSpec{Column: "bogus", Direction: catalog.Ascending}))
	assert.Equal(t, []string{"sort_changed", "filter_changed", "sort_changed"}, names(s.Bus().Drain()))
}

func TestDetailLinkRoundTrip(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.OpenDetail("p2/d"))
	frag := s.Location()
	assert.Equal(t, "#p2/d", frag)
	assert.Equal(t, "https://models.dev/#p2/d", s.Link("https://models.dev/"))

	s.CloseView()
	assert.Empty(t, s.Location())
	assert.Equal(t, route.None, s.View().Kind)

	require.NoError(t, s.OpenLink(frag))
	assert.Equal(t, route.DetailOf("p2/d"), s.View())
	assert.ErrorIs(t, s.OpenDetail("p9/z"), route.ErrMismatch)
}

func TestCompareLinkRoundTrip(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.OpenCompare(), ErrTooFew)
	s.Toggle("p2/e")
	s.Toggle("p1/a")
	require.NoError(t, s.OpenCompare())
	frag := s.Location()
	assert.Equal(t, "#compare=p2/e,p1/a", frag)

	s.CloseView()
	s.ClearSelection()
	require.Zero(t, s.Selection().Len())

	require.NoError(t, s.OpenLink(frag))
	assert.Equal(t, []string{"p2/e", "p1/a"}, s.Selection().Keys())
	assert.Equal(t, route.Compare, s.View().Kind)
	recs := s.Selected()
	require.Len(t, recs, 2)
	assert.Equal(t, "E", recs[0].Name)
}

func TestOpenLinkCapsAndIgnoresBadLinks(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.OpenLink("#compare=p1/a,p1/b,p1/c,p2/d,p2/e"))
	assert.Equal(t, 4, s.Selection().Len())
	assert.Equal(t, []string{"p1/a", "p1/b", "p1/c", "p2/d"}, s.Selection().Keys())

	s.CloseView()
	before := s.Selection().Keys()
	assert.ErrorIs(t, s.OpenLink("#compare=x/1,y/2"), route.ErrMismatch)
	assert.ErrorIs(t, s.OpenLink("#garbage"), route.ErrMalformed)
	assert.Equal(t, before, s.Selection().Keys())
	assert.Equal(t, route.None, s.View().Kind)
}

func TestCloseViewIsIdempotent(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.OpenDetail("p1/a"))
	require.NoError(t, s.OpenDetail("p1/b"))
	s.CloseView()
	assert.Empty(t, s.Location())

	s.CloseView()
	evs := s.Bus().Drain()
	assert.Equal(t, []string{"detail_requested", "detail_requested", "view_closed"}, names(evs))
}

func TestTheme(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Equal(t, ThemeLight, s.ToggleTheme())
	s.SetTheme(ThemeLight)
	s.SetTheme("solarized")
	assert.Equal(t, ThemeDark, s.Theme())
	evs := s.Bus().Drain()
	require.Len(t, evs, 2)
	assert.Equal(t, events.ThemeChanged{Theme: ThemeLight}, evs[0].Event)

	light, err := Open(context.Background(), fetcher{data: payload}, WithTheme(ThemeLight), quiet())
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, light.Theme())
}

func TestSelectionSurvivesFilterAndSort(t *testing.T) {
	s := newSession(t)
	s.Toggle("p1/a")
	s.Toggle("p2/d")
	s.Filter(catalog.Filter{Text: "zzz"})
	require.NoError(t, s.Sort(catalog.SortSpec{Column: "name", Direction: catalog.Descending}))
	assert.Equal(t, []string{"p1/a", "p2/d"}, s.Selection().Keys())
	assert.Equal(t, 0, s.Store().Filtered().Len())
}
