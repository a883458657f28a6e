// Package browser holds the state of one catalog browsing session. Every state
// transition goes through a Session method and is published on its event bus.
package browser

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/events"
	"github.com/fbettag/mdb/internal/route"
	"github.com/fbettag/mdb/internal/selection"
	"github.com/fbettag/mdb/internal/theme"
)

// Themes.
const (
	ThemeDark  = theme.Dark
	ThemeLight = theme.Light
)

// ErrTooFew is returned by OpenCompare with fewer than two models selected.
var ErrTooFew = errors.New("select at least two models to compare")

// Option configures a Session.
type Option func(*Session)

// WithBus publishes on bus instead of a private one.
func WithBus(bus *events.Bus) Option {
	return func(s *Session) { s.bus = bus }
}

// WithTheme sets the starting theme.
func WithTheme(name string) Option {
	return func(s *Session) { s.theme = name }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session owns the store, the comparison selection, the open view and the
// link location.
type Session struct {
	store *catalog.Store
	sel   selection.Set
	loc   route.Location
	view  route.Route
	bus   *events.Bus
	theme string
	log   *log.Logger
}

// New wraps a loaded store and publishes DatasetLoaded.
func New(store *catalog.Store, opts ...Option) *Session {
	s := &Session{store: store, theme: ThemeDark}
	for _, opt := range opts {
		opt(s)
	}
	s.defaults()
	s.bus.Publish(events.DatasetLoaded{
		Records:   store.Len(),
		Providers: catalog.ProviderCount(store.Full()),
	})
	s.log.Info("catalog loaded", "records", store.Len(), "sort", store.Sorting())
	return s
}

// Open loads the catalog through f. On failure LoadFailed is published on the
// bus given in opts and no session is returned.
func Open(ctx context.Context, f catalog.Fetcher, opts ...Option) (*Session, error) {
	store, err := catalog.Load(ctx, f)
	if err != nil {
		probe := &Session{}
		for _, opt := range opts {
			opt(probe)
		}
		probe.defaults()
		probe.bus.Publish(events.LoadFailed{Err: err})
		probe.log.Error("catalog load failed", "err", err)
		return nil, err
	}
	return New(store, opts...), nil
}

func (s *Session) defaults() {
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.theme != ThemeLight {
		s.theme = ThemeDark
	}
}

// Store is the loaded catalog.
func (s *Session) Store() *catalog.Store {
	return s.store
}

// Bus is the session's event bus.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// Sort re-sorts the catalog.
func (s *Session) Sort(spec catalog.SortSpec) error {
	if err := s.store.Sort(spec); err != nil {
		return err
	}
	s.bus.Publish(events.SortChanged{Spec: spec})
	return nil
}

// ToggleSort sorts by column the way a header click does.
func (s *Session) ToggleSort(column string) (catalog.SortSpec, error) {
	spec, err := s.store.ToggleSort(column)
	if err != nil {
		return spec, err
	}
	s.bus.Publish(events.SortChanged{Spec: spec})
	return spec, nil
}

// Filter replaces the active filter and returns the number of matches.
func (s *Session) Filter(f catalog.Filter) int {
	n := s.store.Filter(f)
	s.bus.Publish(events.FilterChanged{Filter: f, Visible: n})
	s.log.Debug("filter", "query", f.String(), "visible", n)
	return n
}

// Toggle flips key in the comparison selection. It reports false when the
// key is unknown or the selection is full.
func (s *Session) Toggle(key string) bool {
	if !s.store.Has(key) {
		return false
	}
	next, accepted := s.sel.Toggle(key)
	s.sel = next
	s.bus.Publish(events.SelectionChanged{
		Key:      key,
		Selected: next.Has(key),
		Accepted: accepted,
		Keys:     next.Keys(),
	})
	return accepted
}

// ClearSelection empties the comparison selection.
func (s *Session) ClearSelection() {
	if s.sel.Len() == 0 {
		return
	}
	s.sel = selection.Set{}
	s.bus.Publish(events.SelectionChanged{Accepted: true})
}

// Selection is the current comparison selection.
func (s *Session) Selection() selection.Set {
	return s.sel
}

// Selected resolves the selection to records in selection order.
func (s *Session) Selected() []*catalog.Record {
	keys := s.sel.Keys()
	out := make([]*catalog.Record, 0, len(keys))
	for _, k := range keys {
		if r, ok := s.store.Lookup(k); ok {
			out = append(out, r)
		}
	}
	return out
}

// OpenDetail opens the detail view for key.
func (s *Session) OpenDetail(key string) error {
	if !s.store.Has(key) {
		return route.ErrMismatch
	}
	r := route.DetailOf(key)
	s.open(r)
	s.bus.Publish(events.DetailRequested{Key: key, Route: r})
	return nil
}

// OpenCompare opens the comparison of the selected models.
func (s *Session) OpenCompare() error {
	if s.sel.Len() < 2 {
		return ErrTooFew
	}
	r := route.CompareOf(s.sel.Keys())
	s.open(r)
	s.bus.Publish(events.CompareRequested{Keys: r.Keys, Route: r})
	return nil
}

func (s *Session) open(r route.Route) {
	s.view = r
	s.loc.Open(r)
}

// CloseView closes the open overlay. The link is cleared only if it still
// points at that overlay.
func (s *Session) CloseView() {
	if s.view.Kind == route.None {
		return
	}
	closed := s.view
	s.view = route.Route{}
	s.loc.Close(closed)
	s.bus.Publish(events.ViewClosed{Route: closed})
}

// View is the open overlay, Kind None when the table is showing.
func (s *Session) View() route.Route {
	return s.view
}

// OpenLink opens the view a shareable link names. A comparison link replaces
// the selection. Links that do not resolve leave the session untouched.
func (s *Session) OpenLink(fragment string) error {
	r, err := route.Resolve(fragment, s.store.Has)
	if err != nil {
		s.log.Debug("link ignored", "fragment", fragment, "err", err)
		return err
	}
	if r.Kind == route.Detail {
		return s.OpenDetail(r.Key())
	}
	s.sel = selection.Restore(r.Keys, s.store.Has)
	s.bus.Publish(events.SelectionChanged{Accepted: true, Keys: s.sel.Keys()})
	return s.OpenCompare()
}

// Location is the current link fragment.
func (s *Session) Location() string {
	return s.loc.Fragment()
}

// Link is base with the current fragment.
func (s *Session) Link(base string) string {
	return s.loc.Link(base)
}

// Theme is the active theme name.
func (s *Session) Theme() string {
	return s.theme
}

// SetTheme switches the theme.
func (s *Session) SetTheme(name string) {
	if name != ThemeLight {
		name = ThemeDark
	}
	if name == s.theme {
		return
	}
	s.theme = name
	s.bus.Publish(events.ThemeChanged{Theme: name})
}

// ToggleTheme flips between dark and light.
func (s *Session) ToggleTheme() string {
	if s.theme == ThemeDark {
		s.SetTheme(ThemeLight)
	} else {
		s.SetTheme(ThemeDark)
	}
	return s.theme
}
