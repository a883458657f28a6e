// Package events carries the browser's domain events from the session to the
// terminal UI in publish order.
package events

import (
	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/route"
)

// Event is implemented by every domain event.
type Event interface {
	Name() string
}

// DatasetLoaded is published once the catalog is parsed and sorted.
type DatasetLoaded struct {
	Records   int
	Providers int
}

// LoadFailed is published when fetching or parsing the catalog fails. It is
// terminal for the session.
type LoadFailed struct {
	Err error
}

// SortChanged is published after every re-sort.
type SortChanged struct {
	Spec catalog.SortSpec
}

// FilterChanged is published after every re-filter with the new view size.
type FilterChanged struct {
	Filter  catalog.Filter
	Visible int
}

// SelectionChanged is published on every toggle, including rejected ones, so
// the UI can revert a checkbox that was not accepted.
type SelectionChanged struct {
	Key      string
	Selected bool
	Accepted bool
	Keys     []string
}

// DetailRequested opens the detail view for one record.
type DetailRequested struct {
	Key   string
	Route route.Route
}

// CompareRequested opens the comparison view for the selected records.
type CompareRequested struct {
	Keys  []string
	Route route.Route
}

// ViewClosed is published when an overlay closes.
type ViewClosed struct {
	Route route.Route
}

// ThemeChanged is published when the user flips the theme.
type ThemeChanged struct {
	Theme string
}

func (DatasetLoaded) Name() string    { return "dataset_loaded" }
func (LoadFailed) Name() string       { return "load_failed" }
func (SortChanged) Name() string      { return "sort_changed" }
func (FilterChanged) Name() string    { return "filter_changed" }
func (SelectionChanged) Name() string { return "selection_changed" }
func (DetailRequested) Name() string  { return "detail_requested" }
func (CompareRequested) Name() string { return "compare_requested" }
func (ViewClosed) Name() string       { return "view_closed" }
func (ThemeChanged) Name() string     { return "theme_changed" }
