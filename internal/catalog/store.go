package catalog

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
)

// Fetcher retrieves the raw catalog payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Endpointer is implemented by fetchers that can name their source for errors.
type Endpointer interface {
	Endpoint() string
}

// Committer is implemented by fetchers that defer caching until the payload
// has parsed.
type Committer interface {
	Commit() error
}

// View is an ordered, read-only sequence of records.
type View interface {
	Len() int
	At(i int) *Record
	Keys() []string
}

// ProviderInfo summarizes one provider of the loaded catalog.
type ProviderInfo struct {
	ID     string
	Name   string
	Models int
}

// Store holds the frozen record array plus the derived sort order and filtered
// view. Both derived views are index slices into the backing array; sorting and
// filtering replace them wholesale and never touch the records.
type Store struct {
	records  []Record
	byKey    map[string]int
	keys     map[string][]sortValue
	order    []int
	filtered []int
	sort     SortSpec
	filter   Filter
}

// Load fetches and parses the catalog, then sorts it by provider. Fetch
// failures surface as *LoadError and payload problems as *ParseError; no Store
// exists in either case.
func Load(ctx context.Context, f Fetcher) (*Store, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		le := &LoadError{Err: err}
		if ep, ok := f.(Endpointer); ok {
			le.Endpoint = ep.Endpoint()
		}
		return nil, le
	}
	records, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if c, ok := f.(Committer); ok {
		if err := c.Commit(); err != nil {
			log.Warn("catalog not cached", "err", err)
		}
	}
	s := NewStore(records)
	if err := s.Sort(DefaultSort); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStore freezes records in their given order. The store starts unsorted
// (load order) and unfiltered.
func NewStore(records []Record) *Store {
	s := &Store{
		records: make([]Record, len(records)),
		byKey:   make(map[string]int, len(records)),
		keys:    make(map[string][]sortValue),
		order:   make([]int, len(records)),
	}
	copy(s.records, records)
	for i := range s.records {
		s.records[i].derive()
		s.byKey[s.records[i].key] = i
		s.order[i] = i
	}
	s.filtered = s.order
	return s
}

// Len is the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}

// Full returns every record in the current sort order.
func (s *Store) Full() View {
	return indexView{records: s.records, idx: s.order}
}

// Filtered returns the records passing the active filter in the current sort order.
func (s *Store) Filtered() View {
	return indexView{records: s.records, idx: s.filtered}
}

// Lookup resolves a record key.
func (s *Store) Lookup(key string) (*Record, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return &s.records[i], true
}

// Has reports whether key names a loaded record.
func (s *Store) Has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// Sorting returns the active sort.
func (s *Store) Sorting() SortSpec {
	return s.sort
}

// ActiveFilter returns the active filter.
func (s *Store) ActiveFilter() Filter {
	return s.filter
}

// Providers lists providers in load order.
func (s *Store) Providers() []ProviderInfo {
	var out []ProviderInfo
	pos := make(map[string]int)
	for i := range s.records {
		r := &s.records[i]
		if p, ok := pos[r.ProviderID]; ok {
			out[p].Models++
			continue
		}
		pos[r.ProviderID] = len(out)
		out = append(out, ProviderInfo{ID: r.ProviderID, Name: r.ProviderName, Models: 1})
	}
	return out
}

// ProviderName returns the display name for a provider id, or the id itself.
func (s *Store) ProviderName(id string) string {
	for i := range s.records {
		if s.records[i].ProviderID == id {
			return s.records[i].ProviderName
		}
	}
	return id
}

// Families lists the distinct non-empty families, sorted.
func (s *Store) Families() []string {
	set := make(map[string]struct{})
	for i := range s.records {
		if f := s.records[i].Family; f != "" {
			set[f] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// ProviderCount counts the distinct providers in v.
func ProviderCount(v View) int {
	set := make(map[string]struct{})
	for i := 0; i < v.Len(); i++ {
		set[v.At(i).ProviderID] = struct{}{}
	}
	return len(set)
}

type indexView struct {
	records []Record
	idx     []int
}

func (v indexView) Len() int {
	return len(v.idx)
}

func (v indexView) At(i int) *Record {
	return &v.records[v.idx[i]]
}

func (v indexView) Keys() []string {
	out := make([]string, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.records[j].key
	}
	return out
}
