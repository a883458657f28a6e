package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Direction is the multiplicative sort sign.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortSpec names a column and direction.
type SortSpec struct {
	Column    string
	Direction Direction
}

// DefaultSort orders the table by provider name.
var DefaultSort = SortSpec{Column: "provider", Direction: Ascending}

func (s SortSpec) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Direction)
}

// Sort replaces the full order with a total order over the column. Nulls come
// last in both directions. The sort is stable and always starts from the load
// order, so equal values keep their load order no matter what was sorted
// before. The filtered view keeps its membership and takes the new order.
func (s *Store) Sort(spec SortSpec) error {
	col, err := ColumnByID(spec.Column)
	if err != nil {
		return err
	}
	if spec.Direction != Descending {
		spec.Direction = Ascending
	}
	keys := s.sortKeys(col)
	dir := int(spec.Direction)
	order := make([]int, len(s.records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareValues(keys[a], keys[b], col.Kind, dir)
	})
	s.order = order
	s.sort = spec
	s.rederive()
	return nil
}

// ToggleSort mimics a header click: the sorted column flips direction, any other
// column starts ascending.
func (s *Store) ToggleSort(column string) (SortSpec, error) {
	spec := SortSpec{Column: column, Direction: Ascending}
	if s.sort.Column == column {
		spec.Direction = s.sort.Direction.Flip()
	}
	if err := s.Sort(spec); err != nil {
		return s.sort, err
	}
	return spec, nil
}

func (s *Store) sortKeys(col Column) []sortValue {
	if keys, ok := s.keys[col.ID]; ok {
		return keys
	}
	keys := make([]sortValue, len(s.records))
	for i := range s.records {
		keys[i] = col.value(&s.records[i])
	}
	s.keys[col.ID] = keys
	return keys
}

// rederive rebuilds the filtered view as the subsequence of the new order whose
// members were filtered before.
func (s *Store) rederive() {
	if s.filter.Empty() {
		s.filtered = s.order
		return
	}
	member := make([]bool, len(s.records))
	for _, i := range s.filtered {
		member[i] = true
	}
	out := make([]int, 0, len(s.filtered))
	for _, i := range s.order {
		if member[i] {
			out = append(out, i)
		}
	}
	s.filtered = out
}

func compareValues(a, b sortValue, kind Kind, dir int) int {
	switch {
	case a.null && b.null:
		return 0
	case a.null:
		return 1
	case b.null:
		return -1
	}
	if kind == KindString {
		return strings.Compare(a.str, b.str) * dir
	}
	return cmp.Compare(a.num, b.num) * dir
}
