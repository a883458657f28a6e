// Package route encodes and resolves shareable links. A link fragment names
// either one model ("#provider/model") or a comparison ("#compare=a/x,b/y").
package route

import (
	"errors"
	"net/url"
	"strings"

	"github.com/fbettag/mdb/internal/selection"
)

// CompareTag prefixes comparison fragments.
const CompareTag = "compare="

var (
	// ErrMalformed is returned for fragments that are not links at all.
	ErrMalformed = errors.New("route: malformed fragment")
	// ErrMismatch is returned when a link names models that are not loaded.
	ErrMismatch = errors.New("route: no matching models")
)

// Kind distinguishes link targets.
type Kind int

const (
	None Kind = iota
	Detail
	Compare
)

func (k Kind) String() string {
	switch k {
	case Detail:
		return "detail"
	case Compare:
		return "compare"
	default:
		return "none"
	}
}

// Route is a parsed link target.
type Route struct {
	Kind Kind
	Keys []string
}

// DetailOf links to a single model.
func DetailOf(key string) Route {
	return Route{Kind: Detail, Keys: []string{key}}
}

// CompareOf links to a comparison.
func CompareOf(keys []string) Route {
	return Route{Kind: Compare, Keys: append([]string(nil), keys...)}
}

// Key is the detail target, or "" for other kinds.
func (r Route) Key() string {
	if r.Kind != Detail || len(r.Keys) == 0 {
		return ""
	}
	return r.Keys[0]
}

// Fragment encodes the route including the leading "#".
func (r Route) Fragment() string {
	switch r.Kind {
	case Detail:
		return "#" + r.Key()
	case Compare:
		return "#" + CompareTag + strings.Join(r.Keys, ",")
	default:
		return ""
	}
}

// Equal compares kind and keys.
func (r Route) Equal(o Route) bool {
	if r.Kind != o.Kind || len(r.Keys) != len(o.Keys) {
		return false
	}
	for i := range r.Keys {
		if r.Keys[i] != o.Keys[i] {
			return false
		}
	}
	return true
}

// Parse decodes a fragment with or without its leading "#". Compare links
// need at least two keys; anything else containing "/" is a detail link.
func Parse(fragment string) (Route, bool) {
	frag := strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if unescaped, err := url.PathUnescape(frag); err == nil {
		frag = unescaped
	}
	if frag == "" {
		return Route{}, false
	}
	if rest, ok := strings.CutPrefix(frag, CompareTag); ok {
		var keys []string
		for _, k := range strings.Split(rest, ",") {
			k = strings.TrimSpace(k)
			if strings.Contains(k, "/") {
				keys = append(keys, k)
			}
		}
		if len(keys) < 2 {
			return Route{}, false
		}
		return Route{Kind: Compare, Keys: keys}, true
	}
	if !strings.Contains(frag, "/") {
		return Route{}, false
	}
	return DetailOf(frag), true
}

// Resolve parses fragment and checks its keys against the loaded catalog.
// Compare links keep their first selection.Max known keys in link order and
// still need two of them.
func Resolve(fragment string, exists func(string) bool) (Route, error) {
	r, ok := Parse(fragment)
	if !ok {
		return Route{}, ErrMalformed
	}
	switch r.Kind {
	case Detail:
		if !exists(r.Key()) {
			return Route{}, ErrMismatch
		}
		return r, nil
	default:
		set := selection.Restore(r.Keys, exists)
		if set.Len() < 2 {
			return Route{}, ErrMismatch
		}
		return CompareOf(set.Keys()), nil
	}
}

// Location tracks the fragment the way a browser address bar would.
type Location struct {
	fragment string
}

// Open points the location at r.
func (l *Location) Open(r Route) {
	l.fragment = r.Fragment()
}

// Close clears the fragment if it still points at r, and reports whether it
// did. A link opened later is left alone.
func (l *Location) Close(r Route) bool {
	if l.fragment == "" || l.fragment != r.Fragment() {
		return false
	}
	l.fragment = ""
	return true
}

// Fragment is the current fragment, "" for the bare path.
func (l *Location) Fragment() string {
	return l.fragment
}

// Link joins base and the current fragment.
func (l *Location) Link(base string) string {
	base, _, _ = strings.Cut(base, "#")
	return base + l.fragment
}
