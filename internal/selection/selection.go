// Package selection tracks the models picked for side-by-side comparison.
package selection

import "errors"

// Max is the largest number of models that can be compared at once.
const Max = 4

// ErrRejected is returned by callers that surface a full set as an error.
var ErrRejected = errors.New("selection full: at most 4 models can be compared")

// Set is an ordered set of record keys. It is a value type: every mutation
// returns a new Set and leaves the receiver untouched.
type Set struct {
	keys []string
}

// Of builds a set from keys, applying the same rules as repeated toggles of
// unselected keys: duplicates are ignored and keys past the cap are dropped.
func Of(keys ...string) Set {
	return Restore(keys, nil)
}

// Toggle removes key when present and adds it when there is room. accepted is
// false only when key is new and the set is full; the returned set is then
// identical to s.
func (s Set) Toggle(key string) (next Set, accepted bool) {
	if i := s.index(key); i >= 0 {
		out := make([]string, 0, len(s.keys)-1)
		out = append(out, s.keys[:i]...)
		out = append(out, s.keys[i+1:]...)
		return Set{keys: out}, true
	}
	if len(s.keys) >= Max {
		return s, false
	}
	out := make([]string, len(s.keys), len(s.keys)+1)
	copy(out, s.keys)
	return Set{keys: append(out, key)}, true
}

// Restore rebuilds a set from a shareable link. Unknown keys (when exists is
// non-nil) and duplicates are skipped and the cap applies as everywhere else,
// so at most the first Max known keys survive.
func Restore(keys []string, exists func(string) bool) Set {
	var s Set
	for _, k := range keys {
		if k == "" || s.Has(k) {
			continue
		}
		if exists != nil && !exists(k) {
			continue
		}
		if s.Full() {
			break
		}
		s, _ = s.Toggle(k)
	}
	return s
}

// Has reports membership.
func (s Set) Has(key string) bool {
	return s.index(key) >= 0
}

// Len is the number of selected keys.
func (s Set) Len() int {
	return len(s.keys)
}

// Full reports whether another key would be rejected.
func (s Set) Full() bool {
	return len(s.keys) >= Max
}

// Keys returns the keys in selection order.
func (s Set) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s Set) index(key string) int {
	for i, k := range s.keys {
		if k == key {
			return i
		}
	}
	return -1
}
