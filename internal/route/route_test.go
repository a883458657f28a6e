package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func known(keys ...string) func(string) bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(k string) bool { return set[k] }
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Route
		ok   bool
	}{
		{"#openai/gpt-4o", DetailOf("openai/gpt-4o"), true},
		{"openai/gpt-4o", DetailOf("openai/gpt-4o"), true},
		{"#openrouter/meta/llama", DetailOf("openrouter/meta/llama"), true},
		{"#openai%2Fgpt-4o", DetailOf("openai/gpt-4o"), true},
		{"#compare=a/1,b/2", CompareOf([]string{"a/1", "b/2"}), true},
		{"#compare=a/1, b/2,,c/3", CompareOf([]string{"a/1", "b/2", "c/3"}), true},
		{"#compare=a/1", Route{}, false},
		{"#compare=", Route{}, false},
		{"#", Route{}, false},
		{"", Route{}, false},
		{"#pricing", Route{}, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestRoundTrip(t *testing.T) {
	exists := known("a/1", "b/2", "c/3")

	detail := DetailOf("b/2")
	got, err := Resolve(detail.Fragment(), exists)
	require.NoError(t, err)
	assert.True(t, got.Equal(detail))

	cmp := CompareOf([]string{"a/1", "b/2"})
	assert.Equal(t, "#compare=a/1,b/2", cmp.Fragment())
	got, err = Resolve(cmp.Fragment(), exists)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "b/2"}, got.Keys)
}

func TestResolveErrors(t *testing.T) {
	exists := known("a/1", "b/2")

	_, err := Resolve("#nothing", exists)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Resolve("#x/unknown", exists)
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = Resolve("#compare=a/1,x/9", exists)
	assert.ErrorIs(t, err, ErrMismatch, "one known key is not a comparison")
}

func TestResolveCapsCompareLinks(t *testing.T) {
	exists := known("a/1", "b/2", "c/3", "d/4", "e/5")
	got, err := Resolve("#compare=x/0,a/1,b/2,b/2,c/3,d/4,e/5", exists)
	require.NoError(t, err)
	assert.Equal(t, Compare, got.Kind)
	assert.Equal(t, []string{"a/1", "b/2", "c/3", "d/4"}, got.Keys)
}

func TestLocationClearsOnlyMatchingFragment(t *testing.T) {
	var loc Location
	first := DetailOf("a/1")
	second := CompareOf([]string{"a/1", "b/2"})

	loc.Open(first)
	assert.Equal(t, "#a/1", loc.Fragment())
	assert.Equal(t, "https://models.dev/#a/1", loc.Link("https://models.dev/#old"))

	loc.Open(second)
	assert.False(t, loc.Close(first), "fragment moved on")
	assert.Equal(t, "#compare=a/1,b/2", loc.Fragment())

	assert.True(t, loc.Close(second))
	assert.Empty(t, loc.Fragment())
	assert.Equal(t, "https://models.dev/", loc.Link("https://models.dev/"))
	assert.False(t, loc.Close(second))
}
