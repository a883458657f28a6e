package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "P1": {"name": "Provider One", "models": {
    "a": {"id": "a", "name": "Alpha", "family": "GPT", "cost": {"input": 1, "output": 2}, "limit": {"context": 128000}, "reasoning": true},
    "b": {"id": "b", "name": "Beta", "cost": {"input": null}, "tool_call": false}
  }},
  "P2": {"name": "Second", "models": {
    "c": {"id": "c", "name": "Gamma", "family": "gpt", "cost": {"input": 0.5}, "reasoning": false}
  }},
  "P3": {"name": "Empty"}
}`

func f64(v float64) *float64 { return &v }
func flag(v bool) *bool      { return &v }

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context) ([]byte, error) { return s.data, s.err }
func (s stubFetcher) Endpoint() string                    { return "https://example.test/api.json" }

type committingFetcher struct {
	stubFetcher
	commits int
}

func (c *committingFetcher) Commit() error {
	c.commits++
	return nil
}

func sampleStore(t *testing.T) *Store {
	t.Helper()
	records, err := Parse([]byte(samplePayload))
	require.NoError(t, err)
	return NewStore(records)
}

func TestParseKeepsPayloadOrder(t *testing.T) {
	records, err := Parse([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, records, 3)

	keys := []string{records[0].Key(), records[1].Key(), records[2].Key()}
	assert.Equal(t, []string{"P1/a", "P1/b", "P2/c"}, keys)
	assert.Equal(t, "Provider One", records[0].ProviderName)
	assert.Equal(t, "provider one\tp1\talpha\ta\tgpt", records[0].SearchBlob())
	assert.Nil(t, records[1].Cost.Input)
	assert.True(t, Flag(records[0].Reasoning))
}

func TestParseFallsBackToMapKey(t *testing.T) {
	records, err := Parse([]byte(`{"x": {"models": {"m-1": {"name": "M"}}}}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x/m-1", records[0].Key())
	assert.Equal(t, "x", records[0].ProviderName)
}

func TestParseDropsMistypedFields(t *testing.T) {
	records, err := Parse([]byte(`{"odd": {"name": "Odd", "models": {
	  "a": {"name": "A", "cost": {"input": 1}},
	  "m": {"name": "M", "cost": {"input": "0.50", "output": 2}, "reasoning": "yes", "tool_call": true,
	        "limit": 7, "modalities": {"input": ["text", 3], "output": "text"}, "family": 4},
	  "b": {"name": "B"}
	}}}`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	m := records[1]
	assert.Equal(t, "odd/m", m.Key())
	require.NotNil(t, m.Cost)
	assert.Nil(t, m.Cost.Input)
	require.NotNil(t, m.Cost.Output)
	assert.Equal(t, 2.0, *m.Cost.Output)
	assert.Nil(t, m.Reasoning)
	require.NotNil(t, m.ToolCall)
	assert.True(t, *m.ToolCall)
	assert.Nil(t, m.Limit)
	assert.Empty(t, m.Family)
	require.NotNil(t, m.Modalities)
	assert.Equal(t, []string{"text"}, m.Modalities.Input)
	assert.Nil(t, m.Modalities.Output)
}

func TestDecodeModelReportsMistypedFields(t *testing.T) {
	_, mistyped := decodeModel([]byte(`{"cost": {"input": "0.50"}, "reasoning": "yes", "limit": 7, "status": null}`))
	assert.Equal(t, []string{"reasoning", "cost.input", "limit"}, mistyped)
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"array":            `[1,2]`,
		"empty":            ``,
		"provider scalar":  `{"p": 3}`,
		"models array":     `{"p": {"name": "P", "models": []}}`,
		"model scalar":     `{"p": {"name": "P", "models": {"m": "x"}}}`,
		"duplicate id":     `{"p": {"name": "P", "models": {"m": {"id": "x"}, "n": {"id": "x"}}}}`,
		"truncated object": `{"p": {"name": "P", "models": {`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(payload))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
		})
	}
}

func TestLoadCommitsOnlyParsedPayloads(t *testing.T) {
	good := &committingFetcher{stubFetcher: stubFetcher{data: []byte(samplePayload)}}
	_, err := Load(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, 1, good.commits)

	truncated := &committingFetcher{stubFetcher: stubFetcher{data: []byte(`{"p": {"models": {`)}}
	_, err = Load(context.Background(), truncated)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Zero(t, truncated.commits)
}

func TestLoadClassifiesFailures(t *testing.T) {
	_, err := Load(context.Background(), stubFetcher{err: errors.New("connection refused")})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "https://example.test/api.json", le.Endpoint)

	_, err = Load(context.Background(), stubFetcher{data: []byte(`"nope"`)})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.False(t, errors.As(err, &le))
}

func TestLoadSortsByProvider(t *testing.T) {
	s, err := Load(context.Background(), stubFetcher{data: []byte(samplePayload)})
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, s.Sorting())
	assert.Equal(t, []string{"P1/a", "P1/b", "P2/c"}, s.Full().Keys())
}

func TestSortThenFilterScenario(t *testing.T) {
	s := sampleStore(t)
	require.NoError(t, s.Sort(SortSpec{Column: "input", Direction: Ascending}))
	assert.Equal(t, []string{"P2/c", "P1/a", "P1/b"}, s.Full().Keys())

	s.Filter(Filter{Text: "p1"})
	assert.Equal(t, []string{"P1/a", "P1/b"}, s.Filtered().Keys())
}

func TestSortNullsLastBothDirections(t *testing.T) {
	s := sampleStore(t)
	for _, dir := range []Direction{Ascending, Descending} {
		require.NoError(t, s.Sort(SortSpec{Column: "input", Direction: dir}))
		keys := s.Full().Keys()
		assert.Equal(t, "P1/b", keys[len(keys)-1], "direction %s", dir)
	}
	require.NoError(t, s.Sort(SortSpec{Column: "input", Direction: Descending}))
	assert.Equal(t, []string{"P1/a", "P2/c", "P1/b"}, s.Full().Keys())

	require.NoError(t, s.Sort(SortSpec{Column: "family", Direction: Descending}))
	assert.Equal(t, "P1/b", s.Full().Keys()[2])
}

func TestSortBooleansFalseBeforeTrue(t *testing.T) {
	s := sampleStore(t)
	require.NoError(t, s.Sort(SortSpec{Column: "reasoning", Direction: Ascending}))
	assert.Equal(t, []string{"P2/c", "P1/a", "P1/b"}, s.Full().Keys())

	require.NoError(t, s.Sort(SortSpec{Column: "reasoning", Direction: Descending}))
	assert.Equal(t, []string{"P1/a", "P2/c", "P1/b"}, s.Full().Keys())
}

func TestSortTiesKeepLoadOrder(t *testing.T) {
	records := make([]Record, 0, 6)
	for _, id := range []string{"f", "e", "d", "c", "b", "a"} {
		records = append(records, Record{ProviderID: "p", ProviderName: "P", ModelID: id, Name: id, Cost: &Cost{Input: f64(1)}})
	}
	s := NewStore(records)
	require.NoError(t, s.Sort(SortSpec{Column: "name", Direction: Ascending}))
	require.NoError(t, s.Sort(SortSpec{Column: "input", Direction: Descending}))
	assert.Equal(t, []string{"p/f", "p/e", "p/d", "p/c", "p/b", "p/a"}, s.Full().Keys())
}

func TestToggleSortFlipsSameColumn(t *testing.T) {
	s := sampleStore(t)
	spec, err := s.ToggleSort("name")
	require.NoError(t, err)
	assert.Equal(t, Ascending, spec.Direction)
	spec, err = s.ToggleSort("name")
	require.NoError(t, err)
	assert.Equal(t, Descending, spec.Direction)
	spec, err = s.ToggleSort("context")
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Column: "context", Direction: Ascending}, spec)

	_, err = s.ToggleSort("bogus")
	assert.Error(t, err)
	assert.Equal(t, "context", s.Sorting().Column)
}

func TestSortPreservesFilterMembership(t *testing.T) {
	filters := []Filter{
		{},
		{Text: "p1"},
		{Text: "gamma"},
		{Pills: []Pill{{Kind: PillFamily, Value: "gpt"}}},
		{Text: "nothing-matches"},
	}
	for _, f := range filters {
		s := sampleStore(t)
		s.Filter(f)
		before := keySet(s.Filtered().Keys())
		for _, col := range ColumnIDs() {
			require.NoError(t, s.Sort(SortSpec{Column: col, Direction: Descending}))
			assert.Equal(t, before, keySet(s.Filtered().Keys()), "filter %q column %s", f.String(), col)
			assert.True(t, isSubsequence(s.Filtered().Keys(), s.Full().Keys()))
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	s := sampleStore(t)
	f := Filter{Pills: []Pill{{Kind: PillProvider, Value: "P1"}}, Text: "a"}
	s.Filter(f)
	once := s.Filtered().Keys()
	s.Filter(f)
	assert.Equal(t, once, s.Filtered().Keys())
}

func TestFilterPills(t *testing.T) {
	s := sampleStore(t)

	n := s.Filter(Filter{Pills: []Pill{{Kind: PillFamily, Value: "GPT"}}})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"P1/a", "P2/c"}, s.Filtered().Keys())

	n = s.Filter(Filter{Pills: []Pill{{Kind: PillProvider, Value: "P1"}, {Kind: PillProvider, Value: "P2"}}})
	assert.Zero(t, n)
	assert.Equal(t, 0, s.Filtered().Len())

	n = s.Filter(Filter{Pills: []Pill{{Kind: PillProvider, Value: "P2"}}, Text: "  GAM  second "})
	assert.Equal(t, 1, n)
}

func TestEmptyFilterSharesOrder(t *testing.T) {
	s := sampleStore(t)
	s.Filter(Filter{Text: "alpha"})
	s.Filter(Filter{Text: "   "})
	require.Len(t, s.filtered, len(s.order))
	assert.Same(t, &s.order[0], &s.filtered[0])
}

func TestParseQuery(t *testing.T) {
	f := ParseQuery("provider:openai Family:GPT mini  fast")
	assert.Equal(t, []Pill{{Kind: PillProvider, Value: "openai"}, {Kind: PillFamily, Value: "GPT"}}, f.Pills)
	assert.Equal(t, "mini fast", f.Text)
	assert.Equal(t, "provider:openai family:GPT mini fast", f.String())
	assert.Equal(t, "provider:", ParseQuery("provider:").Text)
}

func TestLookupAndProviders(t *testing.T) {
	s := sampleStore(t)
	r, ok := s.Lookup("P2/c")
	require.True(t, ok)
	assert.Equal(t, "Gamma", r.Name)
	_, ok = s.Lookup("P2/zzz")
	assert.False(t, ok)

	assert.Equal(t, []ProviderInfo{{ID: "P1", Name: "Provider One", Models: 2}, {ID: "P2", Name: "Second", Models: 1}}, s.Providers())
	assert.Equal(t, []string{"GPT", "gpt"}, s.Families())
	assert.Equal(t, 2, ProviderCount(s.Full()))
	assert.Equal(t, "Second", s.ProviderName("P2"))
}

func TestSplitKey(t *testing.T) {
	p, m, ok := SplitKey("openrouter/meta/llama-3")
	require.True(t, ok)
	assert.Equal(t, "openrouter", p)
	assert.Equal(t, "meta/llama-3", m)
	_, _, ok = SplitKey("nokey")
	assert.False(t, ok)
}

func keySet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

func isSubsequence(sub, full []string) bool {
	i := 0
	for _, k := range full {
		if i < len(sub) && sub[i] == k {
			i++
		}
	}
	return i == len(sub)
}
