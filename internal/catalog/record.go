package catalog

import "strings"

// Status values reported by the feed. An empty status means generally available.
const (
	StatusDeprecated = "deprecated"
	StatusBeta       = "beta"
	StatusAlpha      = "alpha"
)

// Cost lists per-million-token prices. Nil means the provider did not publish a price.
type Cost struct {
	Input       *float64 `json:"input,omitempty" yaml:"input,omitempty"`
	Output      *float64 `json:"output,omitempty" yaml:"output,omitempty"`
	Reasoning   *float64 `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	CacheRead   *float64 `json:"cache_read,omitempty" yaml:"cache_read,omitempty"`
	CacheWrite  *float64 `json:"cache_write,omitempty" yaml:"cache_write,omitempty"`
	InputAudio  *float64 `json:"input_audio,omitempty" yaml:"input_audio,omitempty"`
	OutputAudio *float64 `json:"output_audio,omitempty" yaml:"output_audio,omitempty"`
}

// Limit lists token limits.
type Limit struct {
	Context *float64 `json:"context,omitempty" yaml:"context,omitempty"`
	Input   *float64 `json:"input,omitempty" yaml:"input,omitempty"`
	Output  *float64 `json:"output,omitempty" yaml:"output,omitempty"`
}

// Modalities lists accepted and produced media kinds.
type Modalities struct {
	Input  []string `json:"input,omitempty" yaml:"input,omitempty"`
	Output []string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Record is one model offering from one provider. Records are frozen once a
// Store has been built from them.
type Record struct {
	ProviderID   string      `json:"provider_id" yaml:"provider_id"`
	ProviderName string      `json:"provider_name" yaml:"provider_name"`
	ModelID      string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Family       string      `json:"family,omitempty" yaml:"family,omitempty"`
	Cost         *Cost       `json:"cost,omitempty" yaml:"cost,omitempty"`
	Limit        *Limit      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Reasoning    *bool       `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	ToolCall     *bool       `json:"tool_call,omitempty" yaml:"tool_call,omitempty"`
	Structured   *bool       `json:"structured_output,omitempty" yaml:"structured_output,omitempty"`
	OpenWeights  *bool       `json:"open_weights,omitempty" yaml:"open_weights,omitempty"`
	Attachment   *bool       `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Status       string      `json:"status,omitempty" yaml:"status,omitempty"`
	Modalities   *Modalities `json:"modalities,omitempty" yaml:"modalities,omitempty"`
	Knowledge    string      `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`
	ReleaseDate  string      `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	LastUpdated  string      `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`

	key    string
	search string
}

// Key returns the global identity "provider/model".
func (r *Record) Key() string {
	if r.key == "" {
		return MakeKey(r.ProviderID, r.ModelID)
	}
	return r.key
}

// SearchBlob is the lowercase text free-text filtering matches against.
func (r *Record) SearchBlob() string {
	if r.search == "" {
		return searchBlob(r)
	}
	return r.search
}

// Flag reports a capability flag, treating absent as false.
func Flag(v *bool) bool {
	return v != nil && *v
}

// MakeKey joins provider and model ids into a record key.
func MakeKey(providerID, modelID string) string {
	return providerID + "/" + modelID
}

// SplitKey is the inverse of MakeKey. Model ids may themselves contain slashes,
// so only the first separator counts.
func SplitKey(key string) (providerID, modelID string, ok bool) {
	providerID, modelID, ok = strings.Cut(key, "/")
	if !ok || providerID == "" || modelID == "" {
		return "", "", false
	}
	return providerID, modelID, true
}

func (r *Record) derive() {
	r.key = MakeKey(r.ProviderID, r.ModelID)
	r.search = searchBlob(r)
}

func searchBlob(r *Record) string {
	return strings.ToLower(strings.Join([]string{r.ProviderName, r.ProviderID, r.Name, r.ModelID, r.Family}, "\t"))
}
