package catalog

import (
	"bytes"
	"errors"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/charmbracelet/log"
)

type rawModel struct {
	ID          string
	Name        string
	Family      string
	Cost        *Cost
	Limit       *Limit
	Reasoning   *bool
	ToolCall    *bool
	Structured  *bool
	OpenWeights *bool
	Attachment  *bool
	Status      string
	Modalities  *Modalities
	Knowledge   string
	ReleaseDate string
	LastUpdated string
}

// Parse decodes a models.dev style payload: an object keyed by provider id whose
// values carry a display name and a "models" object keyed by model id.
// Providers and models keep the payload's key order. Only the shape is fatal; a
// model field of the wrong type is dropped and the model kept.
func Parse(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Reason: "payload is not a JSON object"}
	}
	var (
		records []Record
		seen    = make(map[string]struct{})
	)
	err := jsonparser.ObjectEach(trimmed, func(k, value []byte, typ jsonparser.ValueType, _ int) error {
		providerID, err := jsonparser.ParseString(k)
		if err != nil {
			return &ParseError{Reason: "invalid provider key", Err: err}
		}
		if typ != jsonparser.Object {
			return &ParseError{Path: providerID, Reason: "provider is not an object"}
		}
		providerName := providerID
		if name, err := jsonparser.GetString(value, "name"); err == nil && name != "" {
			providerName = name
		}
		models, mtyp, _, err := jsonparser.Get(value, "models")
		switch {
		case mtyp == jsonparser.NotExist || mtyp == jsonparser.Null:
			return nil
		case err != nil:
			return &ParseError{Path: providerID + ".models", Reason: "unreadable models", Err: err}
		case mtyp != jsonparser.Object:
			return &ParseError{Path: providerID + ".models", Reason: "models is not an object"}
		}
		return jsonparser.ObjectEach(models, func(mk, mv []byte, vt jsonparser.ValueType, _ int) error {
			modelKey, err := jsonparser.ParseString(mk)
			if err != nil {
				return &ParseError{Path: providerID + ".models", Reason: "invalid model key", Err: err}
			}
			path := providerID + ".models." + modelKey
			if vt != jsonparser.Object {
				return &ParseError{Path: path, Reason: "model is not an object"}
			}
			raw, mistyped := decodeModel(mv)
			if len(mistyped) > 0 {
				log.Warn("ignoring mistyped model fields", "model", path, "fields", mistyped)
			}
			rec := newRecord(providerID, providerName, modelKey, raw)
			if _, dup := seen[rec.Key()]; dup {
				return &ParseError{Path: path, Reason: "duplicate key " + rec.Key()}
			}
			seen[rec.Key()] = struct{}{}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &ParseError{Reason: "malformed payload", Err: err}
	}
	return records, nil
}

func newRecord(providerID, providerName, modelKey string, raw rawModel) Record {
	id := raw.ID
	if id == "" {
		id = modelKey
	}
	name := raw.Name
	if name == "" {
		name = id
	}
	rec := Record{
		ProviderID:   providerID,
		ProviderName: providerName,
		ModelID:      id,
		Name:         name,
		Family:       raw.Family,
		Cost:         raw.Cost,
		Limit:        raw.Limit,
		Reasoning:    raw.Reasoning,
		ToolCall:     raw.ToolCall,
		Structured:   raw.Structured,
		OpenWeights:  raw.OpenWeights,
		Attachment:   raw.Attachment,
		Status:       raw.Status,
		Modalities:   raw.Modalities,
		Knowledge:    raw.Knowledge,
		ReleaseDate:  raw.ReleaseDate,
		LastUpdated:  raw.LastUpdated,
	}
	rec.derive()
	return rec
}

// modelDecoder reads model fields leniently. Absent and null fields are
// unset; fields of the wrong type are unset and remembered.
type modelDecoder struct {
	data     []byte
	mistyped []string
}

func decodeModel(data []byte) (rawModel, []string) {
	d := &modelDecoder{data: data}
	raw := rawModel{
		ID:          d.text("id"),
		Name:        d.text("name"),
		Family:      d.text("family"),
		Reasoning:   d.flag("reasoning"),
		ToolCall:    d.flag("tool_call"),
		Structured:  d.flag("structured_output"),
		OpenWeights: d.flag("open_weights"),
		Attachment:  d.flag("attachment"),
		Status:      d.text("status"),
		Knowledge:   d.text("knowledge"),
		ReleaseDate: d.text("release_date"),
		LastUpdated: d.text("last_updated"),
	}
	if d.object("cost") {
		raw.Cost = &Cost{
			Input:       d.number("cost", "input"),
			Output:      d.number("cost", "output"),
			Reasoning:   d.number("cost", "reasoning"),
			CacheRead:   d.number("cost", "cache_read"),
			CacheWrite:  d.number("cost", "cache_write"),
			InputAudio:  d.number("cost", "input_audio"),
			OutputAudio: d.number("cost", "output_audio"),
		}
	}
	if d.object("limit") {
		raw.Limit = &Limit{
			Context: d.number("limit", "context"),
			Input:   d.number("limit", "input"),
			Output:  d.number("limit", "output"),
		}
	}
	if d.object("modalities") {
		raw.Modalities = &Modalities{
			Input:  d.list("modalities", "input"),
			Output: d.list("modalities", "output"),
		}
	}
	return raw, d.mistyped
}

// get returns the value at keys, or ok=false when it is absent or null.
func (d *modelDecoder) get(keys ...string) ([]byte, jsonparser.ValueType, bool) {
	v, typ, _, err := jsonparser.Get(d.data, keys...)
	if err != nil || typ == jsonparser.NotExist || typ == jsonparser.Null {
		return nil, jsonparser.NotExist, false
	}
	return v, typ, true
}

func (d *modelDecoder) reject(keys []string) {
	d.mistyped = append(d.mistyped, strings.Join(keys, "."))
}

func (d *modelDecoder) text(keys ...string) string {
	v, typ, ok := d.get(keys...)
	if !ok {
		return ""
	}
	if typ != jsonparser.String {
		d.reject(keys)
		return ""
	}
	s, err := jsonparser.ParseString(v)
	if err != nil {
		d.reject(keys)
		return ""
	}
	return s
}

func (d *modelDecoder) number(keys ...string) *float64 {
	v, typ, ok := d.get(keys...)
	if !ok {
		return nil
	}
	if typ != jsonparser.Number {
		d.reject(keys)
		return nil
	}
	f, err := jsonparser.ParseFloat(v)
	if err != nil {
		d.reject(keys)
		return nil
	}
	return &f
}

func (d *modelDecoder) flag(keys ...string) *bool {
	v, typ, ok := d.get(keys...)
	if !ok {
		return nil
	}
	if typ != jsonparser.Boolean {
		d.reject(keys)
		return nil
	}
	b, err := jsonparser.ParseBoolean(v)
	if err != nil {
		d.reject(keys)
		return nil
	}
	return &b
}

// object reports whether keys hold an object; anything else but absence is
// recorded as mistyped.
func (d *modelDecoder) object(keys ...string) bool {
	_, typ, ok := d.get(keys...)
	if !ok {
		return false
	}
	if typ != jsonparser.Object {
		d.reject(keys)
		return false
	}
	return true
}

// list keeps the string items of an array and drops the rest.
func (d *modelDecoder) list(keys ...string) []string {
	v, typ, ok := d.get(keys...)
	if !ok {
		return nil
	}
	if typ != jsonparser.Array {
		d.reject(keys)
		return nil
	}
	var out []string
	dropped := false
	_, err := jsonparser.ArrayEach(v, func(item []byte, it jsonparser.ValueType, _ int, _ error) {
		if it != jsonparser.String {
			dropped = true
			return
		}
		if s, err := jsonparser.ParseString(item); err == nil {
			out = append(out, s)
		}
	})
	if err != nil || dropped {
		d.reject(keys)
	}
	return out
}
