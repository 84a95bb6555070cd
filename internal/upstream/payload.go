package upstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind describes the shape of the answer field the service returned.
type Kind string

const (
	KindEmpty  Kind = "empty"
	KindText   Kind = "text"
	KindList   Kind = "list"
	KindObject Kind = "object"
	// KindOther covers numbers and booleans, which carry no analysis.
	KindOther Kind = "other"
)

// Entry is one key/value pair of an object answer, in document order.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Payload is the first truthy answer field of a service response.
type Payload struct {
	Field   string          `json:"field,omitempty"`
	Kind    Kind            `json:"kind"`
	Text    string          `json:"text,omitempty"`
	List    json.RawMessage `json:"list,omitempty"`
	Entries []Entry         `json:"entries,omitempty"`
}

// DecodePayload picks the first truthy field of raw among fields, in order.
func DecodePayload(raw []byte, fields ...string) (Payload, error) {
	if !gjson.ValidBytes(raw) {
		return Payload{}, ErrBadResponse
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Payload{}, fmt.Errorf("%w: top level is not an object", ErrBadResponse)
	}
	for _, field := range fields {
		value := root.Get(field)
		if !truthy(value) {
			continue
		}
		p := Payload{Field: field}
		switch {
		case value.Type == gjson.String:
			p.Kind = KindText
			p.Text = value.Str
		case value.IsArray():
			p.Kind = KindList
			p.List = json.RawMessage(value.Raw)
		case value.IsObject():
			p.Kind = KindObject
			p.Entries = objectEntries(value)
		default:
			p.Kind = KindOther
			p.Text = value.Raw
		}
		return p, nil
	}
	return Payload{Kind: KindEmpty}, nil
}

// DecodeEntries reads raw as one object of heading to body, in document
// order, with bodies flattened the way object answers are.
func DecodeEntries(raw []byte) ([]Entry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrBadResponse
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrBadResponse)
	}
	return objectEntries(root), nil
}

// String renders the payload as the text a reader would see.
func (p Payload) String() string {
	switch p.Kind {
	case KindText, KindOther:
		return p.Text
	case KindList:
		return string(p.List)
	case KindObject:
		parts := make([]string, 0, len(p.Entries))
		for _, e := range p.Entries {
			parts = append(parts, e.Key+": "+e.Value)
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func objectEntries(obj gjson.Result) []Entry {
	var out []Entry
	obj.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Entry{Key: key.String(), Value: entryText(value)})
		return true
	})
	return out
}

func entryText(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var lines []string
	v.ForEach(func(_, item gjson.Result) bool {
		if s := strings.TrimSpace(item.String()); s != "" {
			lines = append(lines, s)
		}
		return true
	})
	return strings.Join(lines, "\n")
}
