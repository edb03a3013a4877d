// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/zoobzio/vetted"
)

// jsonCodec implements vetted.Codec for JSON.
type jsonCodec struct {
	disallowUnknown bool
}

// Option configures the JSON codec.
type Option func(*jsonCodec)

// DisallowUnknownFields makes keys that match no struct field a structural error.
// Keys are checked against the decoded type before decoding, through nested
// structs including those with generated unmarshalers. Objects inside lists
// and maps are checked by the JSON library only, which does not look inside
// types with their own UnmarshalJSON.
func DisallowUnknownFields() Option {
	return func(c *jsonCodec) {
		c.disallowUnknown = true
	}
}

// New returns a JSON codec.
func New(opts ...Option) vetted.Codec {
	c := &jsonCodec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const contentType = "application/json"

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return contentType
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v and reports missing required fields.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	if vetted.ValidatesOnDecode(v, contentType) && isNull(data) {
		return fmt.Errorf("%w for %T", vetted.ErrNullInput, v)
	}
	if !c.disallowUnknown {
		return Unmarshal(data, v)
	}

	if err := rejectUnknown(data, v); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return requireFields(data, v)
}

// Unmarshal decodes JSON data into v and reports missing required fields
// as *vetted.MissingFieldError. Generated UnmarshalJSON methods call it.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return requireFields(data, v)
}

var (
	unmarshalerType     = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// rules describes how encoding/json style decoders map fields to keys.
var rules = vetted.FieldRules{
	TagKey:          "json",
	FlattenEmbedded: true,
	SelfDecoding:    selfDecoding,
	ContentType:     contentType,
	FoldCase:        true,
}

// selfDecoding reports types with their own JSON decoding.
func selfDecoding(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerType) || pt.Implements(textUnmarshalerType)
}

// requireFields checks the required fields of v's type against data.
func requireFields(data []byte, v any) error {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return nil
	}
	t := rt.Elem()
	if selfDecoding(t) || !vetted.NeedsFields(t, rules) {
		return nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return vetted.RequireFields(t, rules, document(m))
}

// rejectUnknown checks the keys of data against v's type. Input that is not an
// object is left to the decoder.
func rejectUnknown(data []byte, v any) error {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return nil
	}
	if selfDecoding(rt.Elem()) && !vetted.ValidatesOnDecode(v, contentType) {
		return nil
	}
	doc, ok := child(data).(document)
	if !ok {
		return nil
	}
	return vetted.RejectUnknown(rt.Elem(), rules, doc)
}

// document is a JSON object keyed by member name.
type document map[string]json.RawMessage

func (d document) Field(key string) (vetted.Document, bool) {
	raw, ok := d.lookup(key)
	if !ok {
		return nil, false
	}
	return child(raw), true
}

// lookup finds key exactly, then case-insensitively as encoding/json matches.
func (d document) lookup(key string) (json.RawMessage, bool) {
	if raw, ok := d[key]; ok {
		return raw, true
	}
	for k, v := range d {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Null reports whether key holds the null literal.
func (d document) Null(key string) bool {
	raw, ok := d.lookup(key)
	return ok && isNull(raw)
}

// NullItem reports whether key holds an array or object with a null element.
func (d document) NullItem(key string) bool {
	raw, ok := d.lookup(key)
	if !ok {
		return false
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return false
		}
		for _, item := range items {
			if isNull(item) {
				return true
			}
		}
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return false
		}
		for _, item := range m {
			if isNull(item) {
				return true
			}
		}
	}
	return false
}

// Keys returns the object's member names in sorted order.
func (d document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isNull reports whether data is the JSON null literal.
func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// child returns the document for an object value, or nil for anything else.
func child(raw json.RawMessage) vetted.Document {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil
	}
	return document(m)
}
