// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/vetted"
)

// msgpackCodec implements vetted.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() vetted.Codec {
	return &msgpackCodec{}
}

const contentType = "application/msgpack"

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return contentType
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v and reports missing required fields.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	if vetted.ValidatesOnDecode(v, contentType) && (len(data) == 0 || data[0] == msgpcode.Nil) {
		return fmt.Errorf("%w for %T", vetted.ErrNullInput, v)
	}
	return Unmarshal(data, v)
}

// Unmarshal decodes MessagePack data into v and reports missing required
// fields as *vetted.MissingFieldError.
func Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return err
	}
	return requireFields(data, v)
}

// DecodeFrom reads the next value from dec into v. Generated DecodeMsgpack
// methods call it.
//
// The value is read from dec as raw bytes and decoded again with a new
// decoder, so settings made on dec (SetCustomStructTag,
// UseLooseInterfaceDecoding, SetMapDecoder and the like) do not apply to v.
func DecodeFrom(dec *msgpack.Decoder, v any) error {
	raw, err := dec.DecodeRaw()
	if err != nil {
		return err
	}
	return Unmarshal(raw, v)
}

var (
	customDecoderType     = reflect.TypeFor[msgpack.CustomDecoder]()
	unmarshalerType       = reflect.TypeFor[msgpack.Unmarshaler]()
	binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
	textUnmarshalerType   = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// rules describes how msgpack maps fields to keys: Go field names,
// embedded structs inlined.
var rules = vetted.FieldRules{
	TagKey:          "msgpack",
	FlattenEmbedded: true,
	SelfDecoding:    selfDecoding,
	ContentType:     contentType,
}

// selfDecoding reports types with their own MessagePack decoding.
func selfDecoding(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(customDecoderType) ||
		pt.Implements(unmarshalerType) ||
		pt.Implements(binaryUnmarshalerType) ||
		pt.Implements(textUnmarshalerType)
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
	return vetted.RequireFields(t, rules, child(data))
}

// document is a MessagePack map keyed by string.
type document map[string]msgpack.RawMessage

func (d document) Field(key string) (vetted.Document, bool) {
	raw, ok := d[key]
	if !ok {
		return nil, false
	}
	return child(raw), true
}

// Null reports whether key holds nil.
func (d document) Null(key string) bool {
	raw, ok := d[key]
	return ok && len(raw) > 0 && raw[0] == msgpcode.Nil
}

// NullItem reports whether key holds an array or map with a nil element.
func (d document) NullItem(key string) bool {
	raw, ok := d[key]
	if !ok || len(raw) == 0 {
		return false
	}

	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	c := raw[0]
	switch {
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return false
		}
		for i := 0; i < n; i++ {
			if null, err := nextIsNull(dec); null || err != nil {
				return null
			}
		}
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return false
		}
		for i := 0; i < n; i++ {
			if err := dec.Skip(); err != nil {
				return false
			}
			if null, err := nextIsNull(dec); null || err != nil {
				return null
			}
		}
	}
	return false
}

// nextIsNull reports whether the next value in dec is nil and skips it.
func nextIsNull(dec *msgpack.Decoder) (bool, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return false, err
	}
	if c == msgpcode.Nil {
		return true, nil
	}
	return false, dec.Skip()
}

// child returns the document for a map value, or nil for anything else.
func child(raw []byte) vetted.Document {
	if len(raw) == 0 {
		return nil
	}
	c := raw[0]
	if !msgpcode.IsFixedMap(c) && c != msgpcode.Map16 && c != msgpcode.Map32 {
		return nil
	}
	var m map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return document(m)
}
