// Package bson provides a BSON codec implementation.
package bson

import (
	"reflect"
	"strings"

	"github.com/zoobzio/vetted"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements vetted.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() vetted.Codec {
	return &bsonCodec{}
}

const contentType = "application/bson"

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return contentType
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v and reports missing required fields.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return Unmarshal(data, v)
}

// Unmarshal decodes a BSON document into v and reports missing required
// fields as *vetted.MissingFieldError. Generated UnmarshalBSON methods call it.
func Unmarshal(data []byte, v any) error {
	if err := bson.Unmarshal(data, v); err != nil {
		return err
	}
	return requireFields(data, v)
}

var (
	unmarshalerType      = reflect.TypeFor[bson.Unmarshaler]()
	valueUnmarshalerType = reflect.TypeFor[bson.ValueUnmarshaler]()
)

// rules describes how the mongo driver maps fields to keys: lowercased field
// names, embedded structs only flattened with ",inline".
var rules = vetted.FieldRules{
	TagKey:       "bson",
	Name:         strings.ToLower,
	SelfDecoding: selfDecoding,
	ContentType:  contentType,
}

// selfDecoding reports types with their own BSON decoding.
func selfDecoding(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerType) || pt.Implements(valueUnmarshalerType)
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
	return vetted.RequireFields(t, rules, document(data))
}

// document is a raw BSON document.
type document bson.Raw

func (d document) Field(key string) (vetted.Document, bool) {
	rv, err := bson.Raw(d).LookupErr(key)
	if err != nil {
		return nil, false
	}
	if sub, ok := rv.DocumentOK(); ok {
		return document(sub), true
	}
	return nil, true
}

// Null reports whether key holds a BSON null.
func (d document) Null(key string) bool {
	rv, err := bson.Raw(d).LookupErr(key)
	return err == nil && rv.Type == bson.TypeNull
}

// NullItem reports whether key holds an array or embedded document with a
// null element.
func (d document) NullItem(key string) bool {
	rv, err := bson.Raw(d).LookupErr(key)
	if err != nil {
		return false
	}
	var items bson.Raw
	switch rv.Type {
	case bson.TypeArray:
		items = rv.Array()
	case bson.TypeEmbeddedDocument:
		items = rv.Document()
	default:
		return false
	}
	values, err := items.Values()
	if err != nil {
		return false
	}
	for _, v := range values {
		if v.Type == bson.TypeNull {
			return true
		}
	}
	return false
}
