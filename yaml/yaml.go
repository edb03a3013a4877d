// Package yaml provides a YAML codec implementation.
package yaml

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/vetted"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements vetted.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() vetted.Codec {
	return &yamlCodec{}
}

const contentType = "application/yaml"

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return contentType
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v and reports missing required fields.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	_, check := target(v)
	validates := vetted.ValidatesOnDecode(v, contentType)
	if !check && !validates {
		return yaml.Unmarshal(data, v)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if validates && isNull(&node) {
		return fmt.Errorf("%w for %T", vetted.ErrNullInput, v)
	}
	if !check {
		return node.Decode(v)
	}
	return DecodeNode(&node, v)
}

// DecodeNode decodes node into v and reports missing required fields as
// *vetted.MissingFieldError. Generated UnmarshalYAML methods call it.
func DecodeNode(node *yaml.Node, v any) error {
	// An empty document leaves v untouched, like yaml.Unmarshal.
	if node.Kind != 0 {
		if err := node.Decode(v); err != nil {
			return err
		}
	}

	t, ok := target(v)
	if !ok {
		return nil
	}
	return vetted.RequireFields(t, rules, nodeDocument(node))
}

var (
	unmarshalerType     = reflect.TypeFor[yaml.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// rules describes how yaml.v3 maps fields to keys: lowercased field names,
// embedded structs only flattened with ",inline".
var rules = vetted.FieldRules{
	TagKey:       "yaml",
	Name:         strings.ToLower,
	SelfDecoding: selfDecoding,
	ContentType:  contentType,
}

// selfDecoding reports types with their own YAML decoding.
func selfDecoding(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerType) || pt.Implements(textUnmarshalerType)
}

// target returns the type v points to when it has required fields to check.
func target(v any) (reflect.Type, bool) {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return nil, false
	}
	t := rt.Elem()
	if selfDecoding(t) || !vetted.NeedsFields(t, rules) {
		return nil, false
	}
	return t, true
}

// isNull reports whether node is an empty document or a null scalar.
func isNull(node *yaml.Node) bool {
	node = resolve(node)
	if node == nil {
		return true
	}
	for node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = resolve(node.Content[0])
		if node == nil {
			return true
		}
	}
	switch node.Kind {
	case 0:
		return true
	case yaml.DocumentNode:
		return len(node.Content) == 0
	case yaml.ScalarNode:
		return node.ShortTag() == "!!null"
	}
	return false
}

// nodeDocument returns the document for a mapping node, following document
// and alias nodes, or nil for anything else.
func nodeDocument(node *yaml.Node) vetted.Document {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		case yaml.MappingNode:
			return mapping{node: node}
		default:
			return nil
		}
	}
	return nil
}

// mapping is a YAML mapping node.
type mapping struct {
	node *yaml.Node
}

func (m mapping) Field(key string) (vetted.Document, bool) {
	v, ok := m.lookup(key)
	if !ok {
		return nil, false
	}
	return nodeDocument(v), true
}

// Null reports whether key holds a null scalar.
func (m mapping) Null(key string) bool {
	v, ok := m.lookup(key)
	return ok && isNull(v)
}

// NullItem reports whether key holds a sequence or mapping with a null element.
func (m mapping) NullItem(key string) bool {
	v, ok := m.lookup(key)
	if !ok {
		return false
	}
	v = resolve(v)
	switch v.Kind {
	case yaml.SequenceNode:
		for _, item := range v.Content {
			if isNull(item) {
				return true
			}
		}
	case yaml.MappingNode:
		for i := 1; i < len(v.Content); i += 2 {
			if isNull(v.Content[i]) {
				return true
			}
		}
	}
	return false
}

// lookup finds the value node for key among the mapping's keys, then in
// merged mappings.
func (m mapping) lookup(key string) (*yaml.Node, bool) {
	var merged []*yaml.Node
	content := m.node.Content
	for i := 0; i+1 < len(content); i += 2 {
		k, v := content[i], content[i+1]
		if k.Kind != yaml.ScalarNode {
			continue
		}
		if k.ShortTag() == "!!merge" {
			merged = append(merged, v)
			continue
		}
		if k.Value == key {
			return v, true
		}
	}

	for _, v := range merged {
		if node, ok := mergeLookup(v, key); ok {
			return node, true
		}
	}
	return nil, false
}

// resolve follows alias nodes.
func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// mergeLookup resolves key in the value of a merge key, which is a mapping
// or a sequence of mappings.
func mergeLookup(node *yaml.Node, key string) (*yaml.Node, bool) {
	node = resolve(node)
	if node == nil {
		return nil, false
	}
	if node.Kind == yaml.SequenceNode {
		for _, item := range node.Content {
			if v, ok := mergeLookup(item, key); ok {
				return v, true
			}
		}
		return nil, false
	}
	if m, ok := nodeDocument(node).(mapping); ok {
		return m.lookup(key)
	}
	return nil, false
}
