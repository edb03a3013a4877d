package vetted

import (
	"fmt"
	"strings"
)

// Format names a wire format vetgen can generate an unmarshaler for.
// Use these names in directives: //vetted:decode json,yaml
type Format string

const (
	// FormatJSON generates UnmarshalJSON.
	FormatJSON Format = "json"

	// FormatYAML generates UnmarshalYAML for gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"

	// FormatMsgpack generates DecodeMsgpack for vmihailenco/msgpack.
	FormatMsgpack Format = "msgpack"

	// FormatBSON generates UnmarshalBSON. Struct types only.
	FormatBSON Format = "bson"

	// FormatXML generates UnmarshalXML.
	FormatXML Format = "xml"
)

// formatContentTypes maps each format to the content type its codec reports.
var formatContentTypes = map[Format]string{
	FormatJSON:    "application/json",
	FormatYAML:    "application/yaml",
	FormatMsgpack: "application/msgpack",
	FormatBSON:    "application/bson",
	FormatXML:     "application/xml",
}

// Formats lists every supported format in generation order.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMsgpack, FormatBSON, FormatXML}
}

// IsValidFormat returns true if f is a known format.
func IsValidFormat(f Format) bool {
	_, ok := formatContentTypes[f]
	return ok
}

// ContentType returns the content type of the codec for f,
// or an empty string for unknown formats.
func (f Format) ContentType() string {
	return formatContentTypes[f]
}

// ParseFormats parses a comma separated format list such as "json, yaml".
// Duplicates are dropped and order is preserved. An empty list is not an error.
func ParseFormats(s string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		f := Format(name)
		if !IsValidFormat(f) {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}
