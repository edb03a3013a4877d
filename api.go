// Package vetted provides decoding that only succeeds for valid values.
//
// A type opts in by implementing Validator. Decoding then runs in two steps
// that callers observe as one: the codec builds a candidate value from the
// input, and Validate decides whether the candidate is handed back. A value
// that decoded structurally but fails Validate is never returned.
//
// # Basic Usage
//
//	type Reading struct {
//	    Value int `json:"value"`
//	}
//
//	func (r Reading) Validate() error {
//	    if r.Value < 0 {
//	        return errors.New("value must be non-negative")
//	    }
//	    return nil
//	}
//
//	r, err := vetted.Decode[Reading](json.New(), []byte(`{"value": 10}`))
//
// # Error Classification
//
// Every failed decode is exactly one of:
//
//   - structural: the codec could not build a value of the declared shape
//     (malformed input, type mismatch, missing required field, null input
//     for a type that validates during decode). Matches ErrStructural.
//   - validation: the value was built but Validate rejected it. Matches
//     ErrValidation; the reason returned by Validate is reachable with
//     errors.Is and errors.As.
//
// # Generated Entry Points
//
// Annotating a type with a directive and running vetgen makes the format
// libraries' own Unmarshal functions validate the type:
//
//	//go:generate go run github.com/zoobzio/vetted/cmd/vetgen
//
//	//vetted:decode json,yaml
//	type Reading struct { ... }
//
// The generated methods decode into a method-less shadow of the type, so the
// structural behavior of the format library is unchanged, then call Accept.
//
// # Required Fields
//
// Codecs report a missing field as a structural error unless the field is a
// pointer or interface, carries omitempty/omitzero, or is tagged
// `vetted:"optional"`.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package vetted
