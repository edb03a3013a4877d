package vetted

// SelfValidating is implemented by types whose unmarshalers already call
// Validate, which is what vetgen generates. The Decoder checks it so a value
// is validated once per decode instead of twice.
//
// ValidatedOnDecode reports whether the unmarshaler for contentType runs
// Validate. A type generated for JSON only still gets validated by the
// Decoder when it is decoded from YAML.
type SelfValidating interface {
	ValidatedOnDecode(contentType string) bool
}

// ValidatesOnDecode reports whether obj's unmarshaler for contentType runs
// Validate.
func ValidatesOnDecode(obj any, contentType string) bool {
	sv, ok := obj.(SelfValidating)
	return ok && sv.ValidatedOnDecode(contentType)
}
