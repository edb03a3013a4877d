package vetted

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrStructural indicates the codec could not build a value of the declared shape.
	ErrStructural = errors.New("structural decode failed")

	// ErrValidation indicates the value decoded but Validate rejected it.
	ErrValidation = errors.New("validation failed")

	// ErrMissingField indicates a required field was absent from the input.
	// Errors matching it also match ErrStructural.
	ErrMissingField = errors.New("missing field")

	// ErrTooLarge indicates the input exceeded the decoder's size limit.
	// Errors matching it also match ErrStructural.
	ErrTooLarge = errors.New("input too large")

	// ErrNullInput indicates a null document, field or element where a type
	// whose unmarshaler validates it was expected. Format libraries skip
	// unmarshalers for null, so codecs reject it instead of returning an
	// unvalidated zero value.
	ErrNullInput = errors.New("null input")

	// ErrUnknownField indicates a key that no field decodes, reported by codecs
	// configured to reject unknown fields.
	ErrUnknownField = errors.New("unknown field")
)

// StructuralError represents a failure of the structural parse step.
// The codec's error is kept unchanged as Cause.
type StructuralError struct {
	TypeName    string // Type being decoded
	ContentType string // Content type of the codec
	Cause       error  // Original error from the codec
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.TypeName, e.ContentType, e.Cause)
}

func (e *StructuralError) Unwrap() []error {
	return []error{ErrStructural, e.Cause}
}

// ValidationError represents a value that decoded but was rejected by Validate.
// Reason is the error Validate returned.
type ValidationError struct {
	TypeName string // Type whose Validate rejected the value
	Reason   error  // Error returned by Validate
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.TypeName, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// MissingFieldError represents a required field absent from the input.
type MissingFieldError struct {
	Field string // Go field path, e.g. "Customer.Email"
	Key   string // Key expected in the input
}

func (e *MissingFieldError) Error() string {
	if e.Field == e.Key {
		return fmt.Sprintf("missing field %q", e.Key)
	}
	return fmt.Sprintf("missing field %q (field %s)", e.Key, e.Field)
}

func (e *MissingFieldError) Unwrap() []error {
	return []error{ErrMissingField, ErrStructural}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStructural reports whether err is a structural failure.
// Any decode failure that is not a validation failure is structural.
func IsStructural(err error) bool {
	return err != nil && !IsValidation(err)
}

// newStructuralError creates a StructuralError for codec failures.
func newStructuralError(typeName, contentType string, cause error) error {
	return &StructuralError{
		TypeName:    typeName,
		ContentType: contentType,
		Cause:       cause,
	}
}

// newValidationError creates a ValidationError for a rejected value.
func newValidationError(typeName string, reason error) error {
	return &ValidationError{
		TypeName: typeName,
		Reason:   reason,
	}
}
