package vetted

// Validator is implemented by types that can judge a fully decoded value.
//
// Validate must only inspect the receiver. It returns nil to accept the value
// or an error describing why the value is rejected. The error type is chosen
// by the implementer and is preserved through decoding:
//
//	type Reading struct {
//	    Value int `json:"value"`
//	}
//
//	func (r Reading) Validate() error {
//	    if r.Value < 0 {
//	        return ErrNegative
//	    }
//	    return nil
//	}
type Validator interface {
	Validate() error
}

// Validatable constrains P to *T where *T implements Validator.
// Both value and pointer receivers satisfy it.
type Validatable[T any] interface {
	*T
	Validator
}

// Validated returns v if Validate accepts it.
// On rejection it returns the zero value and the reason unchanged.
func Validated[T any, P Validatable[T]](v T) (T, error) {
	if err := P(&v).Validate(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
