package vetted

import (
	"context"
	"reflect"
)

// Accept validates candidate and stores it in dst if Validate accepts it.
// On rejection dst is left untouched and a *ValidationError is returned.
//
// Accept is the last step of every generated unmarshaler:
//
//	func (v *Reading) UnmarshalJSON(data []byte) error {
//	    var plain vettedPlainReading
//	    if err := vettedjson.Unmarshal(data, &plain); err != nil {
//	        return err
//	    }
//	    return vetted.Accept(v, Reading(plain))
//	}
func Accept[T any, P Validatable[T]](dst P, candidate T) error {
	if err := P(&candidate).Validate(); err != nil {
		return newValidationError(reflect.TypeFor[T]().String(), err)
	}
	*dst = candidate
	return nil
}

// Decode decodes data with c and returns the value only if Validate accepts it.
// It uses the cached Decoder for T and the codec's configuration.
func Decode[T any, P Validatable[T]](c Codec, data []byte) (T, error) {
	var zero T
	d, err := Use[T, P](c)
	if err != nil {
		return zero, err
	}
	obj, err := d.Decode(context.Background(), data)
	if err != nil {
		return zero, err
	}
	return *obj, nil
}
