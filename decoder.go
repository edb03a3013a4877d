package vetted

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Decoder decodes values of type T with a codec and returns only values that
// Validate accepts. Use Decode for ingress and Encode for egress.
//
// Decoders are immutable after construction and safe for concurrent use.
type Decoder[T any, P Validatable[T]] struct {
	codec Codec

	// Options
	maxSize int

	// Type metadata
	typeName       string
	selfValidating bool // T's unmarshaler for this codec already calls Validate
}

// Option configures a Decoder.
type Option func(*options)

type options struct {
	maxSize int
}

// WithMaxSize rejects inputs longer than n bytes before parsing them.
// The failure is structural and matches ErrTooLarge. Zero means no limit.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// NewDecoder creates a Decoder for type T using codec.
//
// It fails if T is a kind no codec can decode into (channels, functions,
// unsafe pointers).
func NewDecoder[T any, P Validatable[T]](codec Codec, opts ...Option) (*Decoder[T, P], error) {
	if codec == nil {
		return nil, fmt.Errorf("nil codec")
	}

	rt := reflect.TypeFor[T]()
	switch rt.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return nil, fmt.Errorf("cannot decode into %s", rt)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize < 0 {
		return nil, fmt.Errorf("negative max size %d", o.maxSize)
	}

	// Cache field metadata for T and the types it references, so field
	// plans for them are built from sentinel.
	if rt.Kind() == reflect.Struct {
		_, _ = sentinel.TryScan[T]()
	}

	var zero T
	d := &Decoder[T, P]{
		codec:          codec,
		maxSize:        o.maxSize,
		typeName:       rt.String(),
		selfValidating: ValidatesOnDecode(P(&zero), codec.ContentType()),
	}

	emitDecoderCreated(context.Background(), codec.ContentType(), d.typeName, d.selfValidating)
	return d, nil
}

// ContentType returns the content type of the decoder's codec.
func (d *Decoder[T, P]) ContentType() string {
	return d.codec.ContentType()
}

// Decode parses data into a T and validates it.
//
// A structural failure returns a *StructuralError wrapping the codec's error
// and Validate is not called. A rejected value returns a *ValidationError
// carrying the reason. On success the decoded value is returned unchanged.
func (d *Decoder[T, P]) Decode(ctx context.Context, data []byte) (*T, error) {
	start := time.Now()
	emitDecodeStart(ctx, d.codec.ContentType(), d.typeName, len(data))

	var retErr error
	defer func() {
		duration := time.Since(start)
		emitDecodeComplete(ctx, d.codec.ContentType(), d.typeName, duration, retErr)
		observeDecode(d.typeName, d.codec.ContentType(), duration, retErr)
	}()

	if d.maxSize > 0 && len(data) > d.maxSize {
		retErr = newStructuralError(d.typeName, d.codec.ContentType(),
			fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), d.maxSize))
		return nil, retErr
	}

	var obj T
	if err := d.codec.Unmarshal(data, &obj); err != nil {
		// A generated unmarshaler (for T or a nested type) rejected the value.
		if IsValidation(err) {
			retErr = err
			emitDecodeRejected(ctx, d.codec.ContentType(), d.typeName, err)
			return nil, retErr
		}
		retErr = newStructuralError(d.typeName, d.codec.ContentType(), err)
		return nil, retErr
	}

	if d.selfValidating {
		return &obj, nil
	}

	if err := P(&obj).Validate(); err != nil {
		retErr = newValidationError(d.typeName, err)
		emitDecodeRejected(ctx, d.codec.ContentType(), d.typeName, err)
		return nil, retErr
	}

	return &obj, nil
}

// Encode validates obj and marshals it.
// A value Validate rejects is not encoded, so anything Encode produces
// decodes again.
func (d *Decoder[T, P]) Encode(ctx context.Context, obj *T) ([]byte, error) {
	start := time.Now()
	emitEncodeStart(ctx, d.codec.ContentType(), d.typeName)

	var retErr error
	var retData []byte
	defer func() {
		emitEncodeComplete(ctx, d.codec.ContentType(), d.typeName,
			len(retData), time.Since(start), retErr)
	}()

	if obj == nil {
		retErr = fmt.Errorf("encode %s: nil value", d.typeName)
		return nil, retErr
	}

	if err := P(obj).Validate(); err != nil {
		retErr = newValidationError(d.typeName, err)
		return nil, retErr
	}

	data, err := d.codec.Marshal(obj)
	if err != nil {
		retErr = fmt.Errorf("marshal: %w", err)
		return nil, retErr
	}

	retData = data
	return retData, nil
}
