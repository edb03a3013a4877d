package vetted

import (
	"reflect"
	"sync"
)

// registryKey combines type and codec for cache lookup.
type registryKey struct {
	typ   reflect.Type
	codec any
}

var (
	registry   = make(map[registryKey]any)
	registryMu sync.RWMutex
)

// Use returns a cached decoder or builds a new one.
// The decoder is cached by type and codec configuration: codecs of the same
// type with equal settings share a decoder, so json.New() and
// json.New(json.DisallowUnknownFields()) get separate ones. Codecs that
// cannot be compared get a new, uncached decoder on every call. Options only
// apply when the decoder is first built.
func Use[T any, P Validatable[T]](codec Codec, opts ...Option) (*Decoder[T, P], error) {
	id, ok := codecIdentity(codec)
	if !ok {
		return NewDecoder[T, P](codec, opts...)
	}

	typ := reflect.TypeFor[T]()
	key := registryKey{typ: typ, codec: id}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached.(*Decoder[T, P]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached.(*Decoder[T, P]), nil
	}

	decoder, err := NewDecoder[T, P](codec, opts...)
	if err != nil {
		return nil, err
	}

	registry[key] = decoder
	return decoder, nil
}

// codecIdentity returns a comparable value identifying codec's configuration.
// A pointer codec is identified by the value it points to.
func codecIdentity(codec Codec) (any, bool) {
	if codec == nil {
		return nil, false
	}
	rv := reflect.ValueOf(codec)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !keyable(rv) {
		return nil, false
	}
	return rv.Interface(), true
}

// keyable reports whether v can be used as a map key without panicking.
// Interface fields are checked against their dynamic values.
func keyable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !keyable(v.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !keyable(v.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Interface:
		return v.IsNil() || keyable(v.Elem())
	default:
		return v.Type().Comparable()
	}
}

// Reset clears the decoder registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[registryKey]any)
}
