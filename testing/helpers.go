// Package testing provides fixture types and helpers for vetted tests.
package testing

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zoobzio/vetted"
	"github.com/zoobzio/vetted/bson"
	"github.com/zoobzio/vetted/json"
	"github.com/zoobzio/vetted/msgpack"
	"github.com/zoobzio/vetted/xml"
	"github.com/zoobzio/vetted/yaml"
)

//go:generate go run github.com/zoobzio/vetted/cmd/vetgen

// Rejection reasons returned by the fixtures' Validate methods.
var (
	ErrNegative     = errors.New("value must be non-negative")
	ErrOutOfRange   = errors.New("percent must be between 0 and 100")
	ErrInverted     = errors.New("min must not exceed max")
	ErrNotPositive  = errors.New("size must be positive")
	ErrVariant      = errors.New("exactly one shape variant must be set")
	ErrNoSensor     = errors.New("sensor is required")
	ErrInvalidEmail = errors.New("email must contain @")
)

// Reading is a sensor value that must be non-negative.
//
//vetted:decode json,yaml,msgpack,bson,xml
type Reading struct {
	Value int `json:"value" yaml:"value" msgpack:"value" bson:"value" xml:"value"`
}

func (r Reading) Validate() error {
	if r.Value < 0 {
		return ErrNegative
	}
	return nil
}

// Percent is an integer in [0, 100].
//
//vetted:decode json,yaml
type Percent int

func (p Percent) Validate() error {
	if p < 0 || p > 100 {
		return fmt.Errorf("%w: got %d", ErrOutOfRange, int(p))
	}
	return nil
}

// Window is an ordered range whose bounds must not be inverted.
//
//vetted:decode json,yaml
type Window[T cmp.Ordered] struct {
	Min T `json:"min" yaml:"min"`
	Max T `json:"max" yaml:"max"`
}

func (w Window[T]) Validate() error {
	if cmp.Compare(w.Min, w.Max) > 0 {
		return ErrInverted
	}
	return nil
}

// Circle is one Shape variant.
//
//vetted:decode json,yaml
type Circle struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

func (c Circle) Validate() error {
	if c.Radius <= 0 {
		return ErrNotPositive
	}
	return nil
}

// Square is one Shape variant.
//
//vetted:decode json,yaml
type Square struct {
	Side float64 `json:"side" yaml:"side"`
}

func (s Square) Validate() error {
	if s.Side <= 0 {
		return ErrNotPositive
	}
	return nil
}

// Shape holds exactly one variant.
//
//vetted:decode json,yaml
type Shape struct {
	Circle *Circle `json:"circle,omitempty" yaml:"circle,omitempty"`
	Square *Square `json:"square,omitempty" yaml:"square,omitempty"`
}

func (s Shape) Validate() error {
	switch {
	case s.Circle != nil && s.Square == nil:
		return s.Circle.Validate()
	case s.Square != nil && s.Circle == nil:
		return s.Square.Validate()
	default:
		return ErrVariant
	}
}

// Batch groups readings from one sensor. Each reading validates itself.
//
//vetted:decode json,yaml,msgpack,bson
type Batch struct {
	Sensor   string    `json:"sensor" yaml:"sensor" msgpack:"sensor" bson:"sensor"`
	Readings []Reading `json:"readings" yaml:"readings" msgpack:"readings" bson:"readings"`
	Note     string    `json:"note" yaml:"note" msgpack:"note" bson:"note" vetted:"optional"`
}

func (b Batch) Validate() error {
	if b.Sensor == "" {
		return ErrNoSensor
	}
	return nil
}

// Account has no generated unmarshalers; it is only validated through
// vetted.Decode and Decoder.
type Account struct {
	ID      string `json:"id" yaml:"id" msgpack:"id" bson:"id" xml:"id"`
	Email   string `json:"email" yaml:"email" msgpack:"email" bson:"email" xml:"email"`
	Balance int    `json:"balance" yaml:"balance" msgpack:"balance" bson:"balance" xml:"balance"`
}

func (a *Account) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if a.Balance < 0 {
		return ErrNegative
	}
	return nil
}

// Codecs returns one codec per supported format, keyed by format name.
func Codecs() map[vetted.Format]vetted.Codec {
	return map[vetted.Format]vetted.Codec{
		vetted.FormatJSON:    json.New(),
		vetted.FormatYAML:    yaml.New(),
		vetted.FormatMsgpack: msgpack.New(),
		vetted.FormatBSON:    bson.New(),
		vetted.FormatXML:     xml.New(),
	}
}

// NewDecoder returns a decoder for T or fails the test.
func NewDecoder[T any, P vetted.Validatable[T]](tb testing.TB, codec vetted.Codec, opts ...vetted.Option) *vetted.Decoder[T, P] {
	tb.Helper()
	d, err := vetted.NewDecoder[T, P](codec, opts...)
	if err != nil {
		tb.Fatalf("NewDecoder() error: %v", err)
	}
	return d
}

// Encode marshals v with codec or fails the test.
func Encode(tb testing.TB, codec vetted.Codec, v any) []byte {
	tb.Helper()
	data, err := codec.Marshal(v)
	if err != nil {
		tb.Fatalf("Marshal() error: %v", err)
	}
	return data
}
