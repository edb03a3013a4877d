package json

import (
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/vetted"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/json")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type TestStruct struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := TestStruct{Name: "test", Value: 42}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored TestStruct
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.Name != original.Name || restored.Value != original.Value {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
}

func TestMarshalNil(t *testing.T) {
	c := New()

	data, err := c.Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}

	if string(data) != "null" {
		t.Errorf("Marshal(nil) = %q, want %q", data, "null")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct{}
	err := c.Unmarshal([]byte("invalid json"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

type address struct {
	City string `json:"city"`
	Zip  string `json:"zip,omitempty"`
}

type Base struct {
	ID string `json:"id"`
}

type customer struct {
	Base
	Name    string   `json:"name"`
	Address address  `json:"address"`
	Billing *address `json:"billing"`
	Tags    []string `json:"tags,omitempty"`
}

func TestUnmarshal_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string
	}{
		{"complete", `{"id":"1","name":"a","address":{"city":"x"}}`, ""},
		{"case-insensitive key", `{"ID":"1","Name":"a","Address":{"City":"x"}}`, ""},
		{"missing top-level", `{"id":"1","address":{"city":"x"}}`, "name"},
		{"missing embedded", `{"name":"a","address":{"city":"x"}}`, "id"},
		{"missing nested", `{"id":"1","name":"a","address":{}}`, "city"},
		{"incomplete pointer", `{"id":"1","name":"a","address":{"city":"x"},"billing":{}}`, "city"},
		{"null pointer", `{"id":"1","name":"a","address":{"city":"x"},"billing":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c customer
			err := Unmarshal([]byte(tt.input), &c)
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Unmarshal() error: %v", err)
				}
				return
			}

			var mf *vetted.MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("Unmarshal() error = %v, want *MissingFieldError", err)
			}
			if mf.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", mf.Key, tt.wantKey)
			}
		})
	}
}

func TestDisallowUnknownFields(t *testing.T) {
	type strict struct {
		Value int `json:"value"`
	}

	var v strict
	if err := New().Unmarshal([]byte(`{"value":1,"extra":2}`), &v); err != nil {
		t.Errorf("Unmarshal() error: %v", err)
	}
	if err := New(DisallowUnknownFields()).Unmarshal([]byte(`{"value":1,"extra":2}`), &v); err == nil {
		t.Error("Unmarshal() should reject unknown fields")
	}
	if err := New(DisallowUnknownFields()).Unmarshal([]byte(`{}`), &v); !errors.Is(err, vetted.ErrMissingField) {
		t.Errorf("Unmarshal() error = %v, want ErrMissingField", err)
	}
}

func TestDisallowUnknownFields_SelfValidating(t *testing.T) {
	strict := New(DisallowUnknownFields())

	var g gauge
	if err := New().Unmarshal([]byte(`{"level":1,"extra":2}`), &g); err != nil {
		t.Errorf("lenient Unmarshal() error: %v", err)
	}

	err := strict.Unmarshal([]byte(`{"level":1,"extra":2}`), &g)
	if !errors.Is(err, vetted.ErrUnknownField) {
		t.Errorf("Unmarshal() error = %v, want ErrUnknownField", err)
	}

	// Keys are checked before decoding, so Validate never sees the value.
	err = strict.Unmarshal([]byte(`{"level":-1,"extra":2}`), &g)
	if !errors.Is(err, vetted.ErrUnknownField) || vetted.IsValidation(err) {
		t.Errorf("Unmarshal() error = %v, want ErrUnknownField only", err)
	}

	// Keys match case-insensitively, as the decoder does.
	if err := strict.Unmarshal([]byte(`{"Level":1}`), &g); err != nil {
		t.Errorf("Unmarshal() error: %v", err)
	}

	type dial struct {
		Name  string `json:"name"`
		Gauge gauge  `json:"gauge"`
	}

	var d dial
	err = strict.Unmarshal([]byte(`{"name":"a","gauge":{"level":1,"extra":2}}`), &d)
	if !errors.Is(err, vetted.ErrUnknownField) {
		t.Fatalf("Unmarshal() error = %v, want ErrUnknownField", err)
	}
	if !strings.Contains(err.Error(), `"gauge.extra"`) {
		t.Errorf("error %q should name gauge.extra", err)
	}
	if err := strict.Unmarshal([]byte(`{"name":"a","gauge":{"level":1}}`), &d); err != nil {
		t.Errorf("Unmarshal() error: %v", err)
	}
}

var errNegative = errors.New("negative")

// gauge validates itself in UnmarshalJSON the way generated code does.
type gauge struct {
	Level int `json:"level"`
}

func (g gauge) Validate() error {
	if g.Level < 0 {
		return errNegative
	}
	return nil
}

func (gauge) ValidatedOnDecode(contentType string) bool {
	return contentType == "application/json"
}

func (g *gauge) UnmarshalJSON(data []byte) error {
	type plain gauge
	var p plain
	if err := Unmarshal(data, &p); err != nil {
		return err
	}
	return vetted.Accept(g, gauge(p))
}

func TestUnmarshal_SelfValidating(t *testing.T) {
	c := New()

	var g gauge
	if err := c.Unmarshal([]byte(`{"level":3}`), &g); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if g.Level != 3 {
		t.Errorf("Level = %d, want 3", g.Level)
	}

	err := c.Unmarshal([]byte(`{"level":-3}`), &g)
	if !errors.Is(err, errNegative) || !vetted.IsValidation(err) {
		t.Errorf("Unmarshal() error = %v, want validation error", err)
	}
	if g.Level != 3 {
		t.Error("rejected value should not be stored")
	}

	if err := c.Unmarshal([]byte(`{}`), &g); !errors.Is(err, vetted.ErrMissingField) {
		t.Errorf("Unmarshal() error = %v, want ErrMissingField", err)
	}

	if err := c.Unmarshal([]byte(` null `), &g); !errors.Is(err, vetted.ErrNullInput) {
		t.Errorf("Unmarshal() error = %v, want ErrNullInput", err)
	}

	// A slice of self-validating elements rejects the bad element.
	var gs []gauge
	if err := c.Unmarshal([]byte(`[{"level":1},{"level":-1}]`), &gs); !errors.Is(err, errNegative) {
		t.Errorf("Unmarshal() error = %v, want %v", err, errNegative)
	}
}
