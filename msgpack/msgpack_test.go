package msgpack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
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
	if c.ContentType() != "application/msgpack" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/msgpack")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type TestStruct struct {
		Name  string `msgpack:"name"`
		Value int    `msgpack:"value"`
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

func TestMarshalBinary(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	// MessagePack is binary, should not be valid UTF-8 JSON
	if data[0] == '{' {
		t.Error("MessagePack output should be binary, not JSON")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct{}
	err := c.Unmarshal([]byte("not msgpack"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}

type Header struct {
	Version int
}

type frame struct {
	Header
	Kind    string            `msgpack:"kind"`
	Payload map[string]string `msgpack:"payload"`
	Meta    *Header           `msgpack:"meta"`
	Trace   string            `msgpack:"trace,omitempty"`
}

func TestUnmarshal_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantKey string
	}{
		{"complete", map[string]any{"Version": 1, "kind": "k", "payload": map[string]string{}}, ""},
		{"missing top-level", map[string]any{"Version": 1, "payload": map[string]string{}}, "kind"},
		{"missing embedded", map[string]any{"kind": "k", "payload": map[string]string{}}, "Version"},
		{"incomplete pointer", map[string]any{"Version": 1, "kind": "k", "payload": map[string]string{}, "meta": map[string]any{}}, "Version"},
		{"nil pointer", map[string]any{"Version": 1, "kind": "k", "payload": map[string]string{}, "meta": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := msgpack.Marshal(tt.input)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}

			var f frame
			err = New().Unmarshal(data, &f)
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

var errNegative = errors.New("negative")

// gauge validates itself in DecodeMsgpack the way generated code does.
type gauge struct {
	Level int `msgpack:"level"`
}

func (g gauge) Validate() error {
	if g.Level < 0 {
		return errNegative
	}
	return nil
}

func (gauge) ValidatedOnDecode(contentType string) bool {
	return contentType == "application/msgpack"
}

func (g *gauge) DecodeMsgpack(dec *msgpack.Decoder) error {
	type plain gauge
	var p plain
	if err := DecodeFrom(dec, &p); err != nil {
		return err
	}
	return vetted.Accept(g, gauge(p))
}

type gauges struct {
	Items []gauge `msgpack:"items"`
}

func TestUnmarshal_SelfValidating(t *testing.T) {
	c := New()

	data, _ := msgpack.Marshal(map[string]int{"level": 3})
	var g gauge
	if err := c.Unmarshal(data, &g); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if g.Level != 3 {
		t.Errorf("Level = %d, want 3", g.Level)
	}

	data, _ = msgpack.Marshal(map[string]int{"level": -3})
	err := c.Unmarshal(data, &g)
	if !errors.Is(err, errNegative) || !vetted.IsValidation(err) {
		t.Errorf("Unmarshal() error = %v, want validation error", err)
	}

	data, _ = msgpack.Marshal(map[string]int{})
	if err := c.Unmarshal(data, &g); !errors.Is(err, vetted.ErrMissingField) {
		t.Errorf("Unmarshal() error = %v, want ErrMissingField", err)
	}

	data, _ = msgpack.Marshal(nil)
	if err := c.Unmarshal(data, &g); !errors.Is(err, vetted.ErrNullInput) {
		t.Errorf("Unmarshal() error = %v, want ErrNullInput", err)
	}

	// Nested elements decode through the same method.
	data, _ = msgpack.Marshal(map[string]any{"items": []map[string]int{{"level": 1}, {"level": -1}}})
	var gs gauges
	if err := c.Unmarshal(data, &gs); !errors.Is(err, errNegative) {
		t.Errorf("Unmarshal() error = %v, want %v", err, errNegative)
	}
}

func TestUnmarshal_NestedNull(t *testing.T) {
	type panel struct {
		Main   gauge            `msgpack:"main"`
		All    []gauge          `msgpack:"all,omitempty"`
		ByName map[string]gauge `msgpack:"by_name,omitempty"`
		Backup *gauge           `msgpack:"backup"`
	}

	level := func(n int) map[string]int { return map[string]int{"level": n} }

	tests := []struct {
		name     string
		input    map[string]any
		wantNull bool
	}{
		{"field nil", map[string]any{"main": nil}, true},
		{"array element nil", map[string]any{"main": level(1), "all": []any{level(1), nil}}, true},
		{"map value nil", map[string]any{"main": level(1), "by_name": map[string]any{"a": nil}}, true},
		{"pointer nil", map[string]any{"main": level(1), "backup": nil}, false},
		{"present", map[string]any{"main": level(1), "all": []any{level(2)}, "by_name": map[string]any{"a": level(3)}}, false},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := msgpack.Marshal(tt.input)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}

			var p panel
			err = c.Unmarshal(data, &p)
			if tt.wantNull {
				if !errors.Is(err, vetted.ErrNullInput) {
					t.Errorf("Unmarshal() = %+v, %v; want ErrNullInput", p, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unmarshal() error: %v", err)
			}
		})
	}
}

func TestDecodeFrom(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(map[string]int{"level": 1}); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if err := enc.Encode(map[string]int{"level": 2}); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	type reading struct {
		Level int `msgpack:"level"`
	}

	dec := msgpack.NewDecoder(&buf)
	var first, second reading
	if err := DecodeFrom(dec, &first); err != nil {
		t.Fatalf("DecodeFrom() error: %v", err)
	}
	if err := DecodeFrom(dec, &second); err != nil {
		t.Fatalf("DecodeFrom() error: %v", err)
	}
	if first.Level != 1 || second.Level != 2 {
		t.Errorf("got %d and %d, want 1 and 2", first.Level, second.Level)
	}
}

func TestDecodeFrom_IgnoresDecoderSettings(t *testing.T) {
	data, _ := msgpack.Marshal(map[string]int{"level": 1})

	type tagged struct {
		Level int `json:"level"`
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")

	var v tagged
	if err := DecodeFrom(dec, &v); !errors.Is(err, vetted.ErrMissingField) {
		t.Errorf("DecodeFrom() error = %v, want ErrMissingField for the msgpack field name", err)
	}
}
