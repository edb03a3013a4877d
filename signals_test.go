package vetted

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

func TestEmitDecoderCreated(_ *testing.T) {
	// Should not panic
	emitDecoderCreated(context.Background(), "application/json", "Reading", true)
	emitDecoderCreated(context.Background(), "application/json", "Account", false)
}

func TestEmitDecoderCreated_SelfValidatingField(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(SignalDecoderCreated, capture.Handler())
	defer listener.Close()

	emitDecoderCreated(context.Background(), "application/yaml", "signals.Marked", true)
	emitDecoderCreated(context.Background(), "application/yaml", "signals.Plain", false)

	want := map[string]bool{"signals.Marked": true, "signals.Plain": false}
	got := make(map[string]bool)
	deadline := time.Now().Add(time.Second)
	for len(got) < len(want) && time.Now().Before(deadline) {
		for _, e := range capture.Events() {
			name := KeyTypeName.ExtractFromFields(e.Fields)
			if _, ok := want[name]; ok {
				got[name] = KeySelfValidating.ExtractFromFields(e.Fields)
			}
		}
		time.Sleep(time.Millisecond)
	}

	for name, expected := range want {
		v, ok := got[name]
		if !ok {
			t.Errorf("%s: no decoder created event", name)
			continue
		}
		if v != expected {
			t.Errorf("%s: self_validating = %v, want %v", name, v, expected)
		}
	}
}

func TestEmitDecodeStart(_ *testing.T) {
	emitDecodeStart(context.Background(), "application/json", "Reading", 12)
}

func TestEmitDecodeComplete_Success(_ *testing.T) {
	emitDecodeComplete(context.Background(), "application/json", "Reading", 100*time.Millisecond, nil)
}

func TestEmitDecodeComplete_Error(_ *testing.T) {
	emitDecodeComplete(context.Background(), "application/json", "Reading", 100*time.Millisecond, errors.New("test error"))
}

func TestEmitDecodeRejected(_ *testing.T) {
	emitDecodeRejected(context.Background(), "application/json", "Reading", errNegative)
}

func TestEmitEncodeStart(_ *testing.T) {
	emitEncodeStart(context.Background(), "application/json", "Reading")
}

func TestEmitEncodeComplete_Success(_ *testing.T) {
	emitEncodeComplete(context.Background(), "application/json", "Reading", 12, 100*time.Millisecond, nil)
}

func TestEmitEncodeComplete_Error(_ *testing.T) {
	emitEncodeComplete(context.Background(), "application/json", "Reading", 0, 100*time.Millisecond, errors.New("test error"))
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"accepted", nil, OutcomeAccepted},
		{"rejected", newValidationError("Reading", errNegative), OutcomeRejected},
		{"structural", newStructuralError("Reading", "application/json", errors.New("x")), OutcomeStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeOf(tt.err); got != tt.want {
				t.Errorf("outcomeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDecode(_ *testing.T) {
	observeDecode("Reading", "application/json", time.Millisecond, nil)
	observeDecode("Reading", "application/json", time.Millisecond, newValidationError("Reading", errNegative))
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalDecoderCreated", SignalDecoderCreated},
		{"SignalDecodeStart", SignalDecodeStart},
		{"SignalDecodeComplete", SignalDecodeComplete},
		{"SignalDecodeRejected", SignalDecodeRejected},
		{"SignalEncodeStart", SignalEncodeStart},
		{"SignalEncodeComplete", SignalEncodeComplete},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyContentType", KeyContentType},
		{"KeyTypeName", KeyTypeName},
		{"KeySize", KeySize},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
		{"KeyOutcome", KeyOutcome},
		{"KeySelfValidating", KeySelfValidating},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
