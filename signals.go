package vetted

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for decoder events.
var (
	SignalDecoderCreated = capitan.NewSignal("vetted.decoder.created", "Decoder instantiated")
	SignalDecodeStart    = capitan.NewSignal("vetted.decode.start", "Decode operation beginning")
	SignalDecodeComplete = capitan.NewSignal("vetted.decode.complete", "Decode operation finished")
	SignalDecodeRejected = capitan.NewSignal("vetted.decode.rejected", "Decoded value rejected by Validate")
	SignalEncodeStart    = capitan.NewSignal("vetted.encode.start", "Encode operation beginning")
	SignalEncodeComplete = capitan.NewSignal("vetted.encode.complete", "Encode operation finished")
)

// Keys for typed event data.
var (
	KeyContentType    = capitan.NewStringKey("content_type")
	KeyTypeName       = capitan.NewStringKey("type_name")
	KeySize           = capitan.NewIntKey("size")
	KeyDuration       = capitan.NewDurationKey("duration")
	KeyError          = capitan.NewErrorKey("error")
	KeyOutcome        = capitan.NewStringKey("outcome")
	KeySelfValidating = capitan.NewBoolKey("self_validating")
)

// Decode outcomes reported in signals and metrics.
const (
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomeStructural = "structural"
)

// outcomeOf classifies a decode result.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case IsValidation(err):
		return OutcomeRejected
	default:
		return OutcomeStructural
	}
}

// emitDecoderCreated emits an event when a decoder is created.
func emitDecoderCreated(ctx context.Context, contentType, typeName string, selfValidating bool) {
	capitan.Emit(ctx, SignalDecoderCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySelfValidating.Field(selfValidating),
	)
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, contentType, typeName string, size int) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, contentType, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyOutcome.Field(outcomeOf(err)),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitDecodeRejected emits an event when Validate rejects a decoded value.
func emitDecodeRejected(ctx context.Context, contentType, typeName string, reason error) {
	capitan.Emit(ctx, SignalDecodeRejected,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyError.Field(reason),
	)
}

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}
