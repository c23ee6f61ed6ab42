package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ctxKey is an unexported type for keys defined in this package.
type ctxKey int

const (
	ctxKeyEventSinks ctxKey = iota
	ctxKeyEventMetadata
)

// WithEventSinks attaches one or more EventSink instances to the
// context so downstream code can publish events without holding a
// reference to session configuration.
func WithEventSinks(ctx context.Context, sinks ...EventSink) context.Context {
	if len(sinks) == 0 {
		return ctx
	}
	existing := GetEventSinks(ctx)
	combined := append([]EventSink{}, existing...)
	combined = append(combined, sinks...)
	return context.WithValue(ctx, ctxKeyEventSinks, combined)
}

// GetEventSinks returns the sinks attached to the context.
func GetEventSinks(ctx context.Context) []EventSink {
	if v := ctx.Value(ctxKeyEventSinks); v != nil {
		if sinks, ok := v.([]EventSink); ok {
			return sinks
		}
	}
	return nil
}

// WithMetadata attaches turn correlation metadata to the context so
// code publishing deeper in the turn (tool execution, for instance)
// can stamp its events with the same session and turn ids.
func WithMetadata(ctx context.Context, meta EventMetadata) context.Context {
	return context.WithValue(ctx, ctxKeyEventMetadata, meta)
}

// MetadataFromContext returns the metadata attached to the context, or
// a zero EventMetadata when none was attached.
func MetadataFromContext(ctx context.Context) EventMetadata {
	if v := ctx.Value(ctxKeyEventMetadata); v != nil {
		if meta, ok := v.(EventMetadata); ok {
			return meta
		}
	}
	return EventMetadata{}
}

// PublishEventToContext publishes an event to all sinks stored in the
// context. Individual sink errors are ignored so a failing sink cannot
// disrupt the turn loop.
func PublishEventToContext(ctx context.Context, event Event) {
	sinks := GetEventSinks(ctx)
	if len(sinks) == 0 {
		return
	}
	log.Trace().Str("event_type", string(event.Type())).Int("sink_count", len(sinks)).Msg("publishing event to context sinks")
	for _, sink := range sinks {
		_ = sink.PublishEvent(event)
	}
}
