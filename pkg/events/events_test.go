package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectingSink) PublishEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *collectingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestPublishEventToContext(t *testing.T) {
	sink := &collectingSink{}
	ctx := WithEventSinks(context.Background(), sink)

	meta := EventMetadata{ID: uuid.New(), SessionID: "s-1"}
	PublishEventToContext(ctx, NewStartEvent(meta))
	PublishEventToContext(ctx, NewFinalEvent(meta, "done"))

	evs := sink.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, EventTypeStart, evs[0].Type())
	assert.Equal(t, EventTypeFinal, evs[1].Type())
	assert.Equal(t, "s-1", evs[1].Metadata().SessionID)
}

func TestPublishEventToContext_NoSinksIsNoop(t *testing.T) {
	PublishEventToContext(context.Background(), NewStartEvent(EventMetadata{}))
}

func TestNewEventFromJson_RoundTrip(t *testing.T) {
	meta := EventMetadata{ID: uuid.New(), SessionID: "s-1", TurnID: "t-1"}
	original := NewPartialCompletionEvent(meta, "lo", "Hello")

	b, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := NewEventFromJson(b)
	require.NoError(t, err)

	pc, ok := decoded.(*EventPartialCompletion)
	require.True(t, ok)
	assert.Equal(t, "lo", pc.Delta)
	assert.Equal(t, "Hello", pc.Completion)
	assert.Equal(t, meta.SessionID, pc.Metadata().SessionID)
	assert.Equal(t, b, pc.Payload())
}

func TestNewEventFromJson_UnknownType(t *testing.T) {
	_, err := NewEventFromJson([]byte(`{"type":"telepathy"}`))
	require.Error(t, err)
}

func TestNewEventFromJson_ToolEvents(t *testing.T) {
	meta := EventMetadata{ID: uuid.New()}
	b, err := json.Marshal(NewToolCallExecuteEvent(meta, ToolCall{ID: "call-1", Name: "Weather", Input: `{"city":"Paris"}`}))
	require.NoError(t, err)

	decoded, err := NewEventFromJson(b)
	require.NoError(t, err)
	ev, ok := decoded.(*EventToolCallExecute)
	require.True(t, ok)
	assert.Equal(t, "Weather", ev.ToolCall.Name)
}
