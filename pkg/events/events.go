package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// Turn lifecycle events
	EventTypeStart             EventType = "start"
	EventTypePartialCompletion EventType = "partial"
	EventTypeFinal             EventType = "final"
	EventTypeError             EventType = "error"

	// Tool execution phase
	EventTypeToolCallExecute         EventType = "tool-call-execute"
	EventTypeToolCallExecutionResult EventType = "tool-call-execution-result"

	// Informational events emitted by the session or tools
	EventTypeInfo EventType = "info"
)

// EventMetadata correlates an event with its session and turn.
type EventMetadata struct {
	ID        uuid.UUID      `json:"message_id"`
	SessionID string         `json:"session_id,omitempty"`
	TurnID    string         `json:"turn_id,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.SessionID != "" {
		e.Str("session_id", em.SessionID)
	}
	if em.TurnID != "" {
		e.Str("turn_id", em.TurnID)
	}
}

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// payload is set when the event was deserialized from JSON
	payload []byte
}

func (e *EventImpl) Type() EventType         { return e.Type_ }
func (e *EventImpl) Metadata() EventMetadata { return e.Metadata_ }
func (e *EventImpl) Payload() []byte         { return e.payload }

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

var _ Event = &EventImpl{}

type EventStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventStart {
	return &EventStart{
		EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata},
	}
}

// EventPartialCompletion carries one streaming delta plus the
// completion text accumulated so far.
type EventPartialCompletion struct {
	EventImpl
	Delta      string `json:"delta"`
	Completion string `json:"completion"`
}

func NewPartialCompletionEvent(metadata EventMetadata, delta string, completion string) *EventPartialCompletion {
	return &EventPartialCompletion{
		EventImpl:  EventImpl{Type_: EventTypePartialCompletion, Metadata_: metadata},
		Delta:      delta,
		Completion: completion,
	}
}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		Text:      text,
	}
}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &EventError{
		EventImpl:   EventImpl{Type_: EventTypeError, Metadata_: metadata},
		ErrorString: msg,
	}
}

// ToolCall is the wire form of a tool invocation inside events.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"`
}

// ToolResult is the wire form of a tool result inside events.
type ToolResult struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

type EventToolCallExecute struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
}

func NewToolCallExecuteEvent(metadata EventMetadata, toolCall ToolCall) *EventToolCallExecute {
	return &EventToolCallExecute{
		EventImpl: EventImpl{Type_: EventTypeToolCallExecute, Metadata_: metadata},
		ToolCall:  toolCall,
	}
}

type EventToolCallExecutionResult struct {
	EventImpl
	ToolResult ToolResult `json:"tool_result"`
}

func NewToolCallExecutionResultEvent(metadata EventMetadata, toolResult ToolResult) *EventToolCallExecutionResult {
	return &EventToolCallExecutionResult{
		EventImpl:  EventImpl{Type_: EventTypeToolCallExecutionResult, Metadata_: metadata},
		ToolResult: toolResult,
	}
}

type EventInfo struct {
	EventImpl
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func NewInfoEvent(metadata EventMetadata, message string, data map[string]any) *EventInfo {
	return &EventInfo{
		EventImpl: EventImpl{Type_: EventTypeInfo, Metadata_: metadata},
		Message:   message,
		Data:      data,
	}
}

// NewEventFromJson decodes a serialized event back into its concrete
// type based on the kind discriminator.
func NewEventFromJson(b []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, errors.Wrap(err, "decode event envelope")
	}

	var (
		ev  Event
		err error
	)
	switch probe.Type {
	case EventTypeStart:
		ev, err = decodeAs[*EventStart](b)
	case EventTypePartialCompletion:
		ev, err = decodeAs[*EventPartialCompletion](b)
	case EventTypeFinal:
		ev, err = decodeAs[*EventFinal](b)
	case EventTypeError:
		ev, err = decodeAs[*EventError](b)
	case EventTypeToolCallExecute:
		ev, err = decodeAs[*EventToolCallExecute](b)
	case EventTypeToolCallExecutionResult:
		ev, err = decodeAs[*EventToolCallExecutionResult](b)
	case EventTypeInfo:
		ev, err = decodeAs[*EventInfo](b)
	default:
		return nil, errors.Errorf("unknown event type %q", probe.Type)
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func decodeAs[T Event](b []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, errors.Wrapf(err, "decode %T", ev)
	}
	if impl, ok := any(ev).(interface{ setPayload([]byte) }); ok {
		impl.setPayload(b)
	}
	return ev, nil
}

func (e *EventImpl) setPayload(b []byte) {
	e.payload = b
}
