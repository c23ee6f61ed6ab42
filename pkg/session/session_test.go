package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/model"
	"github.com/go-go-golems/marionette/pkg/schema"
	"github.com/go-go-golems/marionette/pkg/tools"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

type fakeModel struct {
	generate func(ctx context.Context, entries []transcript.Entry) (transcript.Entry, error)
	stream   func(ctx context.Context, entries []transcript.Entry) (model.DeltaStream, error)
}

func (m *fakeModel) Generate(ctx context.Context, entries []transcript.Entry) (transcript.Entry, error) {
	return m.generate(ctx, entries)
}

func (m *fakeModel) Stream(ctx context.Context, entries []transcript.Entry) (model.DeltaStream, error) {
	return m.stream(ctx, entries)
}

// scriptedModel replays a fixed sequence of entries, one per Generate
// call.
func scriptedModel(entries ...transcript.Entry) *fakeModel {
	i := 0
	return &fakeModel{
		generate: func(context.Context, []transcript.Entry) (transcript.Entry, error) {
			if i >= len(entries) {
				return nil, errors.New("script exhausted")
			}
			e := entries[i]
			i++
			return e, nil
		},
	}
}

func weatherTool(t *testing.T) *tools.Tool {
	t.Helper()
	type request struct {
		Location string `json:"location"`
	}
	tool, err := tools.NewToolFromFunc("Weather", "look up the weather",
		func(request) (string, error) {
			return "22°C", nil
		})
	require.NoError(t, err)
	return tool
}

func kinds(entries []transcript.Entry) []transcript.EntryKind {
	out := make([]transcript.EntryKind, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Kind())
	}
	return out
}

func TestRespondSimpleTurn(t *testing.T) {
	s, err := New(scriptedModel(transcript.NewTextResponse("hi there")))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "hi there", result.Text)
	assert.Equal(t,
		[]transcript.EntryKind{transcript.EntryKindPrompt, transcript.EntryKindResponse},
		kinds(result.Entries))
	assert.Equal(t, 2, s.Transcript().Len())
}

func TestWeatherScenario(t *testing.T) {
	args, err := content.Parse(`{"location":"here"}`)
	require.NoError(t, err)

	m := scriptedModel(
		transcript.NewToolCalls(transcript.ToolCall{
			ID:        "call-1",
			ToolName:  "Weather",
			Arguments: args,
		}),
		transcript.NewTextResponse("It's 22°C"),
	)

	s, err := New(m, WithTools(weatherTool(t)))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "weather?")
	require.NoError(t, err)

	assert.Equal(t, "It's 22°C", result.Text)
	assert.Equal(t, []transcript.EntryKind{
		transcript.EntryKindPrompt,
		transcript.EntryKindToolCalls,
		transcript.EntryKindToolOutput,
		transcript.EntryKindResponse,
	}, kinds(result.Entries))

	output := result.Entries[2].(*transcript.ToolOutput)
	assert.Equal(t, "call-1", output.ID)
	assert.Equal(t, "Weather", output.ToolName)
	assert.Equal(t, "22°C", transcript.JoinText(output.Segments))
}

func TestToolOutputsAppendInIssueOrder(t *testing.T) {
	type request struct {
		Label string `json:"label"`
		Sleep int    `json:"sleep"`
	}
	delay, err := tools.NewToolFromFunc("delay", "sleeps then echoes",
		func(req request) (string, error) {
			time.Sleep(time.Duration(req.Sleep) * time.Millisecond)
			return req.Label, nil
		})
	require.NoError(t, err)

	call := func(id, label, sleep string) transcript.ToolCall {
		return transcript.ToolCall{
			ID:       id,
			ToolName: "delay",
			Arguments: content.Object(
				content.Pair{Key: "label", Value: content.String(label)},
				content.Pair{Key: "sleep", Value: content.String(sleep)},
			),
		}
	}

	// earlier calls finish last
	m := scriptedModel(
		transcript.NewToolCalls(
			call("call-1", "first", "60"),
			call("call-2", "second", "30"),
			call("call-3", "third", "0"),
		),
		transcript.NewTextResponse("done"),
	)

	s, err := New(m, WithTools(delay))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, result.Entries, 6)

	labels := []string{}
	for _, e := range result.Entries[2:5] {
		output := e.(*transcript.ToolOutput)
		labels = append(labels, transcript.JoinText(output.Segments))
	}
	assert.Equal(t, []string{"first", "second", "third"}, labels)
}

func TestToolNotFoundAbortsTurn(t *testing.T) {
	m := scriptedModel(
		transcript.NewToolCalls(transcript.ToolCall{
			ID:        "call-1",
			ToolName:  "unregistered",
			Arguments: content.Null(),
		}),
	)

	s, err := New(m, WithTools(weatherTool(t)))
	require.NoError(t, err)
	before := s.Transcript().Len()

	_, err = s.Respond(context.Background(), "go")
	require.Error(t, err)

	var notFound *tools.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unregistered", notFound.Name)

	// only the prompt was committed; no batch, outputs or response
	assert.Equal(t, before+1, s.Transcript().Len())
	assert.Equal(t, transcript.EntryKindPrompt, s.Transcript().Last().Kind())
}

func TestUnexpectedEntryIsFatal(t *testing.T) {
	s, err := New(scriptedModel(transcript.NewPrompt("i am confused")))
	require.NoError(t, err)

	_, err = s.Respond(context.Background(), "hello")
	require.Error(t, err)

	var unexpected *UnexpectedEntryError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, transcript.EntryKindPrompt, unexpected.Kind)
}

func TestTurnLimitExceeded(t *testing.T) {
	args := content.Object()
	m := &fakeModel{
		generate: func(context.Context, []transcript.Entry) (transcript.Entry, error) {
			return transcript.NewToolCalls(transcript.ToolCall{
				ID:        "call",
				ToolName:  "Weather",
				Arguments: args,
			}), nil
		},
	}

	s, err := New(m,
		WithTools(weatherTool(t)),
		WithConfig(DefaultConfig().WithMaxRounds(2)))
	require.NoError(t, err)

	_, err = s.Respond(context.Background(), "loop forever")
	require.Error(t, err)

	var limit *TurnLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 2, limit.MaxRounds)
}

func TestSingleActiveTurn(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	m := &fakeModel{
		generate: func(context.Context, []transcript.Entry) (transcript.Entry, error) {
			close(started)
			<-gate
			return transcript.NewTextResponse("ok"), nil
		},
	}

	s, err := New(m)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Respond(context.Background(), "first")
		done <- err
	}()

	<-started
	_, err = s.Respond(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(gate)
	require.NoError(t, <-done)

	// the session is free again once the turn completed
	s2 := scriptedModel(transcript.NewTextResponse("again"))
	s.model = s2
	_, err = s.Respond(context.Background(), "third")
	assert.NoError(t, err)
}

func TestSchemaFormatDecodesResult(t *testing.T) {
	desc := &schema.Schema{
		Name: "report",
		Type: schema.TypeObject,
		Properties: []schema.Property{
			{Name: "message", Required: true, Schema: &schema.Schema{Type: schema.TypeString}},
		},
	}

	s, err := New(scriptedModel(transcript.NewTextResponse(`{"message":"hello"}`)))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "say hello",
		WithResponseFormat(transcript.SchemaFormat(desc)))
	require.NoError(t, err)

	msg, ok, err := result.Value.Property("message")
	require.NoError(t, err)
	require.True(t, ok)
	text, err := msg.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestSchemaFormatDecodeFailureCommitsNoResponse(t *testing.T) {
	desc := &schema.Schema{
		Name: "report",
		Type: schema.TypeObject,
		Properties: []schema.Property{
			{Name: "message", Required: true, Schema: &schema.Schema{Type: schema.TypeString}},
		},
	}

	s, err := New(scriptedModel(transcript.NewTextResponse("not json at all")))
	require.NoError(t, err)

	_, err = s.Respond(context.Background(), "say hello",
		WithResponseFormat(transcript.SchemaFormat(desc)))
	require.Error(t, err)

	var decodeErr *content.DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	// the prompt is the only committed entry for the failed turn
	assert.Equal(t, 1, s.Transcript().Len())
	assert.Equal(t, transcript.EntryKindPrompt, s.Transcript().Last().Kind())
}

func TestScalarFormat(t *testing.T) {
	s, err := New(scriptedModel(
		transcript.NewTextResponse("yes"),
		transcript.NewTextResponse("maybe"),
	))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "is water wet?",
		WithResponseFormat(transcript.TypeFormat("bool")))
	require.NoError(t, err)

	b, err := result.Value.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = s.Respond(context.Background(), "is water wet?",
		WithResponseFormat(transcript.TypeFormat("bool")))
	assert.Error(t, err)
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) PublishEvent(e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestToolEventsCarryTurnMetadata(t *testing.T) {
	args, err := content.Parse(`{"location":"here"}`)
	require.NoError(t, err)

	m := scriptedModel(
		transcript.NewToolCalls(transcript.ToolCall{
			ID:        "call-1",
			ToolName:  "Weather",
			Arguments: args,
		}),
		transcript.NewTextResponse("It's 22°C"),
	)

	sink := &recordingSink{}
	s, err := New(m, WithTools(weatherTool(t)), WithEventSinks(sink))
	require.NoError(t, err)

	result, err := s.Respond(context.Background(), "weather?")
	require.NoError(t, err)

	promptID := result.Entries[0].EntryID()
	seen := map[events.EventType]bool{}
	for _, ev := range sink.Events() {
		seen[ev.Type()] = true
		assert.Equal(t, s.ID, ev.Metadata().SessionID, "event %s", ev.Type())
		assert.Equal(t, promptID, ev.Metadata().TurnID, "event %s", ev.Type())
	}
	assert.True(t, seen[events.EventTypeToolCallExecute])
	assert.True(t, seen[events.EventTypeToolCallExecutionResult])
	assert.True(t, seen[events.EventTypeStart])
	assert.True(t, seen[events.EventTypeFinal])
}

func TestInstructionsEntryCarriesToolDefinitions(t *testing.T) {
	s, err := New(
		scriptedModel(transcript.NewTextResponse("ok")),
		WithInstructions("You are a weather assistant."),
		WithTools(weatherTool(t)),
	)
	require.NoError(t, err)

	entries := s.Transcript().Entries()
	require.Len(t, entries, 1)

	instructions, ok := entries[0].(*transcript.Instructions)
	require.True(t, ok)
	assert.Equal(t, "You are a weather assistant.", transcript.JoinText(instructions.Segments))
	require.Len(t, instructions.ToolDefs, 1)
	assert.Equal(t, "Weather", instructions.ToolDefs[0].Name)
}
