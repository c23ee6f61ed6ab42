package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

type respondSettings struct {
	options *transcript.GenerationOptions
	format  *transcript.ResponseFormat
}

type RespondOption func(*respondSettings)

// WithGenerationOptions records sampling parameters on the prompt.
func WithGenerationOptions(options *transcript.GenerationOptions) RespondOption {
	return func(rs *respondSettings) {
		rs.options = options
	}
}

// WithResponseFormat sets the target decode shape of the turn.
func WithResponseFormat(format *transcript.ResponseFormat) RespondOption {
	return func(rs *respondSettings) {
		rs.format = format
	}
}

// Respond runs one full turn: append a prompt, invoke the model, and
// either return its response or execute requested tool batches and
// loop. Every error aborts the turn atomically; entries for a failed
// round are never partially committed.
func (s *Session) Respond(ctx context.Context, prompt string, options ...RespondOption) (*Result, error) {
	settings := &respondSettings{}
	for _, opt := range options {
		opt(settings)
	}

	release, err := s.beginTurn()
	if err != nil {
		return nil, err
	}
	defer release()

	if len(s.sinks) > 0 {
		ctx = events.WithEventSinks(ctx, s.sinks...)
	}

	promptEntry := transcript.NewPrompt(prompt)
	promptEntry.Options = settings.options
	promptEntry.Format = settings.format

	meta := s.metadata(promptEntry.ID)
	ctx = events.WithMetadata(ctx, meta)
	events.PublishEventToContext(ctx, events.NewStartEvent(meta))

	start := s.transcript.Len()
	s.transcript.Append(promptEntry)

	for round := 0; round < s.cfg.MaxRounds; round++ {
		log.Debug().
			Str("session_id", s.ID).
			Str("turn_id", promptEntry.ID).
			Int("round", round+1).
			Msg("model round")

		entry, err := s.model.Generate(ctx, s.transcript.Entries())
		if err != nil {
			events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
			return nil, err
		}

		switch e := entry.(type) {
		case *transcript.Response:
			value, err := decodeResponse(e, settings.format)
			if err != nil {
				events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
				return nil, err
			}
			s.transcript.Append(e)
			result := &Result{
				Text:    e.Text(),
				Value:   value,
				Entries: s.transcript.Entries()[start:],
			}
			events.PublishEventToContext(ctx, events.NewFinalEvent(meta, result.Text))
			return result, nil

		case *transcript.ToolCalls:
			results, err := s.executor.ExecuteBatch(ctx, s.registry, e.Calls)
			if err != nil {
				events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
				return nil, err
			}
			s.transcript.Append(e)
			for _, res := range results {
				s.transcript.Append(transcript.NewToolOutput(
					res.CallID,
					res.ToolName,
					toolOutputSegment(res.ToolName, res.Output),
				))
			}

		default:
			err := &UnexpectedEntryError{Kind: entry.Kind()}
			events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
			return nil, err
		}
	}

	err = &TurnLimitError{MaxRounds: s.cfg.MaxRounds}
	events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
	return nil, err
}

// toolOutputSegment renders a tool's structured result as a transcript
// segment: bare strings stay textual, everything else is recorded as a
// structured segment labelled with the tool name.
func toolOutputSegment(toolName string, output content.Value) transcript.Segment {
	if text, err := output.Text(); err == nil {
		return transcript.TextSegment(text)
	}
	return transcript.StructuredSegment(toolName, output)
}

// decodeResponse resolves a response's content against the turn's
// target shape. Without a format the raw text is kept; a schema format
// requires the content to parse and decode; a scalar format requires
// the text to parse as that scalar.
func decodeResponse(resp *transcript.Response, format *transcript.ResponseFormat) (content.Value, error) {
	if seg, ok := resp.Structured(); ok {
		if format.IsSchemaBased() {
			if err := format.Schema.Decode(seg.Value); err != nil {
				return content.Value{}, err
			}
		}
		return seg.Value, nil
	}

	text := resp.Text()
	if format == nil {
		return content.String(text), nil
	}

	if format.IsSchemaBased() {
		v, err := content.Parse(text)
		if err != nil {
			return content.Value{}, &content.DecodeError{
				Target: "response schema",
				Raw:    text,
				Cause:  err,
			}
		}
		// validate the raw text first, while scalars are still native
		// JSON, then check the canonicalized value's shape
		if err := format.Schema.Validate(text); err != nil {
			return content.Value{}, err
		}
		if err := format.Schema.Decode(v); err != nil {
			return content.Value{}, err
		}
		return v, nil
	}

	return decodeScalar(text, format.Type)
}

func decodeScalar(text string, typeName string) (content.Value, error) {
	v := content.String(strings.TrimSpace(text))
	var err error
	switch typeName {
	case "bool":
		_, err = v.Bool()
	case "int":
		_, err = v.Int()
	case "float", "number":
		_, err = v.Float()
	}
	if err != nil {
		return content.Value{}, err
	}
	return v, nil
}
