package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/model"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Snapshot is the ephemeral best-effort view of a streaming response
// after one delta. Value holds the parsed content when the buffer so
// far is valid JSON, and String(buffer) otherwise.
type Snapshot struct {
	Text  string
	Value content.Value
}

// ResponseStream aggregates a delta stream into exactly one Response
// entry. Recv yields a Snapshot per delta and io.EOF at stream end;
// Finalize then commits the aggregate. Dropping the stream without
// finalizing commits nothing, as does a source error.
type ResponseStream struct {
	session *Session
	source  model.DeltaStream
	format  *transcript.ResponseFormat
	meta    events.EventMetadata
	ctx     context.Context
	start   int
	release func()

	mu        sync.Mutex
	buffer    strings.Builder
	done      bool
	failed    error
	closed    bool
	finalized bool
}

// RespondStreaming starts a streaming turn: the prompt entry is
// appended and the model's delta stream is opened. Tool rounds are not
// part of the streaming path; a turn that needs tools uses Respond.
func (s *Session) RespondStreaming(ctx context.Context, prompt string, options ...RespondOption) (*ResponseStream, error) {
	settings := &respondSettings{}
	for _, opt := range options {
		opt(settings)
	}

	release, err := s.beginTurn()
	if err != nil {
		return nil, err
	}

	if len(s.sinks) > 0 {
		ctx = events.WithEventSinks(ctx, s.sinks...)
	}

	promptEntry := transcript.NewPrompt(prompt)
	promptEntry.Options = settings.options
	promptEntry.Format = settings.format

	meta := s.metadata(promptEntry.ID)

	start := s.transcript.Len()
	s.transcript.Append(promptEntry)

	source, err := s.model.Stream(ctx, s.transcript.Entries())
	if err != nil {
		events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
		release()
		return nil, err
	}

	events.PublishEventToContext(ctx, events.NewStartEvent(meta))

	return &ResponseStream{
		session: s,
		source:  source,
		format:  settings.format,
		meta:    meta,
		ctx:     ctx,
		start:   start,
		release: release,
	}, nil
}

// Recv returns the next Snapshot. io.EOF signals a completed stream
// ready to finalize; any other error means the source failed and the
// turn is over with nothing persisted.
func (r *ResponseStream) Recv() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failed != nil {
		return Snapshot{}, r.failed
	}
	if r.done {
		return Snapshot{}, io.EOF
	}

	delta, err := r.source.Recv()
	if err == io.EOF {
		r.done = true
		return Snapshot{}, io.EOF
	}
	if err != nil {
		r.failed = err
		events.PublishEventToContext(r.ctx, events.NewErrorEvent(r.meta, err))
		r.release()
		return Snapshot{}, err
	}

	r.buffer.WriteString(delta.Text)
	text := r.buffer.String()

	events.PublishEventToContext(r.ctx,
		events.NewPartialCompletionEvent(r.meta, delta.Text, text))

	return r.snapshot(text), nil
}

func (r *ResponseStream) snapshot(text string) Snapshot {
	snap := Snapshot{Text: text}
	if v, err := content.Parse(text); err == nil {
		snap.Value = v
	} else {
		snap.Value = content.String(text)
	}
	return snap
}

// Finalize drains any remaining deltas, decodes the aggregate against
// the turn's target shape, and appends exactly one Response entry.
// Calling Finalize more than once is an error; nothing is appended
// when finalization fails.
func (r *ResponseStream) Finalize() (*Result, error) {
	for {
		r.mu.Lock()
		done, failed := r.done, r.failed
		r.mu.Unlock()
		if failed != nil {
			return nil, failed
		}
		if done {
			break
		}
		if _, err := r.Recv(); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.New("stream was closed without finalizing")
	}
	if r.finalized {
		return nil, errors.New("stream already finalized")
	}
	r.finalized = true
	defer r.release()
	defer func() { _ = r.source.Close() }()

	text := r.buffer.String()
	resp, err := r.buildResponse(text)
	if err != nil {
		events.PublishEventToContext(r.ctx, events.NewErrorEvent(r.meta, err))
		return nil, err
	}
	value, err := decodeResponse(resp, r.format)
	if err != nil {
		events.PublishEventToContext(r.ctx, events.NewErrorEvent(r.meta, err))
		return nil, err
	}

	r.session.transcript.Append(resp)

	log.Debug().
		Str("session_id", r.session.ID).
		Int("length", len(text)).
		Msg("stream finalized")

	result := &Result{
		Text:    resp.Text(),
		Value:   value,
		Entries: r.session.transcript.Entries()[r.start:],
	}
	events.PublishEventToContext(r.ctx, events.NewFinalEvent(r.meta, result.Text))
	return result, nil
}

// buildResponse converts the aggregated buffer into a Response entry.
// A schema target requires the buffer to parse; without a target the
// buffer is kept as text.
func (r *ResponseStream) buildResponse(text string) (*transcript.Response, error) {
	if !r.format.IsSchemaBased() {
		return transcript.NewTextResponse(text), nil
	}

	v, err := content.Parse(text)
	if err != nil {
		return nil, &content.DecodeError{
			Target: "response schema",
			Raw:    text,
			Cause:  err,
		}
	}
	if err := r.format.Schema.Validate(text); err != nil {
		return nil, err
	}
	if err := r.format.Schema.Decode(v); err != nil {
		return nil, err
	}
	return transcript.NewStructuredResponse("model", v), nil
}

// Close abandons the stream. If the turn was not finalized, nothing is
// committed to the transcript, and no later Finalize can commit the
// partial buffer.
func (r *ResponseStream) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	if !r.finalized {
		r.closed = true
	}
	r.release()
	return r.source.Close()
}
