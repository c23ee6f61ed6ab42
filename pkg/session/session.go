// Package session implements the turn orchestrator: the state machine
// that alternates between invoking the model and executing requested
// tools over one append-only transcript.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/model"
	"github.com/go-go-golems/marionette/pkg/tools"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Session owns one transcript and drives turns against one model.
// Independent sessions share no state; a single session runs at most
// one turn at a time.
type Session struct {
	ID string

	model        model.Model
	registry     tools.Registry
	executor     tools.Executor
	cfg          Config
	sinks        []events.EventSink
	instructions string

	transcript *transcript.Transcript

	mu     sync.Mutex
	active bool
}

type Option func(*Session) error

// WithInstructions seeds the transcript with an Instructions entry
// carrying the given directive text. Tool definitions from the
// registry are attached automatically.
func WithInstructions(text string) Option {
	return func(s *Session) error {
		s.instructions = text
		return nil
	}
}

// WithTools registers tools on the session's registry.
func WithTools(toolList ...*tools.Tool) Option {
	return func(s *Session) error {
		for _, tool := range toolList {
			if err := s.registry.Register(tool); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithRegistry substitutes a prepopulated tool registry.
func WithRegistry(registry tools.Registry) Option {
	return func(s *Session) error {
		s.registry = registry
		return nil
	}
}

// WithExecutor substitutes the tool batch executor.
func WithExecutor(executor tools.Executor) Option {
	return func(s *Session) error {
		s.executor = executor
		return nil
	}
}

// WithConfig sets the turn configuration.
func WithConfig(cfg Config) Option {
	return func(s *Session) error {
		s.cfg = cfg
		return nil
	}
}

// WithEventSinks attaches sinks that receive every lifecycle event
// published during this session's turns.
func WithEventSinks(sinks ...events.EventSink) Option {
	return func(s *Session) error {
		s.sinks = append(s.sinks, sinks...)
		return nil
	}
}

// New constructs a session around a model. When instructions or tools
// are configured, an Instructions entry is committed as the first
// transcript entry.
func New(m model.Model, options ...Option) (*Session, error) {
	if m == nil {
		return nil, errors.New("session requires a model")
	}
	s := &Session{
		ID:         uuid.NewString(),
		model:      m,
		registry:   tools.NewInMemoryRegistry(),
		executor:   tools.NewParallelExecutor(tools.DefaultConfig()),
		cfg:        DefaultConfig(),
		transcript: transcript.New(),
	}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.instructions != "" || s.registry.Count() > 0 {
		defs := make([]transcript.ToolDefinition, 0, s.registry.Count())
		for _, tool := range s.registry.List() {
			defs = append(defs, tool.Definition())
		}
		s.transcript.Append(transcript.NewInstructions(s.instructions, defs...))
	}

	return s, nil
}

// Transcript exposes the session's transcript for inspection and
// persistence.
func (s *Session) Transcript() *transcript.Transcript {
	return s.transcript
}

// Result is the terminal outcome of one turn.
type Result struct {
	// Text is the response rendered as text.
	Text string
	// Value is the decoded structured content; Null when the turn had
	// no structured target and the response did not parse as JSON.
	Value content.Value
	// Entries are the transcript entries committed during the turn, in
	// order.
	Entries []transcript.Entry
}

// beginTurn reserves the session for one turn. endTurn must be called
// exactly once, via the returned release function, which is idempotent.
func (s *Session) beginTurn() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, ErrBusy
	}
	s.active = true
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
		})
	}, nil
}

func (s *Session) metadata(turnID string) events.EventMetadata {
	return events.EventMetadata{
		ID:        uuid.New(),
		SessionID: s.ID,
		TurnID:    turnID,
	}
}
