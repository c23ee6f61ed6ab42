// Package model defines the inference backend contract consumed by the
// session orchestrator. Inference, sampling and safety filtering live
// entirely behind this boundary.
package model

import (
	"context"
	"io"

	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Delta is one incremental chunk of a streaming response.
type Delta struct {
	Text string
}

// DeltaStream is a single-consumer sequence of response deltas. Recv
// returns io.EOF when the stream is complete; any other error means the
// stream failed and no further deltas will arrive. Dropping a stream
// without draining it requires calling Close.
type DeltaStream interface {
	Recv() (Delta, error)
	Close() error
}

// Model is the inference backend. Generate returns exactly one new
// transcript entry (a Response or a ToolCalls batch) produced from the
// transcript so far; Stream yields a response incrementally.
type Model interface {
	Generate(ctx context.Context, entries []transcript.Entry) (transcript.Entry, error)
	Stream(ctx context.Context, entries []transcript.Entry) (DeltaStream, error)
}

// SliceStream replays a fixed list of deltas, optionally terminating
// with an error instead of a clean end of stream. It backs fake models
// in tests and offline replay.
type SliceStream struct {
	deltas []string
	err    error
	pos    int
}

func NewSliceStream(deltas []string) *SliceStream {
	return &SliceStream{deltas: deltas}
}

// NewFailingStream replays deltas and then fails with err instead of
// io.EOF.
func NewFailingStream(deltas []string, err error) *SliceStream {
	return &SliceStream{deltas: deltas, err: err}
}

func (s *SliceStream) Recv() (Delta, error) {
	if s.pos >= len(s.deltas) {
		if s.err != nil {
			return Delta{}, s.err
		}
		return Delta{}, io.EOF
	}
	d := Delta{Text: s.deltas[s.pos]}
	s.pos++
	return d, nil
}

func (s *SliceStream) Close() error { return nil }

var _ DeltaStream = &SliceStream{}
