package transcript

import (
	"github.com/google/uuid"

	"github.com/go-go-golems/marionette/pkg/content"
)

// Convenience constructors for commonly used entry shapes.

// NewInstructions returns an Instructions entry from text plus tool
// definitions.
func NewInstructions(text string, toolDefs ...ToolDefinition) *Instructions {
	return &Instructions{
		ID:       uuid.NewString(),
		Segments: []Segment{TextSegment(text)},
		ToolDefs: toolDefs,
	}
}

// NewPrompt returns a Prompt entry carrying one user text segment.
func NewPrompt(text string) *Prompt {
	return &Prompt{
		ID:       uuid.NewString(),
		Segments: []Segment{TextSegment(text)},
	}
}

// NewTextResponse returns a Response entry carrying one text segment.
func NewTextResponse(text string) *Response {
	return &Response{
		ID:       uuid.NewString(),
		Segments: []Segment{TextSegment(text)},
	}
}

// NewStructuredResponse returns a Response entry carrying one
// structured segment labelled with its source.
func NewStructuredResponse(source string, v content.Value) *Response {
	return &Response{
		ID:       uuid.NewString(),
		Segments: []Segment{StructuredSegment(source, v)},
	}
}

// NewToolCalls returns a ToolCalls batch entry.
func NewToolCalls(calls ...ToolCall) *ToolCalls {
	return &ToolCalls{
		ID:    uuid.NewString(),
		Calls: calls,
	}
}

// NewToolOutput returns a ToolOutput entry correlated with the
// originating call id.
func NewToolOutput(callID string, toolName string, segments ...Segment) *ToolOutput {
	return &ToolOutput{
		ID:       callID,
		ToolName: toolName,
		Segments: segments,
	}
}

// Text renders a Response's content as text.
func (e *Response) Text() string {
	return JoinText(e.Segments)
}

// Structured returns the first structured segment of the response, if
// any.
func (e *Response) Structured() (Segment, bool) {
	for _, s := range e.Segments {
		if s.Kind == SegmentKindStructured {
			return s, true
		}
	}
	return Segment{}, false
}
