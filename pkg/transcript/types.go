package transcript

import (
	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/schema"
)

// EntryKind discriminates the transcript entry variants.
type EntryKind string

const (
	EntryKindInstructions EntryKind = "instructions"
	EntryKindPrompt       EntryKind = "prompt"
	EntryKindResponse     EntryKind = "response"
	EntryKindToolCalls    EntryKind = "tool_calls"
	EntryKindToolOutput   EntryKind = "tool_output"
)

// Entry is one committed element of a transcript. Entries are never
// mutated or removed once appended; their order is the causal order of
// the conversation.
type Entry interface {
	EntryID() string
	Kind() EntryKind
}

// ToolDefinition describes a callable tool as recorded in an
// Instructions entry. Parameters holds the tool's argument schema as a
// structured content value.
type ToolDefinition struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  content.Value `json:"parameters" yaml:"parameters"`
}

// GenerationOptions carries sampling parameters recorded on a Prompt.
type GenerationOptions struct {
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// ResponseFormat names the target decode shape of a turn: either a
// schema descriptor ("schema-based") or a scalar type name.
type ResponseFormat struct {
	Name   string         `json:"name" yaml:"name"`
	Type   string         `json:"type,omitempty" yaml:"type,omitempty"`
	Schema *schema.Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// SchemaFormatName is the wire name of a schema-based response format.
const SchemaFormatName = "schema-based"

// SchemaFormat builds a schema-based response format.
func SchemaFormat(s *schema.Schema) *ResponseFormat {
	return &ResponseFormat{Name: SchemaFormatName, Schema: s}
}

// TypeFormat builds a response format naming a scalar type
// ("string", "bool", "int", "float").
func TypeFormat(typeName string) *ResponseFormat {
	return &ResponseFormat{Name: typeName, Type: typeName}
}

// IsSchemaBased reports whether the format carries a schema descriptor.
func (f *ResponseFormat) IsSchemaBased() bool {
	return f != nil && f.Name == SchemaFormatName
}

// Instructions is the optional first entry of a transcript: session
// directives plus the definitions of the tools available to the model.
type Instructions struct {
	ID       string           `json:"id" yaml:"id"`
	Segments []Segment        `json:"segments" yaml:"segments"`
	ToolDefs []ToolDefinition `json:"tool_definitions,omitempty" yaml:"tool_definitions,omitempty"`
}

func (e *Instructions) EntryID() string { return e.ID }
func (e *Instructions) Kind() EntryKind { return EntryKindInstructions }

// Prompt is one user turn.
type Prompt struct {
	ID       string             `json:"id" yaml:"id"`
	Segments []Segment          `json:"segments" yaml:"segments"`
	Options  *GenerationOptions `json:"options,omitempty" yaml:"options,omitempty"`
	Format   *ResponseFormat    `json:"response_format,omitempty" yaml:"response_format,omitempty"`
}

func (e *Prompt) EntryID() string { return e.ID }
func (e *Prompt) Kind() EntryKind { return EntryKindPrompt }

// Response is the terminal payload of a turn.
type Response struct {
	ID       string    `json:"id" yaml:"id"`
	AssetIDs []string  `json:"asset_ids,omitempty" yaml:"asset_ids,omitempty"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

func (e *Response) EntryID() string { return e.ID }
func (e *Response) Kind() EntryKind { return EntryKindResponse }

// ToolCall is one requested tool invocation inside a ToolCalls batch.
type ToolCall struct {
	ID        string        `json:"id" yaml:"id"`
	ToolName  string        `json:"tool_name" yaml:"tool_name"`
	Arguments content.Value `json:"arguments" yaml:"arguments"`
}

// ToolCalls is a batch of tool invocations requested by the model.
// Call order is the issue order and determines output order.
type ToolCalls struct {
	ID    string     `json:"id" yaml:"id"`
	Calls []ToolCall `json:"calls" yaml:"calls"`
}

func (e *ToolCalls) EntryID() string { return e.ID }
func (e *ToolCalls) Kind() EntryKind { return EntryKindToolCalls }

// ToolOutput records the result of exactly one ToolCall, correlated by
// the call id.
type ToolOutput struct {
	ID       string    `json:"id" yaml:"id"`
	ToolName string    `json:"tool_name" yaml:"tool_name"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

func (e *ToolOutput) EntryID() string { return e.ID }
func (e *ToolOutput) Kind() EntryKind { return EntryKindToolOutput }
