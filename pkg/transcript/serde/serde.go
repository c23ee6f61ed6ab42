// Package serde serializes transcripts to and from self-describing
// documents. Every entry carries a kind discriminator so the full
// ordered entry sequence round-trips: order, ids, text byte-for-byte,
// structured values structurally.
package serde

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Document is the wire envelope of a persisted transcript.
type Document struct {
	Entries []Envelope `json:"entries" yaml:"entries"`
}

// Envelope is the flat wire form of one entry. Only the fields of the
// entry's kind are populated.
type Envelope struct {
	Kind     transcript.EntryKind           `json:"kind" yaml:"kind"`
	ID       string                         `json:"id" yaml:"id"`
	Segments []transcript.Segment           `json:"segments,omitempty" yaml:"segments,omitempty"`
	ToolDefs []transcript.ToolDefinition    `json:"tool_definitions,omitempty" yaml:"tool_definitions,omitempty"`
	Options  *transcript.GenerationOptions  `json:"options,omitempty" yaml:"options,omitempty"`
	Format   *transcript.ResponseFormat     `json:"response_format,omitempty" yaml:"response_format,omitempty"`
	AssetIDs []string                       `json:"asset_ids,omitempty" yaml:"asset_ids,omitempty"`
	Calls    []transcript.ToolCall          `json:"calls,omitempty" yaml:"calls,omitempty"`
	ToolName string                         `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
}

// ToEnvelope converts a typed entry to its wire form.
func ToEnvelope(e transcript.Entry) (Envelope, error) {
	switch entry := e.(type) {
	case *transcript.Instructions:
		return Envelope{Kind: entry.Kind(), ID: entry.ID, Segments: entry.Segments, ToolDefs: entry.ToolDefs}, nil
	case *transcript.Prompt:
		return Envelope{Kind: entry.Kind(), ID: entry.ID, Segments: entry.Segments, Options: entry.Options, Format: entry.Format}, nil
	case *transcript.Response:
		return Envelope{Kind: entry.Kind(), ID: entry.ID, Segments: entry.Segments, AssetIDs: entry.AssetIDs}, nil
	case *transcript.ToolCalls:
		return Envelope{Kind: entry.Kind(), ID: entry.ID, Calls: entry.Calls}, nil
	case *transcript.ToolOutput:
		return Envelope{Kind: entry.Kind(), ID: entry.ID, ToolName: entry.ToolName, Segments: entry.Segments}, nil
	default:
		return Envelope{}, errors.Errorf("cannot serialize entry kind %q", e.Kind())
	}
}

// FromEnvelope converts a wire envelope back into a typed entry.
func FromEnvelope(env Envelope) (transcript.Entry, error) {
	switch env.Kind {
	case transcript.EntryKindInstructions:
		return &transcript.Instructions{ID: env.ID, Segments: env.Segments, ToolDefs: env.ToolDefs}, nil
	case transcript.EntryKindPrompt:
		return &transcript.Prompt{ID: env.ID, Segments: env.Segments, Options: env.Options, Format: env.Format}, nil
	case transcript.EntryKindResponse:
		return &transcript.Response{ID: env.ID, Segments: env.Segments, AssetIDs: env.AssetIDs}, nil
	case transcript.EntryKindToolCalls:
		return &transcript.ToolCalls{ID: env.ID, Calls: env.Calls}, nil
	case transcript.EntryKindToolOutput:
		return &transcript.ToolOutput{ID: env.ID, ToolName: env.ToolName, Segments: env.Segments}, nil
	default:
		return nil, errors.Errorf("unknown entry kind %q", env.Kind)
	}
}

func toDocument(t *transcript.Transcript) (Document, error) {
	var doc Document
	for _, e := range t.Entries() {
		env, err := ToEnvelope(e)
		if err != nil {
			return Document{}, err
		}
		doc.Entries = append(doc.Entries, env)
	}
	return doc, nil
}

func fromDocument(doc Document) (*transcript.Transcript, error) {
	t := transcript.New()
	for i, env := range doc.Entries {
		entry, err := FromEnvelope(env)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		t.Append(entry)
	}
	return t, nil
}

// ToJSON marshals a transcript to an indented JSON document.
func ToJSON(t *transcript.Transcript) ([]byte, error) {
	doc, err := toDocument(t)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON unmarshals a transcript from a JSON document.
func FromJSON(b []byte) (*transcript.Transcript, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal transcript document")
	}
	return fromDocument(doc)
}

// ToYAML marshals a transcript to YAML.
func ToYAML(t *transcript.Transcript) ([]byte, error) {
	doc, err := toDocument(t)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// FromYAML unmarshals a transcript from YAML.
func FromYAML(b []byte) (*transcript.Transcript, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal transcript document")
	}
	return fromDocument(doc)
}

// Save writes a transcript document to a file, choosing the format by
// extension (.yaml/.yml for YAML, JSON otherwise).
func Save(path string, t *transcript.Transcript) error {
	data, err := marshalByExt(path, t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a transcript document from a file, choosing the format by
// extension.
func Load(path string) (*transcript.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return FromYAML(b)
	}
	return FromJSON(b)
}

func marshalByExt(path string, t *transcript.Transcript) ([]byte, error) {
	if isYAMLPath(path) {
		return ToYAML(t)
	}
	return ToJSON(t)
}

func isYAMLPath(path string) bool {
	n := len(path)
	return (n > 5 && path[n-5:] == ".yaml") || (n > 4 && path[n-4:] == ".yml")
}
