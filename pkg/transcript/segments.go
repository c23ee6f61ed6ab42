package transcript

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/marionette/pkg/content"
)

// SegmentKind discriminates a text segment from a structured one.
type SegmentKind string

const (
	SegmentKindText       SegmentKind = "text"
	SegmentKindStructured SegmentKind = "structured"
)

// Segment is one piece of entry content: plain text or a structured
// value tagged with the label of the source that produced it.
type Segment struct {
	Kind   SegmentKind
	Text   string
	Source string
	Value  content.Value
}

// TextSegment builds a plain text segment.
func TextSegment(text string) Segment {
	return Segment{Kind: SegmentKindText, Text: text}
}

// StructuredSegment builds a structured segment.
func StructuredSegment(source string, v content.Value) Segment {
	return Segment{Kind: SegmentKindStructured, Source: source, Value: v}
}

// JoinText concatenates the textual rendering of the segments: text
// segments verbatim, structured segments as canonical JSON.
func JoinText(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		switch s.Kind {
		case SegmentKindText:
			sb.WriteString(s.Text)
		case SegmentKindStructured:
			sb.WriteString(content.Encode(s.Value))
		}
	}
	return sb.String()
}

type wireSegment struct {
	Kind   SegmentKind    `json:"kind" yaml:"kind"`
	Text   *string        `json:"text,omitempty" yaml:"text,omitempty"`
	Source string         `json:"source,omitempty" yaml:"source,omitempty"`
	Value  *content.Value `json:"value,omitempty" yaml:"value,omitempty"`
}

func (s Segment) wire() wireSegment {
	switch s.Kind {
	case SegmentKindStructured:
		v := s.Value
		return wireSegment{Kind: s.Kind, Source: s.Source, Value: &v}
	default:
		t := s.Text
		return wireSegment{Kind: SegmentKindText, Text: &t}
	}
}

func (s *Segment) fromWire(w wireSegment) error {
	switch w.Kind {
	case SegmentKindText:
		s.Kind = SegmentKindText
		if w.Text != nil {
			s.Text = *w.Text
		}
		return nil
	case SegmentKindStructured:
		s.Kind = SegmentKindStructured
		s.Source = w.Source
		if w.Value != nil {
			s.Value = *w.Value
		}
		return nil
	default:
		return errors.Errorf("unknown segment kind %q", w.Kind)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var w wireSegment
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return s.fromWire(w)
}

// MarshalYAML implements yaml.Marshaler.
func (s Segment) MarshalYAML() (interface{}, error) {
	return s.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Segment) UnmarshalYAML(node *yaml.Node) error {
	var w wireSegment
	if err := node.Decode(&w); err != nil {
		return err
	}
	return s.fromWire(w)
}
