package schema

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-go-golems/marionette/pkg/content"
)

// Type names the expected shape of a value.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Property is one named, typed field of an object schema. Property
// order is declaration order and is preserved when rendering.
type Property struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

// Schema is a read-only description of an expected structure: an object
// with named typed fields, an array, a scalar, or an enumerated string.
// It drives decode-time checks and can be embedded into instruction
// text so the model knows the expected contract.
type Schema struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Type        Type       `json:"type" yaml:"type"`
	Properties  []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *Schema    `json:"items,omitempty" yaml:"items,omitempty"`
	Enum        []string   `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Decode checks a content Value against the schema. It performs
// decode-time type and field checks only; no constraint validation
// beyond that. Errors carry the offending path.
func (s *Schema) Decode(v content.Value) error {
	if s == nil {
		return nil
	}
	return s.decodeAt("$", v)
}

func (s *Schema) decodeAt(path string, v content.Value) error {
	switch s.Type {
	case TypeObject:
		pairs, err := v.Properties()
		if err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		byKey := make(map[string]content.Value, len(pairs))
		for _, p := range pairs {
			byKey[p.Key] = p.Value
		}
		for _, prop := range s.Properties {
			val, ok := byKey[prop.Name]
			if !ok {
				if prop.Required {
					return decodeErr(path+"."+prop.Name, s.Type, v, errors.New("required field missing"))
				}
				continue
			}
			if prop.Schema == nil {
				continue
			}
			if err := prop.Schema.decodeAt(path+"."+prop.Name, val); err != nil {
				return err
			}
		}
		return nil
	case TypeArray:
		elems, err := v.Elements()
		if err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		if s.Items == nil {
			return nil
		}
		for i, e := range elems {
			if err := s.Items.decodeAt(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
				return err
			}
		}
		return nil
	case TypeString:
		text, err := v.Text()
		if err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		if len(s.Enum) > 0 {
			for _, allowed := range s.Enum {
				if text == allowed {
					return nil
				}
			}
			return decodeErr(path, s.Type, v, errors.Errorf("%q is not one of the allowed values", text))
		}
		return nil
	case TypeInteger:
		if _, err := v.Int(); err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		return nil
	case TypeNumber:
		if _, err := v.Float(); err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		return nil
	case TypeBoolean:
		if _, err := v.Bool(); err != nil {
			return decodeErr(path, s.Type, v, err)
		}
		return nil
	default:
		return decodeErr(path, s.Type, v, errors.Errorf("unknown schema type %q", s.Type))
	}
}

func decodeErr(path string, expected Type, v content.Value, cause error) error {
	return &content.DecodeError{
		Target: fmt.Sprintf("%s (%s)", path, expected),
		Raw:    content.Encode(v),
		Cause:  cause,
	}
}

// JSONSchema renders the descriptor as a plain JSON schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		var required []string
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
		out["additionalProperties"] = false
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.JSONSchema()
		}
	case TypeString:
		if len(s.Enum) > 0 {
			enum := make([]any, len(s.Enum))
			for i, e := range s.Enum {
				enum[i] = e
			}
			out["enum"] = enum
		}
	}
	return out
}

// InstructionText renders the schema as an instruction fragment suitable
// for inclusion in a system prompt.
func (s *Schema) InstructionText() string {
	if s == nil {
		return ""
	}
	b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return ""
	}
	name := s.Name
	if name == "" {
		name = "response"
	}
	return fmt.Sprintf("Respond with a single JSON value for %q matching this schema:\n%s", name, string(b))
}
