package schema

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/go-go-golems/marionette/pkg/content"
)

// Validate checks raw JSON text against the descriptor using standard
// JSON schema semantics. This operates on the pre-canonicalization
// text, where numbers and booleans are still native JSON scalars.
func (s *Schema) Validate(jsonText string) error {
	if s == nil {
		return nil
	}
	schemaLoader := gojsonschema.NewGoLoader(s.JSONSchema())
	docLoader := gojsonschema.NewStringLoader(jsonText)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &content.MalformedInputError{Cause: errors.Wrap(err, "schema validation")}
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return &content.DecodeError{
		Target: s.Name,
		Raw:    jsonText,
		Cause:  errors.New(strings.Join(details, "; ")),
	}
}
