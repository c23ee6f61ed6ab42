package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Reflect derives a Schema descriptor from a Go struct, using json tags
// for field names and jsonschema tags for descriptions. Field order
// follows struct declaration order.
func Reflect(val any) (*Schema, error) {
	t := reflect.TypeOf(val)
	if t == nil {
		return nil, errors.New("cannot reflect schema from nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	js := reflector.Reflect(val)
	out, err := fromJSONSchema(js)
	if err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = t.Name()
	}
	return out, nil
}

func fromJSONSchema(js *jsonschema.Schema) (*Schema, error) {
	if js == nil {
		return nil, errors.New("nil jsonschema")
	}
	out := &Schema{
		Name:        js.Title,
		Description: js.Description,
		Type:        Type(js.Type),
	}
	if out.Type == "" {
		out.Type = TypeObject
	}
	for _, e := range js.Enum {
		if s, ok := e.(string); ok {
			out.Enum = append(out.Enum, s)
		}
	}
	if js.Items != nil {
		items, err := fromJSONSchema(js.Items)
		if err != nil {
			return nil, err
		}
		out.Items = items
	}
	if js.Properties != nil {
		required := make(map[string]bool, len(js.Required))
		for _, r := range js.Required {
			required[r] = true
		}
		for p := js.Properties.Oldest(); p != nil; p = p.Next() {
			propSchema, err := fromJSONSchema(p.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "property %q", p.Key)
			}
			out.Properties = append(out.Properties, Property{
				Name:        p.Key,
				Description: p.Value.Description,
				Required:    required[p.Key],
				Schema:      propSchema,
			})
		}
	}
	return out, nil
}
