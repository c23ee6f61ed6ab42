package content

import "gopkg.in/yaml.v3"

// MarshalYAML encodes the Value as its canonical JSON text. YAML maps
// do not preserve key order reliably across implementations, so the
// JSON form is embedded as a scalar instead.
func (v Value) MarshalYAML() (interface{}, error) {
	return Encode(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
