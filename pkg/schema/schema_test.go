package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/marionette/pkg/content"
)

func weatherSchema() *Schema {
	return &Schema{
		Name: "weather",
		Type: TypeObject,
		Properties: []Property{
			{Name: "city", Required: true, Schema: &Schema{Type: TypeString}},
			{Name: "celsius", Required: true, Schema: &Schema{Type: TypeInteger}},
			{Name: "conditions", Schema: &Schema{Type: TypeString, Enum: []string{"sunny", "cloudy", "rain"}}},
		},
	}
}

func TestSchema_DecodeOK(t *testing.T) {
	v, err := content.Parse(`{"city":"Paris","celsius":22,"conditions":"sunny"}`)
	require.NoError(t, err)
	require.NoError(t, weatherSchema().Decode(v))
}

func TestSchema_DecodeMissingRequired(t *testing.T) {
	v, err := content.Parse(`{"city":"Paris"}`)
	require.NoError(t, err)
	err = weatherSchema().Decode(v)
	var decodeErr *content.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Target, "celsius")
}

func TestSchema_DecodeWrongType(t *testing.T) {
	v, err := content.Parse(`{"city":"Paris","celsius":"mild"}`)
	require.NoError(t, err)
	err = weatherSchema().Decode(v)
	var decodeErr *content.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestSchema_DecodeEnum(t *testing.T) {
	v, err := content.Parse(`{"city":"Paris","celsius":22,"conditions":"foggy"}`)
	require.NoError(t, err)
	err = weatherSchema().Decode(v)
	var decodeErr *content.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Target, "conditions")
}

func TestSchema_DecodeArray(t *testing.T) {
	s := &Schema{Type: TypeArray, Items: &Schema{Type: TypeInteger}}
	v, err := content.Parse(`[1,2,3]`)
	require.NoError(t, err)
	require.NoError(t, s.Decode(v))

	v, err = content.Parse(`[1,"two"]`)
	require.NoError(t, err)
	require.Error(t, s.Decode(v))
}

func TestSchema_Validate(t *testing.T) {
	s := weatherSchema()
	require.NoError(t, s.Validate(`{"city":"Paris","celsius":22}`))

	err := s.Validate(`{"city":"Paris","celsius":"mild"}`)
	var decodeErr *content.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	err = s.Validate(`not json`)
	var malformed *content.MalformedInputError
	require.ErrorAs(t, err, &malformed)
}

func TestSchema_Reflect(t *testing.T) {
	type forecast struct {
		City    string `json:"city"`
		Celsius int    `json:"celsius"`
		Windy   bool   `json:"windy,omitempty"`
	}
	s, err := Reflect(forecast{})
	require.NoError(t, err)
	assert.Equal(t, TypeObject, s.Type)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, "city", s.Properties[0].Name)
	assert.Equal(t, TypeString, s.Properties[0].Schema.Type)
	assert.True(t, s.Properties[0].Required)
	assert.Equal(t, "celsius", s.Properties[1].Name)
	assert.Equal(t, TypeInteger, s.Properties[1].Schema.Type)
	assert.Equal(t, "windy", s.Properties[2].Name)
	assert.False(t, s.Properties[2].Required)
}

func TestSchema_InstructionText(t *testing.T) {
	text := weatherSchema().InstructionText()
	assert.Contains(t, text, `"weather"`)
	assert.Contains(t, text, "celsius")
	assert.Contains(t, text, "schema")
}
