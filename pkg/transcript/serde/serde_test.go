package serde

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/schema"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

func sampleTranscript(t *testing.T) *transcript.Transcript {
	t.Helper()

	args, err := content.Parse(`{"city":"Paris","unit":"celsius"}`)
	require.NoError(t, err)
	structured, err := content.Parse(`{"message":"hello"}`)
	require.NoError(t, err)

	temp := 0.7
	maxTokens := 512

	tr := transcript.New()
	tr.Append(
		&transcript.Instructions{
			ID:       "entry-0",
			Segments: []transcript.Segment{transcript.TextSegment("You are a weather assistant.")},
			ToolDefs: []transcript.ToolDefinition{
				{Name: "Weather", Description: "Look up the weather", Parameters: args},
			},
		},
		&transcript.Prompt{
			ID:       "entry-1",
			Segments: []transcript.Segment{transcript.TextSegment("weather?")},
			Options:  &transcript.GenerationOptions{Temperature: &temp, MaxTokens: &maxTokens},
			Format: transcript.SchemaFormat(&schema.Schema{
				Name: "message",
				Type: schema.TypeObject,
				Properties: []schema.Property{
					{Name: "message", Required: true, Schema: &schema.Schema{Type: schema.TypeString}},
				},
			}),
		},
		&transcript.ToolCalls{
			ID: "entry-2",
			Calls: []transcript.ToolCall{
				{ID: "call-1", ToolName: "Weather", Arguments: args},
			},
		},
		&transcript.ToolOutput{
			ID:       "call-1",
			ToolName: "Weather",
			Segments: []transcript.Segment{transcript.TextSegment("22°C")},
		},
		&transcript.Response{
			ID:       "entry-4",
			AssetIDs: []string{"asset-1"},
			Segments: []transcript.Segment{transcript.StructuredSegment("model", structured)},
		},
	)
	return tr
}

func TestJSONRoundTrip(t *testing.T) {
	tr := sampleTranscript(t)

	data, err := ToJSON(tr)
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, tr.Equal(back), "JSON round trip must reproduce an equal transcript")
}

func TestYAMLRoundTrip(t *testing.T) {
	tr := sampleTranscript(t)

	data, err := ToYAML(tr)
	require.NoError(t, err)

	back, err := FromYAML(data)
	require.NoError(t, err)
	assert.True(t, tr.Equal(back), "YAML round trip must reproduce an equal transcript")
}

func TestResponseFormatWireShape(t *testing.T) {
	tr := sampleTranscript(t)
	data, err := ToJSON(tr)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	entries := doc["entries"].([]any)
	prompt := entries[1].(map[string]any)
	format := prompt["response_format"].(map[string]any)
	assert.Equal(t, "schema-based", format["name"])
	assert.Contains(t, format, "schema")
	assert.NotContains(t, format, "type")
}

func TestTypeFormatWireShape(t *testing.T) {
	tr := transcript.New(&transcript.Prompt{
		ID:       "p",
		Segments: []transcript.Segment{transcript.TextSegment("yes or no?")},
		Format:   transcript.TypeFormat("bool"),
	})
	data, err := ToJSON(tr)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	format := doc["entries"].([]any)[0].(map[string]any)["response_format"].(map[string]any)
	assert.Equal(t, "bool", format["name"])
	assert.Equal(t, "bool", format["type"])
}

func TestUnknownKindRejected(t *testing.T) {
	_, err := FromJSON([]byte(`{"entries":[{"kind":"banter","id":"x"}]}`))
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	tr := sampleTranscript(t)
	dir := t.TempDir()

	for _, name := range []string{"transcript.json", "transcript.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, tr))
		back, err := Load(path)
		require.NoError(t, err)
		assert.True(t, tr.Equal(back), "file round trip via %s", name)
	}
}
