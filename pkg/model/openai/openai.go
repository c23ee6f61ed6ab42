// Package openai adapts an OpenAI-compatible chat completion API to the
// model contract. It maps transcript entries onto chat messages, tool
// definitions onto function tools, and schema response formats onto the
// provider's native structured output support.
package openai

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/model"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Model drives chat completions against an OpenAI-compatible endpoint.
type Model struct {
	client    *go_openai.Client
	modelName string
}

type Option func(*Model)

// WithModelName selects the completion model, e.g. "gpt-4o-mini".
func WithModelName(name string) Option {
	return func(m *Model) {
		m.modelName = name
	}
}

// WithClient substitutes a preconfigured client, for custom base URLs
// or transports.
func WithClient(client *go_openai.Client) Option {
	return func(m *Model) {
		m.client = client
	}
}

func New(apiKey string, options ...Option) *Model {
	m := &Model{
		client:    go_openai.NewClient(apiKey),
		modelName: go_openai.GPT4oMini,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewWithBaseURL targets an OpenAI-compatible endpoint at a custom base
// URL, such as a local inference server.
func NewWithBaseURL(apiKey string, baseURL string, options ...Option) *Model {
	cfg := go_openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	m := &Model{
		client:    go_openai.NewClientWithConfig(cfg),
		modelName: go_openai.GPT4oMini,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Generate performs one completion and converts the result into a
// transcript entry: a ToolCalls batch when the model requested tools,
// a text Response otherwise.
func (m *Model) Generate(ctx context.Context, entries []transcript.Entry) (transcript.Entry, error) {
	req, err := m.buildRequest(entries, false)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("tools", len(req.Tools)).
		Msg("openai chat completion")

	resp, err := m.client.CreateChatCompletion(ctx, *req)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		calls := make([]transcript.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			args, err := content.Parse(tc.Function.Arguments)
			if err != nil {
				return nil, errors.Wrapf(err, "parse arguments of tool call %s", tc.ID)
			}
			calls = append(calls, transcript.ToolCall{
				ID:        tc.ID,
				ToolName:  tc.Function.Name,
				Arguments: args,
			})
		}
		return transcript.NewToolCalls(calls...), nil
	}

	return transcript.NewTextResponse(msg.Content), nil
}

// Stream opens a streaming completion. Tool calls are not surfaced on
// the streaming path; use Generate for tool-enabled turns.
func (m *Model) Stream(ctx context.Context, entries []transcript.Entry) (model.DeltaStream, error) {
	req, err := m.buildRequest(entries, true)
	if err != nil {
		return nil, err
	}

	stream, err := m.client.CreateChatCompletionStream(ctx, *req)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion stream")
	}
	return &chatStream{inner: stream}, nil
}

type chatStream struct {
	inner *go_openai.ChatCompletionStream
}

func (s *chatStream) Recv() (model.Delta, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		// io.EOF passes through as the end-of-stream marker
		return model.Delta{}, err
	}
	if len(resp.Choices) == 0 {
		return model.Delta{}, nil
	}
	return model.Delta{Text: resp.Choices[0].Delta.Content}, nil
}

func (s *chatStream) Close() error {
	return s.inner.Close()
}

func (m *Model) buildRequest(entries []transcript.Entry, stream bool) (*go_openai.ChatCompletionRequest, error) {
	req := &go_openai.ChatCompletionRequest{
		Model:  m.modelName,
		Stream: stream,
	}

	for _, entry := range entries {
		switch e := entry.(type) {
		case *transcript.Instructions:
			req.Messages = append(req.Messages, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleSystem,
				Content: transcript.JoinText(e.Segments),
			})
			for _, def := range e.ToolDefs {
				req.Tools = append(req.Tools, go_openai.Tool{
					Type: go_openai.ToolTypeFunction,
					Function: &go_openai.FunctionDefinition{
						Name:        def.Name,
						Description: def.Description,
						Parameters:  json.RawMessage(content.Encode(def.Parameters)),
					},
				})
			}

		case *transcript.Prompt:
			req.Messages = append(req.Messages, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleUser,
				Content: transcript.JoinText(e.Segments),
			})
			applyOptions(req, e.Options)
			if err := applyFormat(req, e.Format); err != nil {
				return nil, err
			}

		case *transcript.Response:
			req.Messages = append(req.Messages, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleAssistant,
				Content: responseText(e),
			})

		case *transcript.ToolCalls:
			msg := go_openai.ChatCompletionMessage{
				Role: go_openai.ChatMessageRoleAssistant,
			}
			for _, call := range e.Calls {
				msg.ToolCalls = append(msg.ToolCalls, go_openai.ToolCall{
					ID:   call.ID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      call.ToolName,
						Arguments: content.Encode(call.Arguments),
					},
				})
			}
			req.Messages = append(req.Messages, msg)

		case *transcript.ToolOutput:
			req.Messages = append(req.Messages, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				ToolCallID: e.ID,
				Content:    transcript.JoinText(e.Segments),
			})

		default:
			return nil, errors.Errorf("cannot map transcript entry kind %s to a chat message", entry.Kind())
		}
	}

	return req, nil
}

func applyOptions(req *go_openai.ChatCompletionRequest, opts *transcript.GenerationOptions) {
	if opts == nil {
		return
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.TopP != nil {
		req.TopP = float32(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
}

func applyFormat(req *go_openai.ChatCompletionRequest, format *transcript.ResponseFormat) error {
	if !format.IsSchemaBased() || format.Schema == nil {
		return nil
	}
	schemaBytes, err := json.Marshal(format.Schema.JSONSchema())
	if err != nil {
		return errors.Wrap(err, "marshal response format schema")
	}
	name := format.Schema.Name
	if name == "" {
		name = "response"
	}
	req.ResponseFormat = &go_openai.ChatCompletionResponseFormat{
		Type: go_openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &go_openai.ChatCompletionResponseFormatJSONSchema{
			Name:        name,
			Description: format.Schema.Description,
			Schema:      json.RawMessage(schemaBytes),
			Strict:      true,
		},
	}
	return nil
}

func responseText(e *transcript.Response) string {
	if seg, ok := e.Structured(); ok {
		return content.Encode(seg.Value)
	}
	return e.Text()
}

var _ model.Model = &Model{}
