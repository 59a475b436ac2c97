// Package anthropic adapts the Anthropic Messages streaming API into
// llmstream's chunk representation. Each SSE event decodes to at most one
// chunk; accumulation is the stream package's job.
package anthropic

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/model"
	"github.com/hupe1980/llmstream/stream"
)

// Options configure the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Stream implements model.Model. It opens a streaming Messages call and
// returns a source yielding one chunk per meaningful SSE event.
func (m *Model) Stream(ctx context.Context, req model.Request) (stream.Source, error) {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	return &eventSource{stream: m.client.Messages.NewStreaming(ctx, params)}, nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// buildMessages converts normalized messages to Anthropic message format.
func buildMessages(messages []model.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range messages {
		if msg.Content == "" || msg.Role == "system" {
			continue
		}
		switch msg.Role {
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}

// buildTools converts normalized tool definitions to Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := tool.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			switch required := params["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				for _, r := range required {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Function.Name)
	}
	return out
}

// eventSource decodes Messages SSE events. Tool-use content blocks keep
// their content-block index as the stream index; since Anthropic emits any
// leading text as block 0, tool blocks land on indices that never collide
// with default-indexed text.
type eventSource struct {
	stream       *ssestream.Stream[anthropic.MessageStreamEventUnion]
	promptTokens int
}

// Next implements stream.Source. Events that carry no mergeable payload
// (pings, block/message stops) are skipped rather than surfaced as empty
// chunks.
func (s *eventSource) Next(ctx context.Context) (core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return core.Chunk{}, err
	}
	for s.stream.Next() {
		if c, ok := s.convert(s.stream.Current()); ok {
			return c, nil
		}
	}
	if err := s.stream.Err(); err != nil {
		return core.Chunk{}, fmt.Errorf("anthropic streaming error: %w", err)
	}
	return core.Chunk{}, io.EOF
}

func (s *eventSource) convert(ev anthropic.MessageStreamEventUnion) (core.Chunk, bool) {
	switch ev.Type {
	case "message_start":
		s.promptTokens = int(ev.Message.Usage.InputTokens)
		return core.Chunk{
			ID:               ev.Message.ID,
			ResponseMetadata: map[string]any{"model": string(ev.Message.Model)},
		}, true

	case "content_block_start":
		if ev.ContentBlock.Type != "tool_use" {
			return core.Chunk{}, false
		}
		return core.Chunk{
			ToolCalls: []core.ToolCallChunk{{
				Index: int(ev.Index),
				ID:    ev.ContentBlock.ID,
				Name:  ev.ContentBlock.Name,
			}},
		}, true

	case "content_block_delta":
		switch ev.Delta.Type {
		case "text_delta":
			return core.Chunk{Content: ev.Delta.Text}, true
		case "input_json_delta":
			return core.Chunk{
				ToolCalls: []core.ToolCallChunk{{
					Index:     int(ev.Index),
					Arguments: ev.Delta.PartialJSON,
				}},
			}, true
		}
		return core.Chunk{}, false

	case "message_delta":
		completion := int(ev.Usage.OutputTokens)
		return core.Chunk{
			FinishReason: string(ev.Delta.StopReason),
			Usage: &core.Usage{
				PromptTokens:     s.promptTokens,
				CompletionTokens: completion,
				TotalTokens:      s.promptTokens + completion,
			},
		}, true
	}

	return core.Chunk{}, false
}

var _ model.Model = (*Model)(nil)
