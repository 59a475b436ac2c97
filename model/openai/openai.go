// Package openai adapts the OpenAI Chat Completions streaming API (including
// function/tool calling) into llmstream's chunk representation. It performs
// wire decoding only; accumulation of the resulting chunks is the stream
// package's job.
package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/model"
	"github.com/hupe1980/llmstream/stream"
)

// Options configure the OpenAI model adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model
// interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Stream implements model.Model. It opens a streaming completion and returns
// a source that decodes one SSE chunk per pull.
func (m *Model) Stream(ctx context.Context, req model.Request) (stream.Source, error) {
	params := m.buildParams(req)
	return &chunkSource{stream: m.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}

// buildParams assembles the OpenAI request parameters including tool
// definitions. Usage reporting on the terminal chunk is always requested so
// the merged result carries token counters.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// chunkSource decodes one ChatCompletionChunk per pull.
type chunkSource struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

// Next implements stream.Source.
func (s *chunkSource) Next(ctx context.Context) (core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return core.Chunk{}, err
	}
	if !s.stream.Next() {
		if err := s.stream.Err(); err != nil {
			return core.Chunk{}, fmt.Errorf("openai streaming error: %w", err)
		}
		return core.Chunk{}, io.EOF
	}
	return convertChunk(s.stream.Current()), nil
}

// convertChunk maps one wire chunk to the internal representation. Tool-call
// deltas keep their per-call index so the aggregator can regroup interleaved
// calls.
func convertChunk(ck openai.ChatCompletionChunk) core.Chunk {
	out := core.Chunk{ID: ck.ID}
	for _, choice := range ck.Choices {
		out.Content += choice.Delta.Content
		if choice.FinishReason != "" {
			out.FinishReason = choice.FinishReason
		}
		for _, tc := range choice.Delta.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, core.ToolCallChunk{
				Index:     int(tc.Index),
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	if ck.Usage.TotalTokens > 0 {
		out.Usage = &core.Usage{
			PromptTokens:     int(ck.Usage.PromptTokens),
			CompletionTokens: int(ck.Usage.CompletionTokens),
			TotalTokens:      int(ck.Usage.TotalTokens),
		}
	}
	if ck.Model != "" {
		out.ResponseMetadata = map[string]any{"model": ck.Model}
		if ck.SystemFingerprint != "" {
			out.ResponseMetadata["system_fingerprint"] = ck.SystemFingerprint
		}
	}
	return out
}

var _ model.Model = (*Model)(nil)
