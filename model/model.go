package model

import (
	"context"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/stream"
)

// Message is a single conversation turn sent to the model.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input for one streaming call.
type Request struct {
	Instructions string           `json:"instructions,omitempty"` // System instructions
	Messages     []Message        `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the merge engine needs from a provider: a
// way to open a pull-based chunk stream for a request.
type Model interface {
	// Stream starts a streaming generation and returns a single-pass chunk
	// source. The returned source honors ctx for cancellation and must be
	// pulled by exactly one consumer.
	Stream(ctx context.Context, req Request) (stream.Source, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// It streams a canned completion rune by rune, optionally followed by
// scripted tool-call pieces and a terminal usage chunk.
type MockModel struct {
	info      Info
	responses map[string]string
	toolCalls []core.ToolCallChunk
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// AddToolCalls registers tool-call pieces to stream after the text, one
// piece per pull.
func (m *MockModel) AddToolCalls(pieces ...core.ToolCallChunk) {
	m.toolCalls = append(m.toolCalls, pieces...)
}

// Stream implements Model; it emits one chunk per rune of the canned
// completion, then the scripted tool-call pieces, then a terminal chunk with
// finish reason and usage.
func (m *MockModel) Stream(_ context.Context, req Request) (stream.Source, error) {
	var prompt string
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}
	full := m.responses[prompt]
	if full == "" && len(m.toolCalls) == 0 {
		full = "Mock response to: " + prompt
	}

	var chunks []core.Chunk
	first := true
	for _, r := range full {
		c := core.Chunk{Content: string(r)}
		if first {
			c.ID = core.NewID()
			first = false
		}
		chunks = append(chunks, c)
	}
	for _, tc := range m.toolCalls {
		chunks = append(chunks, core.Chunk{ToolCalls: []core.ToolCallChunk{tc}})
	}

	finish := "stop"
	if len(m.toolCalls) > 0 {
		finish = "tool_calls"
	}
	chunks = append(chunks, core.Chunk{
		FinishReason: finish,
		Usage: &core.Usage{
			PromptTokens:     len(prompt),
			CompletionTokens: len(full),
			TotalTokens:      len(prompt) + len(full),
		},
	})

	return stream.NewSliceSource(chunks...), nil
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }

var _ Model = (*MockModel)(nil)
