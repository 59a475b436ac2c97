package core

import (
	"github.com/google/uuid"
)

// Usage captures token usage statistics for a response. Providers normally
// attach it once, on the terminal chunk of a stream.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolCallChunk is a partial piece of a streamed tool call. Index identifies
// which logical tool call within the response the piece belongs to; providers
// may interleave pieces of several calls, so the index is required for
// grouping. Name and Arguments are substrings to be concatenated with the
// pieces that preceded them.
type ToolCallChunk struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Chunk is one partial unit of a streamed chat-completion response. All
// fields are optional; a chunk typically carries only one or two of them.
// After construction a chunk should be treated as immutable; Merge never
// mutates its inputs.
//
// Content and Parts are two representations of the same field: plain text or
// an ordered list of typed content parts. A chunk carries at most one of the
// two; Merge promotes text to a single-part list when the other side carries
// parts.
type Chunk struct {
	ID               string          `json:"id,omitempty"`
	Content          string          `json:"content,omitempty"`
	Parts            []Part          `json:"parts,omitempty"`
	ToolCalls        []ToolCallChunk `json:"tool_calls,omitempty"`
	FinishReason     string          `json:"finish_reason,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	ResponseMetadata map[string]any  `json:"response_metadata,omitempty"`
	Usage            *Usage          `json:"usage,omitempty"`
}

// Text returns the chunk's textual content regardless of representation.
func (c Chunk) Text() string {
	if len(c.Parts) > 0 {
		return PartsText(c.Parts)
	}
	return c.Content
}

// HasContent reports whether the chunk carries any content payload.
func (c Chunk) HasContent() bool { return c.Content != "" || len(c.Parts) > 0 }

// IsEmpty reports whether every field of the chunk is absent. The empty
// chunk is the identity of Merge.
func (c Chunk) IsEmpty() bool {
	return c.ID == "" &&
		c.Content == "" &&
		len(c.Parts) == 0 &&
		len(c.ToolCalls) == 0 &&
		c.FinishReason == "" &&
		len(c.Metadata) == 0 &&
		len(c.ResponseMetadata) == 0 &&
		c.Usage == nil
}

// NewID generates a new unique identifier for runs and chunks.
func NewID() string { return uuid.NewString() }
