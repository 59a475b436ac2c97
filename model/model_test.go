package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/stream"
)

func TestMockModel_StreamText(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("Bonjour", "J'adore la programmation.")

	src, err := m.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "Bonjour"}},
	})
	require.NoError(t, err)

	agg := stream.NewAggregator()
	require.NoError(t, stream.Drain(context.Background(), src, agg))

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].Result
	assert.Equal(t, "J'adore la programmation.", got.Content)
	assert.Equal(t, "stop", got.FinishReason)
	assert.NotEmpty(t, got.ID)
	require.NotNil(t, got.Usage)
	assert.Equal(t, len("J'adore la programmation."), got.Usage.CompletionTokens)
}

func TestMockModel_StreamToolCalls(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddToolCalls(
		core.ToolCallChunk{Index: 0, ID: "call-1", Name: "get_weather", Arguments: `{"city":`},
		core.ToolCallChunk{Index: 1, ID: "call-2", Name: "get_time", Arguments: `{"tz":"UTC"}`},
		core.ToolCallChunk{Index: 0, Arguments: `"Paris"}`},
	)

	src, err := m.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "Weather and time?"}},
	})
	require.NoError(t, err)

	agg := stream.NewAggregator()
	require.NoError(t, stream.Drain(context.Background(), src, agg))

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The terminal carrier chunk (finish reason, usage) folds into the
	// default slot alongside tool call 0.
	assert.Equal(t, "tool_calls", results[0].Result.FinishReason)
	require.NotNil(t, results[0].Result.Usage)

	tc0 := results[0].Result.ToolCalls[0]
	assert.Equal(t, "get_weather", tc0.Name)
	assert.Equal(t, `{"city":"Paris"}`, tc0.Arguments)

	tc1 := results[1].Result.ToolCalls[0]
	assert.Equal(t, "get_time", tc1.Name)
}

func TestMockModel_DefaultResponse(t *testing.T) {
	m := NewMockModel("test-model")

	src, err := m.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "unknown prompt"}},
	})
	require.NoError(t, err)

	agg := stream.NewAggregator()
	require.NoError(t, stream.Drain(context.Background(), src, agg))

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Mock response to: unknown prompt", results[0].Result.Content)
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("test-model")
	info := m.Info()
	assert.Equal(t, "test-model", info.Name)
	assert.Equal(t, "mock", info.Provider)
	assert.True(t, info.SupportsTools)
}
