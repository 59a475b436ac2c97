package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/logging"
)

// captureLogger records warning messages for assertions.
type captureLogger struct {
	logging.NoOpLogger
	warnings []string
}

func (l *captureLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

func toolChunk(index int, id, name, args string) core.Chunk {
	return core.Chunk{ToolCalls: []core.ToolCallChunk{{Index: index, ID: id, Name: name, Arguments: args}}}
}

func TestAggregator_IndexOrdering(t *testing.T) {
	agg := NewAggregator()

	// Indices arrive interleaved and non-monotonically: [1, 0, 1, 0].
	require.NoError(t, agg.Add(toolChunk(1, "c1", "fetch", `{"u":`)))
	require.NoError(t, agg.Add(toolChunk(0, "c0", "lookup", `{"q":`)))
	require.NoError(t, agg.Add(toolChunk(1, "", "", `"x"}`)))
	require.NoError(t, agg.Add(toolChunk(0, "", "", `"y"}`)))
	agg.Finish()

	assert.Equal(t, []int{1, 0}, agg.Indices())

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Terminal emission is by ascending index, not arrival order.
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[1].Index)

	tc0 := results[0].Result.ToolCalls[0]
	assert.Equal(t, "c0", tc0.ID)
	assert.Equal(t, "lookup", tc0.Name)
	assert.Equal(t, `{"q":"y"}`, tc0.Arguments)

	tc1 := results[1].Result.ToolCalls[0]
	assert.Equal(t, "c1", tc1.ID)
	assert.Equal(t, `{"u":"x"}`, tc1.Arguments)
}

func TestAggregator_ContentFold(t *testing.T) {
	agg := NewAggregator()
	for _, s := range []string{"J", "'adore", " la", " programmation", "."} {
		require.NoError(t, agg.Add(core.Chunk{Content: s}))
	}
	require.NoError(t, agg.Add(core.Chunk{FinishReason: "stop", Usage: &core.Usage{TotalTokens: 12}}))
	agg.Finish()

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, DefaultIndex, results[0].Index)
	assert.Equal(t, "J'adore la programmation.", results[0].Result.Content)
	assert.Equal(t, "stop", results[0].Result.FinishReason)
	require.NotNil(t, results[0].Result.Usage)
	assert.Equal(t, 12, results[0].Result.Usage.TotalTokens)
}

func TestAggregator_AmbiguousGrouping(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.Add(core.Chunk{Content: "plain text"}))

	err := agg.Add(toolChunk(0, "c0", "lookup", "{}"))
	require.ErrorIs(t, err, ErrAmbiguousGrouping)

	// The offending chunk was not merged.
	got, ok := agg.Peek(0)
	require.True(t, ok)
	assert.Empty(t, got.ToolCalls)
	assert.Equal(t, "plain text", got.Content)

	// The failure is terminal and surfaces through Results.
	_, err = agg.Results()
	require.ErrorIs(t, err, ErrAmbiguousGrouping)
	require.ErrorIs(t, agg.Add(core.Chunk{Content: "more"}), ErrAmbiguousGrouping)
}

func TestAggregator_AmbiguousGroupingReverse(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.Add(toolChunk(0, "c0", "lookup", "{}")))

	err := agg.Add(core.Chunk{Content: "late text"})
	require.ErrorIs(t, err, ErrAmbiguousGrouping)
}

func TestAggregator_IntraChunkAmbiguity(t *testing.T) {
	agg := NewAggregator()

	// A single chunk carrying both default-indexed content and a tool piece
	// explicitly indexed 0 is rejected without partial merging.
	c := core.Chunk{Content: "text", ToolCalls: []core.ToolCallChunk{{Index: 0, Name: "lookup"}}}
	require.ErrorIs(t, agg.Add(c), ErrAmbiguousGrouping)

	_, ok := agg.Peek(0)
	assert.False(t, ok)
}

func TestAggregator_FanOut(t *testing.T) {
	agg := NewAggregator()

	c := core.Chunk{ToolCalls: []core.ToolCallChunk{
		{Index: 0, ID: "c0", Name: "lookup"},
		{Index: 1, ID: "c1", Name: "fetch"},
	}}
	require.NoError(t, agg.Add(c))

	got0, ok := agg.Peek(0)
	require.True(t, ok)
	got1, ok := agg.Peek(1)
	require.True(t, ok)
	assert.Equal(t, "lookup", got0.ToolCalls[0].Name)
	assert.Equal(t, "fetch", got1.ToolCalls[0].Name)
}

func TestAggregator_CarrierFieldsRouteToDefaultIndex(t *testing.T) {
	agg := NewAggregator()

	require.NoError(t, agg.Add(toolChunk(1, "c1", "fetch", "{}")))
	// Terminal usage-only chunk (no content, no tool pieces) still lands at
	// the default index instead of being dropped.
	require.NoError(t, agg.Add(core.Chunk{FinishReason: "tool_calls", Usage: &core.Usage{TotalTokens: 40}}))
	agg.Finish()

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "tool_calls", results[0].Result.FinishReason)
	assert.Equal(t, 1, results[1].Index)
}

func TestAggregator_MalformedChunkAbsorbed(t *testing.T) {
	logger := &captureLogger{}
	agg := NewAggregator(func(o *AggregatorOptions) { o.Logger = logger })

	require.NoError(t, agg.Add(core.Chunk{}))
	require.NoError(t, agg.Add(core.Chunk{Content: "ok"}))
	agg.Finish()

	assert.Len(t, logger.warnings, 1)
	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Result.Content)
}

func TestAggregator_EarlyAbandonment(t *testing.T) {
	agg := NewAggregator()
	require.NoError(t, agg.Add(core.Chunk{Content: "He"}))
	require.NoError(t, agg.Add(core.Chunk{Content: "llo"}))
	// Pull loop stops here; three more chunks never arrive.

	got, ok := agg.Peek(DefaultIndex)
	require.True(t, ok)
	assert.Equal(t, "Hello", got.Content)

	_, err := agg.Results()
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestAggregator_AddAfterFinish(t *testing.T) {
	agg := NewAggregator()
	agg.Finish()
	require.ErrorIs(t, agg.Add(core.Chunk{Content: "late"}), ErrFinished)
}

func TestDrain_CleanStream(t *testing.T) {
	src := NewSliceSource(
		core.Chunk{ID: "msg-1", Content: "Hi"},
		core.Chunk{Content: " there"},
		core.Chunk{FinishReason: "stop"},
	)
	agg := NewAggregator()

	require.NoError(t, Drain(context.Background(), src, agg))

	results, err := agg.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hi there", results[0].Result.Content)
	assert.Equal(t, "msg-1", results[0].Result.ID)
	assert.Equal(t, "stop", results[0].Result.FinishReason)
}

func TestDrain_TransportFailure(t *testing.T) {
	boom := errors.New("transport failure")
	src := NewFailingSliceSource(boom, core.Chunk{Content: "partial"})
	agg := NewAggregator()

	err := Drain(context.Background(), src, agg)
	require.ErrorIs(t, err, boom)

	// Partial state stays inspectable, but the terminal operation reports
	// the failure instead of a truncated success.
	got, ok := agg.Peek(DefaultIndex)
	require.True(t, ok)
	assert.Equal(t, "partial", got.Content)
	_, err = agg.Results()
	require.ErrorIs(t, err, boom)
}

func TestDrain_GroupingFailure(t *testing.T) {
	src := NewSliceSource(
		core.Chunk{Content: "text"},
		toolChunk(0, "c0", "lookup", "{}"),
	)
	agg := NewAggregator()

	err := Drain(context.Background(), src, agg)
	require.ErrorIs(t, err, ErrAmbiguousGrouping)
	_, err = agg.Results()
	require.ErrorIs(t, err, ErrAmbiguousGrouping)
}
