package stream

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/logging"
)

// DefaultIndex is the stream index assigned to plain content chunks that
// carry no explicit index of their own, and to message-level carrier fields
// (id, finish reason, usage, metadata).
const DefaultIndex = 0

var (
	// ErrAmbiguousGrouping signals that a tool-call piece's explicit index
	// collides with the slot already seeded by default-indexed plain
	// content (or the reverse). The grouping of such a stream cannot be
	// decided, so the offending chunk is not merged and the aggregation
	// fails.
	ErrAmbiguousGrouping = errors.New("ambiguous stream index grouping")

	// ErrIncomplete is reported by Results when the stream was abandoned
	// before its end was observed. Partial per-index state remains
	// available through Peek.
	ErrIncomplete = errors.New("stream incomplete")

	// ErrFinished is returned by Add once the aggregation has been
	// finished or failed.
	ErrFinished = errors.New("aggregation already finished")
)

// IndexedResult pairs a stream index with its fully merged chunk.
type IndexedResult struct {
	Index  int
	Result core.Chunk
}

// AggregatorOptions configure an Aggregator.
type AggregatorOptions struct {
	// Logger receives warning diagnostics (e.g. payload-free chunks).
	Logger logging.Logger
}

// Aggregator folds an ordered stream of chunks into per-index merged
// results. It is owned by a single streaming call and driven by one
// cooperative pull loop, so it performs no internal locking; concurrent
// independent calls must each use their own Aggregator.
type Aggregator struct {
	logger  logging.Logger
	results map[int]core.Chunk
	order   []int        // indices in first-seen order
	content map[int]bool // slots seeded by default-indexed plain content
	tool    map[int]bool // slots holding explicit tool-call pieces
	failure error
	done    bool
}

// NewAggregator creates an empty aggregation state.
func NewAggregator(optFns ...func(o *AggregatorOptions)) *Aggregator {
	opts := AggregatorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Aggregator{
		logger:  opts.Logger,
		results: map[int]core.Chunk{},
		content: map[int]bool{},
		tool:    map[int]bool{},
	}
}

// Add routes one chunk into the per-index fold state, merging eagerly.
//
// Tool-call pieces are routed to their explicit index; pieces with different
// indices inside one chunk fan out to their respective slots independently.
// Everything else (content and the message-level carrier fields) merges
// into the default index. A chunk with no payload at all is absorbed with a
// warning. An index collision between plain content and an explicit
// tool-call piece fails the aggregation with ErrAmbiguousGrouping and leaves
// the offending chunk unmerged.
func (a *Aggregator) Add(c core.Chunk) error {
	if a.failure != nil {
		return a.failure
	}
	if a.done {
		return ErrFinished
	}
	if c.IsEmpty() {
		a.logger.Warn("ignoring chunk without payload")
		return nil
	}

	// Validate grouping before touching any slot so an ambiguous chunk is
	// rejected without being partially merged.
	hasContent := c.HasContent()
	if hasContent && a.tool[DefaultIndex] {
		return a.fail(fmt.Errorf("content chunk collides with tool call at index %d: %w", DefaultIndex, ErrAmbiguousGrouping))
	}
	for _, tc := range c.ToolCalls {
		if a.content[tc.Index] || (hasContent && tc.Index == DefaultIndex) {
			return a.fail(fmt.Errorf("tool call piece collides with content at index %d: %w", tc.Index, ErrAmbiguousGrouping))
		}
	}

	rest := c
	rest.ToolCalls = nil
	if !rest.IsEmpty() {
		a.mergeAt(DefaultIndex, rest)
		if hasContent {
			a.content[DefaultIndex] = true
		}
	}

	for _, tc := range c.ToolCalls {
		a.mergeAt(tc.Index, core.Chunk{ToolCalls: []core.ToolCallChunk{tc}})
		a.tool[tc.Index] = true
	}

	return nil
}

func (a *Aggregator) mergeAt(index int, c core.Chunk) {
	if existing, ok := a.results[index]; ok {
		a.results[index] = core.Merge(existing, c)
		return
	}
	a.order = append(a.order, index)
	a.results[index] = c
}

func (a *Aggregator) fail(err error) error {
	a.failure = err
	a.done = true
	return err
}

// Peek returns the current best-effort merged chunk for an index. It is
// usable mid-stream for live display and after a failure or abandonment to
// inspect partial state.
func (a *Aggregator) Peek(index int) (core.Chunk, bool) {
	c, ok := a.results[index]
	return c, ok
}

// Indices returns the observed stream indices in first-seen order.
func (a *Aggregator) Indices() []int {
	return slices.Clone(a.order)
}

// Finish marks the end of the stream, making Results available.
func (a *Aggregator) Finish() {
	a.done = true
}

// Fail records a transport failure. The first recorded failure sticks and
// is reported by Results.
func (a *Aggregator) Fail(err error) {
	if a.failure == nil {
		a.failure = err
	}
	a.done = true
}

// Results returns the final merged chunk per stream index, sorted by
// ascending index regardless of arrival order. It reports the recorded
// failure when the stream failed and ErrIncomplete when the stream was
// abandoned before its end, never a silently truncated success.
func (a *Aggregator) Results() ([]IndexedResult, error) {
	if a.failure != nil {
		return nil, a.failure
	}
	if !a.done {
		return nil, ErrIncomplete
	}
	out := make([]IndexedResult, 0, len(a.results))
	for _, idx := range slices.Sorted(maps.Keys(a.results)) {
		out = append(out, IndexedResult{Index: idx, Result: a.results[idx]})
	}
	return out, nil
}

// Drain pulls src to completion through Bind(ctx, src), folding every chunk
// into agg. A transport failure or grouping error aborts the loop and is
// both recorded on the aggregator and returned. On a clean end of stream
// the aggregation is finished and nil is returned.
func Drain(ctx context.Context, src Source, agg *Aggregator) error {
	for c, err := range Bind(ctx, src) {
		if err != nil {
			agg.Fail(err)
			return err
		}
		if err := agg.Add(c); err != nil {
			return err
		}
	}
	agg.Finish()
	return nil
}
