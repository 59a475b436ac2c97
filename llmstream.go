// Package llmstream reassembles token-streamed chat-completion responses
// into coherent, typed results while preserving the caller's execution
// context across every pulled fragment. Most applications interact with this
// package by:
//  1. Obtaining a chunk source from a provider adapter (model/openai,
//     model/anthropic) or any stream.Source implementation
//  2. Calling Collect for a one-shot drain, or driving stream.Bind /
//     stream.Aggregator directly for live incremental display
//
// The façade delegates the merge work to the core and stream packages while
// keeping setup ergonomics concise.
package llmstream

import (
	"context"

	"github.com/hupe1980/llmstream/logging"
	"github.com/hupe1980/llmstream/stream"
)

// Options configure a Collect call.
type Options struct {
	// Logger receives aggregation diagnostics (defaults to NoOp).
	Logger logging.Logger

	// RunID correlates the pulls of this call in logs and traces. A fresh
	// id is generated when empty.
	RunID string
}

// Collect drains src to completion, merging every chunk, and returns the
// final per-index results sorted by ascending stream index. The given
// context is installed for the duration of each pull; cancelling it aborts
// the stream. On transport or grouping failure the partial state is
// discarded and the error returned.
func Collect(ctx context.Context, src stream.Source, optFns ...func(o *Options)) ([]stream.IndexedResult, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RunID == "" {
		ctx, opts.RunID = stream.NewRunContext(ctx)
	} else {
		ctx = stream.WithRunID(ctx, opts.RunID)
	}
	ctx = stream.WithLogger(ctx, opts.Logger)

	agg := stream.NewAggregator(func(o *stream.AggregatorOptions) { o.Logger = opts.Logger })
	if err := stream.Drain(ctx, src, agg); err != nil {
		return nil, err
	}
	return agg.Results()
}
