package stream

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/hupe1980/llmstream/core"
)

// Bind wraps a source in a lazy sequence that installs ctx as the ambient
// context for exactly the duration of each pull. Lookups performed anywhere
// inside the producer during a pull (cancellation checks, run id, logger)
// observe the bound context; between pulls the caller's own context is
// untouched.
//
// The returned sequence is value-transparent: no buffering, no filtering, no
// reordering. It is single-pass like the source it wraps. A clean end of
// stream (io.EOF from the source) ends the sequence without surfacing an
// error and no further pulls are issued. Any other failure, including
// cancellation of ctx observed before a pull, is yielded once and ends the
// sequence. Breaking out of the range early simply stops pulling; the
// abandoned source is never touched again.
//
// A nil ctx leaves the ambient context unchanged, i.e. binds
// context.Background().
func Bind(ctx context.Context, src Source) iter.Seq2[core.Chunk, error] {
	if ctx == nil {
		ctx = context.Background()
	}
	return func(yield func(core.Chunk, error) bool) {
		for {
			if err := ctx.Err(); err != nil {
				yield(core.Chunk{}, err)
				return
			}
			c, err := src.Next(ctx)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(core.Chunk{}, err)
				}
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}
