package stream

import (
	"context"
	"io"

	"github.com/hupe1980/llmstream/core"
)

// Source is a pull-based, single-subscriber sequence of decoded chunks.
// Each call to Next advances the underlying producer by one element and
// returns either a chunk or a terminal signal: io.EOF once the stream is
// exhausted, any other error on transport failure. After a terminal signal
// the source must not be pulled again. Sources are single-pass.
//
// The context passed to Next is ambient for exactly that pull; producers
// should honor its cancellation and may read run-scoped values from it (see
// WithRunID / WithLogger).
type Source interface {
	Next(ctx context.Context) (core.Chunk, error)
}

// SourceFunc adapts an ordinary function to the Source interface.
type SourceFunc func(ctx context.Context) (core.Chunk, error)

// Next implements Source.
func (f SourceFunc) Next(ctx context.Context) (core.Chunk, error) { return f(ctx) }

// SliceSource replays a fixed slice of chunks, optionally ending with a
// terminal error instead of a clean EOF. Useful for tests, examples and
// canned responses.
type SliceSource struct {
	chunks []core.Chunk
	err    error
	pos    int
}

// NewSliceSource creates a source that yields the given chunks in order.
func NewSliceSource(chunks ...core.Chunk) *SliceSource {
	return &SliceSource{chunks: chunks}
}

// NewFailingSliceSource creates a source that yields the given chunks and
// then fails with err instead of signalling a clean end of stream.
func NewFailingSliceSource(err error, chunks ...core.Chunk) *SliceSource {
	return &SliceSource{chunks: chunks, err: err}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (core.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return core.Chunk{}, err
	}
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return core.Chunk{}, s.err
		}
		return core.Chunk{}, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}
