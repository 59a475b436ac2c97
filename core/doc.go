// Package core defines the chunk value model and the merge algebra at the
// heart of llmstream.
//
// A Chunk is one partial unit of a token-streamed chat completion: a content
// delta, partial tool-call pieces, token usage counters, a finish reason,
// free-form metadata. Merge combines two chunks field by field; it is
// associative, so incremental pairwise folding of a stream yields the same
// value as combining all chunks at once. The stream package builds on this to
// reassemble complete per-index results from an interleaved delivery order.
package core
