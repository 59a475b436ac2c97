// Package stream consumes pull-based chunk sources and folds them into
// per-index merged results.
//
// A Source yields decoded chunks one pull at a time. Bind wraps a source so
// that a caller-supplied context is installed for exactly the duration of
// each pull, no matter how long the consumer waits between pulls. The
// Aggregator groups incoming chunks by stream index, merges each group
// eagerly in delivery order via core.Merge, exposes a live per-index view
// mid-stream and emits final results sorted by ascending index once the
// stream ends. Drain ties the two together in a single cooperative pull
// loop.
package stream
