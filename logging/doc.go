// Package logging provides a minimal logging interface and adapters for
// llmstream.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the stream aggregator and provider adapters use for
// diagnostics. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal so any structured
// logger can be plugged in.
package logging
