// Package model defines the provider-agnostic contract for obtaining raw
// chunk streams from chat-completion APIs.
//
// Core goals:
//   - Expose streaming generation as a pull-based stream.Source so one
//     cooperative loop drives transport, decoding and merging
//   - Normalize tool / function definitions (ToolDefinition)
//   - Keep request shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the merge engine remains decoupled from vendor SDKs.
package model
