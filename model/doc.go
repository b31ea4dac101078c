// Package model defines the provider-agnostic abstractions for the reasoning
// capability consumed by the pipeline workers.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Bounded retry with fixed backoff as a decorator (WithRetry), so the
//     pipeline core never sees transient provider failures that resolve
//     within the attempt budget
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, court) remain decoupled from vendor SDKs.
package model
