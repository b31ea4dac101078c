// Package logging provides a minimal logging interface and adapters for the
// tribunal pipeline.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the runner, agents and tools use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The pipeline is designed to produce no visible stdout output of its own;
// all diagnostics flow through this package.
package logging
