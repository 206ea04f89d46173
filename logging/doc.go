// Package logging provides a minimal logging interface and adapters for supportmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, tools and request handler use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StructuredLogger with component / session context
//   - With, ForComponent and ForSession to scope any Logger
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(llm, registry, func(o *engine.Options) { o.Logger = logger })
package logging
