// Package core provides the foundational domain types and contracts used by
// supportmesh. It defines:
//
//   - Messages (the ordered, append-only transcript of a conversation)
//   - Tool calls and tool definitions advertised to the model
//   - ToolResult, a tagged success / error value that is always data
//   - ErrorKind, the closed taxonomy of failures the runtime distinguishes
//   - RunOutcome, the result of one agent runtime invocation
//   - SessionStore, the persistence contract for transcripts
//
// Implementation concerns (persistence backends, HTTP adapters, the runtime
// loop itself) live in other packages and depend on these contracts only.
package core
