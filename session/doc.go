// Package session houses concrete implementations of core.SessionStore.
// The interface itself lives in the core package; keeping only
// implementations here prevents higher level packages (engine, handler)
// from depending on concrete storage.
//
// Three backends are available:
//   - InMemoryStore: process local map, for tests and demo servers
//   - SQLiteStore: one row per session in a SQLite database file
//   - S3Store: one JSON object per session in an S3-compatible bucket
//
// All backends store the transcript as a single value written in one
// operation. None of them offers compare-and-swap, so concurrent writers to
// the same session id race with last-write-wins semantics.
package session
