// Package model defines the provider‑agnostic abstractions for interacting
// with language models inside the support assistant.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Express turns in terms of core.Message so providers and the engine
//     share one transcript representation
//   - Facilitate deterministic testing (ScriptedModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface in
// sub-packages so the engine remains decoupled from vendor SDKs.
package model
