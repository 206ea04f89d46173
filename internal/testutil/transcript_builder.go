package testutil

import (
	"github.com/hupe1980/supportmesh/core"
)

// TranscriptBuilder provides a fluent helper for constructing transcripts in tests.
// Example:
//
//	msgs := NewTranscriptBuilder().User("hi").Assistant("hello").Build()
//
// Chain only the messages you need.
type TranscriptBuilder struct {
	messages []core.Message
}

// NewTranscriptBuilder creates an empty builder.
func NewTranscriptBuilder() *TranscriptBuilder { return &TranscriptBuilder{} }

// User appends a user message (chainable).
func (b *TranscriptBuilder) User(text string) *TranscriptBuilder {
	b.messages = append(b.messages, core.NewUserMessage(text))
	return b
}

// Assistant appends a plain assistant message (chainable).
func (b *TranscriptBuilder) Assistant(text string) *TranscriptBuilder {
	b.messages = append(b.messages, core.NewAssistantMessage(text))
	return b
}

// ToolCall appends an assistant message requesting a single tool call (chainable).
func (b *TranscriptBuilder) ToolCall(id, name string, args map[string]any) *TranscriptBuilder {
	b.messages = append(b.messages, core.Message{
		Role:      core.RoleAssistant,
		ToolCalls: []core.ToolCall{{ID: id, Name: name, Arguments: args}},
	})
	return b
}

// ToolResult appends the tool message answering call id (chainable).
func (b *TranscriptBuilder) ToolResult(id, name string, result core.ToolResult) *TranscriptBuilder {
	b.messages = append(b.messages, core.NewToolMessage(core.ToolCall{ID: id, Name: name}, result))
	return b
}

// Message appends an arbitrary message (chainable).
func (b *TranscriptBuilder) Message(m core.Message) *TranscriptBuilder {
	b.messages = append(b.messages, m)
	return b
}

// Build returns a copy of the accumulated messages.
func (b *TranscriptBuilder) Build() []core.Message {
	return core.CloneMessages(b.messages)
}
