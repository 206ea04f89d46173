package core

import "maps"

// Role identifies the sender of a transcript message.
type Role string

const (
	// RoleSystem carries provider instructions. It is never persisted.
	RoleSystem Role = "system"
	// RoleUser marks a message written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of a tool invocation.
	RoleTool Role = "tool"
)

// ToolCall is a request, emitted by the model, to invoke a named tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolDefinition declaratively exposes a tool to the model. Parameters is a
// JSON schema object whose "required" list separates mandatory from optional
// fields.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is a single entry of a transcript.
//
// Assistant messages may carry ToolCalls. Tool messages answer exactly one
// call: ToolCallID and ToolName identify it, Result holds the structured
// outcome and Content its JSON encoding as presented to the model.
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolName   string      `json:"tool_name,omitempty"`
	Result     *ToolResult `json:"result,omitempty"`
}

// NewUserMessage creates a user message with the given text.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant message without tool calls.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolMessage records the result of the given call.
func NewToolMessage(call ToolCall, result ToolResult) Message {
	r := result
	return Message{
		Role:       RoleTool,
		Content:    result.String(),
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Result:     &r,
	}
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	c := m
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			c.ToolCalls[i] = tc
			c.ToolCalls[i].Arguments = maps.Clone(tc.Arguments)
		}
	}
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	return c
}

// CloneMessages deep-copies a transcript. A nil input yields an empty,
// non-nil slice so callers can append without aliasing.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// RunOutcome is returned by one agent runtime invocation.
type RunOutcome struct {
	FinalText  string    `json:"final_text"`
	Transcript []Message `json:"transcript"`
	Iterations int       `json:"iterations"`
	ToolCalls  int       `json:"tool_calls"`
}
