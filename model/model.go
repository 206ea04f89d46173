package model

import (
	"context"
	"errors"

	"github.com/hupe1980/supportmesh/core"
)

// ErrNoResponse is returned by Collect when a model closes its stream without
// a final response.
var ErrNoResponse = errors.New("model returned no final response")

// Request captures the normalized model input for one turn.
type Request struct {
	Instructions string                `json:"instructions"`
	Messages     []core.Message        `json:"messages"`
	Tools        []core.ToolDefinition `json:"tools,omitempty"`
	Stream       bool                  `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. The final
// chunk carries the complete assistant message, including tool calls.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the engine to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a Generate call and returns the final response. Partial
// chunks are discarded. A provider error takes precedence over any response.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		found bool
	)
	for resp := range respCh {
		if resp.Partial {
			continue
		}
		final = resp
		found = true
	}

	if err, ok := <-errCh; ok && err != nil {
		return Response{}, err
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ErrNoResponse
	}
	final.Message.Role = core.RoleAssistant
	return final, nil
}
