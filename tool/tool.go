// Package tool implements the tool-calling subsystem that lets the agent
// runtime invoke structured capabilities (backend lookups, side-effecting
// actions) with schema validated arguments and uniform, non-throwing results.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/supportmesh/core"
)

// Tool is a named capability the model may invoke mid-turn.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Declare a JSON schema whose "required" list names mandatory fields
//   - Never panic and never return a Go error: every failure is a ToolResult
//   - Be safe for concurrent use by independent invocations
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description that tells the model
	// when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input.
	Parameters() map[string]any

	// Call executes the tool. Failures are reported through the result's
	// ErrorKind rather than as errors.
	Call(ctx context.Context, args map[string]any) core.ToolResult
}

// Definition converts a Tool into the declaration advertised to the model.
func Definition(t Tool) core.ToolDefinition {
	return core.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// ToolError lets a tool function pick the error kind of its failure.
// Other errors returned by a FunctionTool are classified as Unexpected.
type ToolError struct {
	Tool    string         `json:"tool"`
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Kind, e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool string, kind core.ErrorKind, message string) *ToolError {
	return &ToolError{Tool: tool, Kind: kind, Message: message}
}
