package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/internal/util"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// Responsibilities:
//   - Holds a JSON-schema parameter definition
//   - Rejects calls with missing required fields before invoking the function
//   - Validates argument types against the compiled schema
//   - Converts the function's (value, error) pair into a core.ToolResult:
//     *ToolError      -> its own kind
//     other error     -> Unexpected
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	compiled    *jsonschema.Schema
	fn          func(ctx context.Context, args map[string]any) (any, error)
	logger      logging.Logger
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
// It fails if the schema does not compile.
//
// Example:
//
//	echo, err := tool.NewFunctionTool(
//	  "echo",
//	  "Echo the given text",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{"text": map[string]any{"type": "string"}},
//	    "required": []string{"text"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return args["text"], nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) (*FunctionTool, error) {
	compiled, err := util.CompileSchema(name, parameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		compiled:    compiled,
		fn:          fn,
		logger:      logging.NoOpLogger{},
	}, nil
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection (see util.CreateSchema).
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) (*FunctionTool, error) {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// WithLogger sets the logger used for call events and returns the tool.
func (t *FunctionTool) WithLogger(l logging.Logger) *FunctionTool {
	t.logger = logging.OrNoOp(l)
	return t
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args then invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) core.ToolResult {
	start := time.Now()
	t.logger.Debug("tool.call.start", "tool", t.name)

	if res, ok := ValidateArgs(t.parameters, t.compiled, args); !ok {
		t.logger.Warn("tool.call.validation_failed", "tool", t.name, "detail", res.Detail)
		return res
	}

	value, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			t.logger.Error("tool.call.error", "tool", t.name, "kind", toolErr.Kind, "error", toolErr.Message)
			return core.Failure(toolErr.Kind, toolErr.Message)
		}
		t.logger.Error("tool.call.error", "tool", t.name, "error", err.Error())
		return core.Failure(core.ErrorKindUnexpected, err.Error())
	}

	t.logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return core.Success(value)
}

// ValidateArgs checks args against a tool schema: first presence of every
// required field, then types against the compiled schema. It returns a
// Validation failure and false when the arguments are unusable.
func ValidateArgs(schema map[string]any, compiled *jsonschema.Schema, args map[string]any) (core.ToolResult, bool) {
	if missing := util.MissingFields(args, schema); len(missing) > 0 {
		return core.Failure(core.ErrorKindValidation, "missing required fields: "+strings.Join(missing, ", ")), false
	}
	if err := util.ValidateArgs(compiled, args); err != nil {
		return core.Failure(core.ErrorKindValidation, "invalid arguments: "+err.Error()), false
	}
	return core.ToolResult{}, true
}
