package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/internal/util"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/observability"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger receives dispatch events. Defaults to NoOpLogger.
	Logger logging.Logger
	// Metrics records dispatch counts and latency. Optional.
	Metrics *observability.Metrics
}

// Registry is an ordered set of uniquely named tools. It is assembled once at
// startup and passed explicitly to the runtime; there is no global registry.
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	tools   []Tool
	index   map[string]Tool
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewRegistry builds a registry from tools, preserving their order.
// Returns ErrEmptyName, ErrAlreadyExists or ErrInvalidSchema on bad input.
func NewRegistry(tools []Tool, optFns ...func(o *RegistryOptions)) (*Registry, error) {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{
		tools:   make([]Tool, 0, len(tools)),
		index:   make(map[string]Tool, len(tools)),
		logger:  logging.OrNoOp(opts.Logger),
		metrics: opts.Metrics,
	}

	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, ErrEmptyName
		}
		if _, exists := r.index[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		if _, err := util.CompileSchema(name, t.Parameters()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
		}
		r.tools = append(r.tools, t)
		r.index[name] = t
	}

	return r, nil
}

// List returns the tool definitions in registration order, for advertisement
// to the model.
func (r *Registry) List() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, Definition(t))
	}
	return defs
}

// Names returns the registered tool names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name())
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Dispatch invokes the named tool. An unregistered name yields an UnknownTool
// failure and a panicking tool an Unexpected failure; Dispatch itself never
// fails.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result core.ToolResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool.dispatch.panic", "tool", name, "recover", rec)
			result = core.Failuref(core.ErrorKindUnexpected, "tool %s panicked: %v", name, rec)
		}
		r.metrics.ObserveToolDispatch(name, result.Outcome(), time.Since(start))
		r.logger.Info(
			"tool.dispatch.complete",
			"tool", name,
			"outcome", result.Outcome(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	t, ok := r.index[name]
	if !ok {
		return core.Failuref(core.ErrorKindUnknownTool, "tool %s is not registered", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return t.Call(ctx, args)
}
