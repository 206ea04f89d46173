package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/observability"
	"github.com/hupe1980/supportmesh/tool"
)

// DefaultMaxIterations bounds the number of model turns per run.
const DefaultMaxIterations = 10

// ErrEmptyResponse is returned when the model answers with neither text nor
// tool calls.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Options configures an Engine.
type Options struct {
	// MaxIterations caps model turns per run. Values below 1 fall back to
	// DefaultMaxIterations.
	MaxIterations int
	// Instructions are sent to the model as system prompt on every turn.
	Instructions string
	// Logger receives run events. Defaults to NoOpLogger.
	Logger logging.Logger
	// Metrics records model turns, runs and loop-limit hits. Optional.
	Metrics *observability.Metrics
}

// Engine runs the agent loop against one model and one tool registry.
type Engine struct {
	llm     model.Model
	tools   *tool.Registry
	opts    Options
	logger  logging.Logger
	metrics *observability.Metrics
}

// New creates an Engine. tools may be nil, in which case the model is
// offered no tools.
func New(llm model.Model, tools *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if tools == nil {
		tools, _ = tool.NewRegistry(nil)
	}
	return &Engine{
		llm:     llm,
		tools:   tools,
		opts:    opts,
		logger:  logging.OrNoOp(opts.Logger),
		metrics: opts.Metrics,
	}
}

// MaxIterations returns the effective iteration cap.
func (e *Engine) MaxIterations() int { return e.opts.MaxIterations }

// Run executes one invocation: the prompt is appended to a copy of
// transcript and the loop runs until the model answers without tool calls.
//
// The returned outcome is non-nil whenever any step ran; on
// core.ErrLoopLimitExceeded it carries the transcript including the
// synthetic closing message. The input transcript is never modified.
func (e *Engine) Run(ctx context.Context, transcript []core.Message, prompt string) (*core.RunOutcome, error) {
	start := time.Now()

	msgs := core.CloneMessages(transcript)
	msgs = append(msgs, core.NewUserMessage(prompt))

	outcome := &core.RunOutcome{Transcript: msgs}
	defs := e.tools.List()

	e.logger.Info(
		"engine.run.start",
		"model", e.llm.Info().Name,
		"prior_messages", len(transcript),
		"tools", len(defs),
		"max_iterations", e.opts.MaxIterations,
	)

	for iteration := 0; iteration < e.opts.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		msg, err := e.modelTurn(ctx, msgs, defs)
		if err != nil {
			e.logger.Error("engine.model.error", "iteration", iteration+1, "error", err.Error())
			return outcome, fmt.Errorf("model turn %d: %w", iteration+1, err)
		}
		outcome.Iterations = iteration + 1

		if !msg.HasToolCalls() {
			msgs = append(msgs, msg)
			outcome.FinalText = msg.Content
			outcome.Transcript = msgs
			e.logger.Info(
				"engine.run.complete",
				"iterations", outcome.Iterations,
				"tool_calls", outcome.ToolCalls,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return outcome, nil
		}

		assignCallIDs(&msg)
		msgs = append(msgs, msg)

		for _, call := range msg.ToolCalls {
			if err := ctx.Err(); err != nil {
				outcome.Transcript = msgs
				return outcome, err
			}
			result := e.tools.Dispatch(ctx, call.Name, call.Arguments)
			msgs = append(msgs, core.NewToolMessage(call, result))
			outcome.ToolCalls++
			e.logger.Debug(
				"engine.tool.dispatched",
				"iteration", iteration+1,
				"tool", call.Name,
				"call_id", call.ID,
				"outcome", result.Outcome(),
			)
		}
		outcome.Transcript = msgs
	}

	closing := core.NewAssistantMessage(fmt.Sprintf(
		"%s: stopped after %d model turns without a final answer",
		core.ErrorKindLoopLimitExceeded, e.opts.MaxIterations,
	))
	msgs = append(msgs, closing)
	outcome.FinalText = closing.Content
	outcome.Transcript = msgs

	e.metrics.ObserveLoopLimit()
	e.logger.Warn(
		"engine.run.loop_limit",
		"iterations", outcome.Iterations,
		"tool_calls", outcome.ToolCalls,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return outcome, fmt.Errorf("%w after %d model turns", core.ErrLoopLimitExceeded, e.opts.MaxIterations)
}

// modelTurn asks the model for the next assistant message.
func (e *Engine) modelTurn(ctx context.Context, msgs []core.Message, defs []core.ToolDefinition) (core.Message, error) {
	start := time.Now()
	resp, err := model.Collect(ctx, e.llm, model.Request{
		Instructions: e.opts.Instructions,
		Messages:     core.CloneMessages(msgs),
		Tools:        defs,
	})
	if err == nil && resp.Message.Content == "" && !resp.Message.HasToolCalls() {
		err = ErrEmptyResponse
	}
	e.metrics.ObserveModelTurn(time.Since(start), err)
	if err != nil {
		return core.Message{}, err
	}

	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	e.logger.Debug(
		"engine.model.turn",
		"finish_reason", resp.FinishReason,
		"tool_calls", len(resp.Message.ToolCalls),
		"tokens", tokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Message, nil
}

// assignCallIDs gives every tool call without an id a fresh one so tool
// messages can always be correlated with their request.
func assignCallIDs(msg *core.Message) {
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}
}
