// Package handler is the invocation boundary of the support assistant. It
// loads the caller's transcript, runs the agent, persists the result and
// maps every failure onto a single user-visible shape.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/observability"
)

const (
	// DefaultPrompt is used when a request carries no prompt.
	DefaultPrompt = "Hello"
	// DefaultUserID is used when a request carries no user id.
	DefaultUserID = "anonymous"
)

// Runner executes one agent invocation. *engine.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, transcript []core.Message, prompt string) (*core.RunOutcome, error)
}

// Request is one inbound invocation. UserID doubles as the session id.
type Request struct {
	Prompt string `json:"prompt"`
	UserID string `json:"user_id"`
}

// withDefaults fills blank fields.
func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.Prompt) == "" {
		r.Prompt = DefaultPrompt
	}
	if strings.TrimSpace(r.UserID) == "" {
		r.UserID = DefaultUserID
	}
	return r
}

// SuccessBody is returned with status 200.
type SuccessBody struct {
	Response string `json:"response"`
	Prompt   string `json:"prompt"`
	UserID   string `json:"user_id"`
}

// ErrorBody is the single failure shape, returned with status 500.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Response is the outcome of an invocation. Body is SuccessBody or ErrorBody.
type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// Options configures a Handler.
type Options struct {
	// Logger receives invocation events. Defaults to NoOpLogger.
	Logger logging.Logger
	// Metrics counts invocations by status. Optional.
	Metrics *observability.Metrics
}

// Handler wires a session store to an agent runner.
type Handler struct {
	store   core.SessionStore
	runner  Runner
	logger  logging.Logger
	metrics *observability.Metrics
}

// New creates a Handler.
func New(store core.SessionStore, runner Runner, optFns ...func(o *Options)) *Handler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{
		store:   store,
		runner:  runner,
		logger:  logging.OrNoOp(opts.Logger),
		metrics: opts.Metrics,
	}
}

// Handle runs one invocation: load transcript, run the agent, store the new
// transcript. Any failure yields status 500 and leaves the stored transcript
// untouched. Handle never returns an error.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	req = req.withDefaults()
	logger := logging.ForSession(h.logger, req.UserID)

	logger.Info("handler.invoke.start", "prompt_length", len(req.Prompt))

	transcript, err := h.store.Get(ctx, req.UserID)
	if err != nil {
		return h.fail(logger, "load session", err)
	}

	outcome, err := h.runner.Run(ctx, transcript, req.Prompt)
	if err != nil {
		return h.fail(logger, "run agent", err)
	}

	if err := h.store.Put(ctx, req.UserID, outcome.Transcript); err != nil {
		return h.fail(logger, "save session", err)
	}

	h.metrics.ObserveInvocation(nil)
	logger.Info(
		"handler.invoke.complete",
		"iterations", outcome.Iterations,
		"tool_calls", outcome.ToolCalls,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Response{
		StatusCode: http.StatusOK,
		Body: SuccessBody{
			Response: outcome.FinalText,
			Prompt:   req.Prompt,
			UserID:   req.UserID,
		},
	}
}

func (h *Handler) fail(logger logging.Logger, stage string, err error) Response {
	h.metrics.ObserveInvocation(err)
	logger.Error(
		"handler.invoke.failed",
		"stage", stage,
		"kind", core.ErrorKindInternalFailure,
		"error", err.Error(),
	)
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body: ErrorBody{
			Error:   "Internal Server Error",
			Message: err.Error(),
		},
	}
}
