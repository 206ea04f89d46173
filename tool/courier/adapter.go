// Package courier provides the HTTP tool adapters of the courier support
// assistant: package tracking, support ticket creation and knowledge search.
//
// Every adapter validates its required inputs before touching the network,
// issues exactly one request with a bounded timeout and classifies the
// outcome into a core.ToolResult. Adapters never return errors.
package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/internal/util"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/tool"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultTimeout bounds every outbound backend call.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 1 << 20

// Options are shared by all adapters.
type Options struct {
	// Timeout bounds each backend call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient performs the requests. Defaults to a client without its own
	// timeout; the per-call context deadline applies instead.
	HTTPClient *http.Client
	// Logger receives call events. Defaults to NoOpLogger.
	Logger logging.Logger
}

func newOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Timeout:    DefaultTimeout,
		HTTPClient: &http.Client{},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return opts
}

// httpAdapter holds what the three adapters have in common: their schema,
// the HTTP client, the timeout and response classification.
type httpAdapter struct {
	name        string
	description string
	parameters  map[string]any
	compiled    *jsonschema.Schema
	client      *http.Client
	timeout     time.Duration
	logger      logging.Logger
	accept      func(status int) bool
}

func newHTTPAdapter(name, description string, argsType any, accept func(int) bool, opts Options) (*httpAdapter, error) {
	params := util.CreateSchema(argsType)
	compiled, err := util.CompileSchema(name, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrInvalidSchema, err)
	}
	return &httpAdapter{
		name:        name,
		description: description,
		parameters:  params,
		compiled:    compiled,
		client:      opts.HTTPClient,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
		accept:      accept,
	}, nil
}

// Name returns the tool name.
func (a *httpAdapter) Name() string { return a.name }

// Description returns the description advertised to the model.
func (a *httpAdapter) Description() string { return a.description }

// Parameters returns the argument schema.
func (a *httpAdapter) Parameters() map[string]any { return a.parameters }

func (a *httpAdapter) validate(args map[string]any) (core.ToolResult, bool) {
	res, ok := tool.ValidateArgs(a.parameters, a.compiled, args)
	if !ok {
		a.logger.Warn("tool.call.validation_failed", "tool", a.name, "detail", res.Detail)
	}
	return res, ok
}

// do performs one request and classifies the outcome. body, when non-nil,
// is sent as JSON.
func (a *httpAdapter) do(ctx context.Context, method, target string, body any) core.ToolResult {
	start := time.Now()
	res := a.roundTrip(ctx, method, target, body)
	a.logger.Info(
		"tool.call.complete",
		"tool", a.name,
		"method", method,
		"outcome", res.Outcome(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (a *httpAdapter) roundTrip(ctx context.Context, method, target string, body any) core.ToolResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return core.Failuref(core.ErrorKindUnexpected, "encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return core.Failuref(core.ErrorKindUnexpected, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return classifyTransportError(err)
	}

	if a.accept(resp.StatusCode) {
		return core.Success(parseBody(raw))
	}
	return core.Failure(core.ErrorKindRemoteRejected, rejectionDetail(resp.StatusCode, raw))
}

// classifyTransportError maps an error from sending a request or reading its
// body onto Timeout, NetworkError or Unexpected.
func classifyTransportError(err error) core.ToolResult {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.Failure(core.ErrorKindTimeout, "backend did not respond in time")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.Failure(core.ErrorKindTimeout, "backend did not respond in time")
	}
	if errors.Is(err, context.Canceled) {
		return core.Failure(core.ErrorKindUnexpected, "request canceled")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return core.Failure(core.ErrorKindNetwork, err.Error())
	}
	return core.Failure(core.ErrorKindUnexpected, err.Error())
}

// parseBody decodes a JSON body. Non-JSON content is returned as trimmed text.
func parseBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return v
}

// rejectionDetail renders the status plus a best-effort view of the error body.
func rejectionDetail(status int, raw []byte) string {
	detail := fmt.Sprintf("status %d", status)
	switch v := parseBody(raw).(type) {
	case nil:
		return detail
	case string:
		return detail + ": " + v
	default:
		compact, err := json.Marshal(v)
		if err != nil {
			return detail
		}
		return detail + ": " + string(compact)
	}
}

func accept2xx(status int) bool { return status >= 200 && status < 300 }

func acceptCreated(status int) bool { return status == http.StatusCreated }

// stringArg returns args[key] as a string.
func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}
